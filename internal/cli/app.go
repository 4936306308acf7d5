package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/dmitrijs2005/sharejoy/internal/common"
	"github.com/dmitrijs2005/sharejoy/internal/config"
	"github.com/dmitrijs2005/sharejoy/internal/credstore"
	"github.com/dmitrijs2005/sharejoy/internal/cryptox"
	"github.com/dmitrijs2005/sharejoy/internal/kv"
	"github.com/dmitrijs2005/sharejoy/internal/logging"
	"github.com/dmitrijs2005/sharejoy/internal/services"
	"github.com/dmitrijs2005/sharejoy/internal/session"
)

// sessionView is the part of session.Manager the App reads. The manager is
// the only holder of who is logged in.
type sessionView interface {
	GetInitialUser(ctx context.Context) (string, bool, error)
	Current() (string, error)
	Refresh(ctx context.Context) error
}

type App struct {
	config      *config.Config
	logger      logging.Logger
	authService services.AuthService
	sessions    sessionView
	closer      io.Closer
	reader      *bufio.Reader
	out         io.Writer
}

// NewApp opens the configured backend and builds the services on top of it.
// The caller must call Close.
func NewApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {
	opts, err := c.StorageOptions()
	if err != nil {
		return nil, err
	}

	storage, closer, err := kv.Open(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("storage init error: %w", err)
	}

	hasher := cryptox.NewPBKDF2Hasher()
	store := credstore.New(storage, hasher, logger)
	sm := session.NewManager(store)
	as := services.NewAuthService(store, hasher, sm, logger)

	if c.SeedFile != "" {
		if _, err := as.SeedFromFile(ctx, c.SeedFile); err != nil {
			_ = closer.Close()
			return nil, fmt.Errorf("seed error: %w", err)
		}
	}

	logger.Debug(ctx, "app initialized", "backend", opts.Backend, "encrypted", opts.Passphrase != "")

	return &App{
		config:      c,
		logger:      logger,
		authService: as,
		sessions:    sm,
		closer:      closer,
		reader:      bufio.NewReader(os.Stdin),
		out:         os.Stdout,
	}, nil
}

func (a *App) Close() error {
	if a.closer == nil {
		return nil
	}
	return a.closer.Close()
}

func (a *App) currentUser() (string, bool) {
	name, err := a.sessions.Current()
	return name, err == nil
}

func (a *App) isLoggedIn() bool {
	_, ok := a.currentUser()
	return ok
}

func (a *App) getStatus() string {
	name, ok := a.currentUser()
	if !ok {
		return ""
	}
	return fmt.Sprintf("(%s)", name)
}

// opContext bounds one storage-touching call. Prompts run before it so that
// typing time does not count against the deadline.
func (a *App) opContext(ctx context.Context) (context.Context, context.CancelFunc) {
	var timeout time.Duration
	if a.config != nil {
		timeout = a.config.OperationTimeout
	}
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}

// reportError shows the user-facing text for err. Errors outside the known
// set are also logged.
func (a *App) reportError(ctx context.Context, err error) {
	if !common.IsKnown(err) && a.logger != nil {
		a.logger.Error(ctx, "command failed", "err", err)
	}
	fmt.Fprintln(a.out, common.UserMessage(err))
}

// Run restores the persisted session and serves the REPL until the user
// exits, stdin closes or ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	userName, found, err := a.sessions.GetInitialUser(ctx)
	if err != nil {
		return fmt.Errorf("read session: %w", err)
	}

	fmt.Fprintln(a.out, "Welcome to ShareJoy (type 'help' for commands)")
	if found {
		fmt.Fprintf(a.out, "Logged in as %s\n", userName)
	}

	runREPL(ctx, a, a.getStatus, a.reader)
	return nil
}
