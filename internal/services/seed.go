package services

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/dmitrijs2005/sharejoy/internal/common"
	"github.com/dmitrijs2005/sharejoy/internal/credstore"
	"gopkg.in/yaml.v3"
)

type seedFile struct {
	Users []struct {
		Username string `yaml:"username"`
		Password string `yaml:"password"`
		Role     string `yaml:"role"`
	} `yaml:"users"`
}

// SeedFromFile creates the accounts listed in a YAML file:
//
//	users:
//	  - username: alice
//	    password: S3cr3t!
//	    role: approver
//
// Entries without username or password and existing usernames are skipped.
// It does not touch the session. It returns the number of accounts created.
func (a *authService) SeedFromFile(ctx context.Context, path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}

	var sf seedFile
	if err := yaml.Unmarshal(data, &sf); err != nil {
		return 0, fmt.Errorf("%w: seed file %s: %v", common.ErrInvalidEncoding, path, err)
	}

	created := 0
	for _, u := range sf.Users {
		if u.Username == "" || u.Password == "" {
			continue
		}
		role, err := credstore.ParseRole(u.Role)
		if err != nil {
			return created, err
		}

		err = a.createUser(ctx, u.Username, u.Password, role)
		if errors.Is(err, common.ErrorAlreadyExists) {
			continue
		}
		if err != nil {
			return created, err
		}
		created++
	}

	a.logger.Info(ctx, "seed applied", "path", path, "created", created)
	return created, nil
}
