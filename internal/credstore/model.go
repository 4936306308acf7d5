package credstore

import (
	"fmt"

	"github.com/dmitrijs2005/sharejoy/internal/common"
)

// Role is the coarse authorization tag of an account.
type Role string

const (
	RoleUser     Role = "user"
	RoleApprover Role = "approver"
)

// ParseRole accepts "user" and "approver"; an empty string means RoleUser.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case "", RoleUser:
		return RoleUser, nil
	case RoleApprover:
		return RoleApprover, nil
	default:
		return "", fmt.Errorf("%w: unknown role %q", common.ErrorValidation, s)
	}
}

// UserRecord is one account as persisted under the users key. Hash is always
// derived from the current Salt and the current password.
type UserRecord struct {
	Username string `json:"username"`
	Salt     string `json:"salt"`
	Hash     string `json:"hash"`
	Role     Role   `json:"role"`
}

// Validate checks the fields CreateUser requires.
func (u UserRecord) Validate() error {
	if u.Username == "" {
		return fmt.Errorf("%w: username is required", common.ErrorValidation)
	}
	if u.Salt == "" || u.Hash == "" {
		return fmt.Errorf("%w: salt and hash are required", common.ErrorValidation)
	}
	if u.Role != RoleUser && u.Role != RoleApprover {
		return fmt.Errorf("%w: unknown role %q", common.ErrorValidation, u.Role)
	}
	return nil
}

func (u UserRecord) IsApprover() bool {
	return u.Role == RoleApprover
}
