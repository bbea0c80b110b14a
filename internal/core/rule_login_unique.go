package core

import (
	"cinemacore/pkg/domain"
	"context"
	"fmt"
)

// NewLoginUniqueRule rejects a user whose login is already taken.
func NewLoginUniqueRule() domain.Rule {
	return loginUniqueRule{}
}

type loginUniqueRule struct{}

func (loginUniqueRule) Name() string { return "login_unique" }

func (loginUniqueRule) Evaluate(_ context.Context, view domain.TransactionView, changes []domain.Change) (domain.Result, error) {
	res := domain.Result{}
	seen := make(map[int]struct{})
	for _, user := range changed[domain.User](changes, domain.EntityUser) {
		if _, dup := seen[user.ID]; dup {
			continue
		}
		seen[user.ID] = struct{}{}
		current, ok := view.FindUser(user.ID)
		if !ok {
			continue
		}
		for other := range view.Users() {
			if other.ID != current.ID && other.Login == current.Login {
				res.Violations = append(res.Violations, domain.Violation{
					Rule:     "login_unique",
					Severity: domain.SeverityBlock,
					Message:  fmt.Sprintf("user %q already exists", current.Login),
					Entity:   domain.EntityUser,
					EntityID: current.ID,
					Err:      domain.ErrUniqueConstraint,
				})
				break
			}
		}
	}
	return res, nil
}
