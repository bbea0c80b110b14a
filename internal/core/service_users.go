package core

import (
	"context"
	"iter"

	"cinemacore/pkg/domain"
)

// Credentials of the administrator seeded into a fresh store.
const (
	DefaultAdminLogin    = "admin"
	DefaultAdminPassword = "admin"
)

// NewUser creates an account storing the hash of password. Logins are unique.
func (s *Service) NewUser(ctx context.Context, login, password string, admin bool) (UserHandle, error) {
	if login == "" {
		return UserHandle{}, domain.NewError(domain.ErrInvalid, EntityUser, 0, "login must not be empty")
	}
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return UserHandle{}, err
	}
	var id int
	_, err = s.run(ctx, "create_user", 0, func(tx Transaction) (int, error) {
		created, err := tx.CreateUser(User{Login: login, PasswordHash: hash, IsAdmin: admin})
		id = created.ID
		return id, err
	})
	if err != nil {
		return UserHandle{}, err
	}
	s.logger.Info("user created", "id", id, "login", login, "admin", admin)
	return UserHandle{svc: s, id: id}, nil
}

// SeedAdmin creates the default administrator account.
func (s *Service) SeedAdmin(ctx context.Context) (UserHandle, error) {
	return s.NewUser(ctx, DefaultAdminLogin, DefaultAdminPassword, true)
}

// Authorize returns the user whose login and password match.
func (s *Service) Authorize(login, password string) (UserHandle, bool) {
	u, ok := s.findUser(login)
	if !ok || !s.hasher.Verify(u.PasswordHash, password) {
		return UserHandle{}, false
	}
	return UserHandle{svc: s, id: u.ID}, true
}

// User returns a handle to user id if it exists.
func (s *Service) User(id int) (UserHandle, bool) {
	if _, ok := s.store.GetUser(id); !ok {
		return UserHandle{}, false
	}
	return UserHandle{svc: s, id: id}, true
}

// UserByLogin returns the user with the given login or ErrNotFound.
func (s *Service) UserByLogin(login string) (UserHandle, error) {
	u, ok := s.findUser(login)
	if !ok {
		return UserHandle{}, domain.NewError(domain.ErrNotFound, EntityUser, 0, "no user %q", login)
	}
	return UserHandle{svc: s, id: u.ID}, nil
}

func (s *Service) findUser(login string) (User, bool) {
	var (
		found User
		ok    bool
	)
	_ = s.view(context.Background(), func(v TransactionView) error {
		for u := range v.Users() {
			if u.Login == login {
				found, ok = u, true
				break
			}
		}
		return nil
	})
	return found, ok
}

// ChangePassword replaces the password of login in place, keeping its id and
// admin flag.
func (s *Service) ChangePassword(ctx context.Context, login, password string) error {
	h, err := s.UserByLogin(login)
	if err != nil {
		return err
	}
	return h.SetPassword(ctx, password)
}

// DeleteUser removes the account with the given login.
func (s *Service) DeleteUser(ctx context.Context, login string) error {
	h, err := s.UserByLogin(login)
	if err != nil {
		return err
	}
	return h.Delete(ctx)
}

// Users yields a handle per current user in unspecified order.
func (s *Service) Users() iter.Seq[UserHandle] {
	collect := func() []int { return ids(s, TransactionView.Users, func(u User) int { return u.ID }) }
	return handleSeq(s, collect, func(svc *Service, id int) UserHandle { return UserHandle{svc: svc, id: id} })
}
