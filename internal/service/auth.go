package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Skotchmaster/contacts/internal/events"
	"github.com/Skotchmaster/contacts/internal/hash"
	"github.com/Skotchmaster/contacts/internal/logging"
	"github.com/Skotchmaster/contacts/internal/models"
	"github.com/Skotchmaster/contacts/internal/repo"
	"github.com/Skotchmaster/contacts/internal/search"
	"github.com/Skotchmaster/contacts/internal/tokens"
)

type AuthService struct {
	Repo   *repo.GormRepo
	Tokens *tokens.Manager
	Events events.Publisher
	Index  search.Index
}

type AuthResult struct {
	User      *models.User
	Token     string
	ExpiresAt time.Time
}

// AccountUpdate holds the optional account fields. Nil means unchanged.
type AccountUpdate struct {
	Username *string
	Email    *string
	Password *string
}

func (s *AuthService) Register(ctx context.Context, username, email, password string) (*AuthResult, error) {
	l := logging.FromContext(ctx).With("svc", "auth.register")

	if username == "" || email == "" || password == "" {
		return nil, missingFields("Username, email, and password are required")
	}

	username = strings.TrimSpace(username)
	email = repo.NormalizeEmail(email)
	if err := check(accountFields{Username: &username, Email: &email, Password: &password}); err != nil {
		return nil, err
	}

	taken, err := s.Repo.IdentityTaken(ctx, username, email, uuid.Nil)
	if err != nil {
		l.Error("register_error", "status", 500, "reason", "identity lookup failed", "error", err)
		return nil, err
	}
	if taken {
		l.Warn("register_error", "status", 400, "reason", "username or email already exists")
		return nil, ErrDuplicateIdentity
	}

	user, err := s.Repo.CreateUser(ctx, username, email, password)
	if err != nil {
		if errors.Is(err, repo.ErrAlreadyExists) {
			l.Warn("register_error", "status", 400, "reason", "unique violation on insert")
			return nil, ErrDuplicateIdentity
		}
		l.Error("register_error", "status", 500, "reason", "cannot create user", "error", err)
		return nil, err
	}

	res, err := s.issue(user)
	if err != nil {
		l.Error("register_error", "status", 500, "reason", "cannot sign token", "error", err)
		return nil, err
	}

	s.publish(ctx, events.NewUserEvent(events.UserRegistered, user))
	l.Info("register_success", "user_id", user.ID)
	return res, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	l := logging.FromContext(ctx).With("svc", "auth.login")

	if email == "" || password == "" {
		return nil, missingFields("Email and password are required")
	}

	user, err := s.Repo.UserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			l.Warn("login_failed", "status", 401, "reason", "unknown email")
			return nil, ErrInvalidCredentials
		}
		l.Error("login_failed", "status", 500, "error", err)
		return nil, err
	}

	if !hash.CheckPassword(user.PasswordHash, password) {
		l.Warn("login_failed", "status", 401, "reason", "password mismatch", "user_id", user.ID)
		return nil, ErrInvalidCredentials
	}

	res, err := s.issue(user)
	if err != nil {
		l.Error("login_failed", "status", 500, "reason", "cannot sign token", "error", err)
		return nil, err
	}

	l.Info("login_success", "user_id", user.ID)
	return res, nil
}

// Authenticate resolves a bearer token to its user. It returns an error
// wrapping tokens.ErrInvalidToken when the token does not verify and
// ErrNotFound when the user no longer exists.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*models.User, error) {
	id, err := s.Tokens.Verify(token)
	if err != nil {
		return nil, err
	}
	return s.Me(ctx, id)
}

func (s *AuthService) Me(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	user, err := s.Repo.UserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *AuthService) UpdateAccount(ctx context.Context, userID uuid.UUID, upd AccountUpdate) (*models.User, error) {
	l := logging.FromContext(ctx).With("svc", "auth.update_account", "user_id", userID)

	if upd.Username == nil && upd.Email == nil && upd.Password == nil {
		return nil, missingFields("Username, email, or password is required")
	}

	fields := accountFields{Password: upd.Password}
	if upd.Username != nil {
		v := strings.TrimSpace(*upd.Username)
		fields.Username = &v
	}
	if upd.Email != nil {
		v := repo.NormalizeEmail(*upd.Email)
		fields.Email = &v
	}
	if err := check(fields); err != nil {
		return nil, err
	}

	var username, email string
	if fields.Username != nil {
		username = *fields.Username
	}
	if fields.Email != nil {
		email = *fields.Email
	}
	taken, err := s.Repo.IdentityTaken(ctx, username, email, userID)
	if err != nil {
		l.Error("update_account_error", "status", 500, "reason", "identity lookup failed", "error", err)
		return nil, err
	}
	if taken {
		l.Warn("update_account_error", "status", 400, "reason", "username or email already exists")
		return nil, ErrDuplicateIdentity
	}

	user, err := s.Repo.UpdateUser(ctx, userID, repo.UserUpdate{
		Username: fields.Username,
		Email:    fields.Email,
		Password: fields.Password,
	})
	if err != nil {
		switch {
		case errors.Is(err, repo.ErrNotFound):
			return nil, ErrNotFound
		case errors.Is(err, repo.ErrAlreadyExists):
			return nil, ErrDuplicateIdentity
		}
		l.Error("update_account_error", "status", 500, "reason", "cannot update user", "error", err)
		return nil, err
	}

	s.publish(ctx, events.NewUserEvent(events.UserUpdated, user))
	l.Info("update_account_success", "password_changed", upd.Password != nil)
	return user, nil
}

// DeleteAccount removes the user together with every contact it owns.
func (s *AuthService) DeleteAccount(ctx context.Context, userID uuid.UUID) error {
	l := logging.FromContext(ctx).With("svc", "auth.delete_account", "user_id", userID)

	user, err := s.Me(ctx, userID)
	if err != nil {
		return err
	}

	if err := s.Repo.DeleteUser(ctx, userID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrNotFound
		}
		l.Error("delete_account_error", "status", 500, "reason", "cannot delete user", "error", err)
		return err
	}

	if s.Index != nil {
		if err := s.Index.RemoveOwner(ctx, userID); err != nil {
			l.Error("search_index_error", "op", "remove_owner", "error", err)
		}
	}
	s.publish(ctx, events.NewUserEvent(events.UserDeleted, user))
	l.Info("delete_account_success")
	return nil
}

func (s *AuthService) issue(user *models.User) (*AuthResult, error) {
	token, exp, err := s.Tokens.Issue(user.ID)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	return &AuthResult{User: user, Token: token, ExpiresAt: exp}, nil
}

func (s *AuthService) publish(ctx context.Context, ev events.UserEvent) {
	if s.Events == nil {
		return
	}
	if err := s.Events.Publish(ctx, events.TopicUsers, ev.UserID.String(), ev); err != nil {
		logging.FromContext(ctx).Error("publish_error", "topic", events.TopicUsers, "event", ev.Type, "error", err)
	}
}
