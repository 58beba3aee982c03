package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/contacts/internal/events"
	"github.com/Skotchmaster/contacts/internal/hash"
	"github.com/Skotchmaster/contacts/internal/tokens"
)

func TestAuthService_Register_Success(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	res, err := env.Auth.Register(ctx, "alice", "Alice@X.com", "secret1")
	require.NoError(t, err)
	require.NotNil(t, res.User)
	require.NotEmpty(t, res.Token)

	assert.Equal(t, "alice", res.User.Username)
	assert.Equal(t, "alice@x.com", res.User.Email)
	assert.NotEqual(t, "secret1", res.User.PasswordHash)

	id, err := env.Auth.Tokens.Verify(res.Token)
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, id)

	assert.Equal(t, []string{events.UserRegistered}, env.Events.types())
	assert.Equal(t, events.TopicUsers, env.Events.sent[0].Topic)
	assert.Equal(t, res.User.ID.String(), env.Events.sent[0].Key)
}

func TestAuthService_Register_MissingFields(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name                      string
		username, email, password string
	}{
		{name: "no username", email: "a@x.com", password: "secret1"},
		{name: "no email", username: "alice", password: "secret1"},
		{name: "no password", username: "alice", email: "a@x.com"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.Auth.Register(context.Background(), tt.username, tt.email, tt.password)
			verr := validationError(t, err)
			assert.Equal(t, "Username, email, and password are required", verr.Message)
			assert.Empty(t, verr.Details)
		})
	}
}

func TestAuthService_Register_FieldRules(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name                      string
		username, email, password string
		field                     string
	}{
		{name: "short username", username: "al", email: "a@x.com", password: "secret1", field: "username"},
		{name: "long username", username: strings.Repeat("a", 51), email: "a@x.com", password: "secret1", field: "username"},
		{name: "bad email", username: "alice", email: "not-an-email", password: "secret1", field: "email"},
		{name: "short password", username: "alice", email: "a@x.com", password: "12345", field: "password"},
		{name: "long password", username: "alice", email: "a@x.com", password: strings.Repeat("p", 101), field: "password"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.Auth.Register(context.Background(), tt.username, tt.email, tt.password)
			verr := validationError(t, err)
			assert.Equal(t, "Validation error", verr.Message)
			require.Len(t, verr.Details, 1)
			assert.Equal(t, tt.field, verr.Details[0].Field)
		})
	}
}

func TestAuthService_Register_Duplicate(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "alice", "alice@x.com")

	tests := []struct {
		name            string
		username, email string
	}{
		{name: "same username", username: "alice", email: "other@x.com"},
		{name: "username other case", username: "ALICE", email: "other@x.com"},
		{name: "same email", username: "bob", email: "alice@x.com"},
		{name: "email other case", username: "bob", email: "ALICE@x.com"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.Auth.Register(context.Background(), tt.username, tt.email, "secret1")
			assert.ErrorIs(t, err, ErrDuplicateIdentity)
		})
	}
}

func TestAuthService_Login(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	reg := env.register(t, "alice", "alice@x.com")

	res, err := env.Auth.Login(ctx, "alice@x.com", "password123")
	require.NoError(t, err)
	assert.Equal(t, reg.User.ID, res.User.ID)
	assert.NotEmpty(t, res.Token)

	_, err = env.Auth.Login(ctx, "ALICE@X.COM", "password123")
	require.NoError(t, err)

	_, err = env.Auth.Login(ctx, "alice@x.com", "wrong-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = env.Auth.Login(ctx, "nobody@x.com", "password123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = env.Auth.Login(ctx, "", "password123")
	verr := validationError(t, err)
	assert.Equal(t, "Email and password are required", verr.Message)
}

func TestAuthService_Authenticate(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	reg := env.register(t, "alice", "alice@x.com")

	u, err := env.Auth.Authenticate(ctx, reg.Token)
	require.NoError(t, err)
	assert.Equal(t, reg.User.ID, u.ID)

	_, err = env.Auth.Authenticate(ctx, reg.Token+"x")
	assert.ErrorIs(t, err, tokens.ErrInvalidToken)

	require.NoError(t, env.Auth.DeleteAccount(ctx, reg.User.ID))
	_, err = env.Auth.Authenticate(ctx, reg.Token)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAuthService_UpdateAccount_Password(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	reg := env.register(t, "alice", "alice@x.com")

	name := "alice2"
	u, err := env.Auth.UpdateAccount(ctx, reg.User.ID, AccountUpdate{Username: &name})
	require.NoError(t, err)
	assert.Equal(t, "alice2", u.Username)
	assert.Equal(t, reg.User.PasswordHash, u.PasswordHash)

	pw := "new-secret"
	u, err = env.Auth.UpdateAccount(ctx, reg.User.ID, AccountUpdate{Password: &pw})
	require.NoError(t, err)
	assert.NotEqual(t, reg.User.PasswordHash, u.PasswordHash)
	assert.True(t, hash.CheckPassword(u.PasswordHash, pw))

	_, err = env.Auth.Login(ctx, "alice@x.com", "password123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = env.Auth.Login(ctx, "alice@x.com", pw)
	require.NoError(t, err)

	assert.Equal(t, []string{events.UserRegistered, events.UserUpdated, events.UserUpdated}, env.Events.types())
}

func TestAuthService_UpdateAccount_Rules(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.register(t, "alice", "alice@x.com")
	env.register(t, "bob", "bob@x.com")

	_, err := env.Auth.UpdateAccount(ctx, alice.User.ID, AccountUpdate{})
	validationError(t, err)

	short := "ab"
	_, err = env.Auth.UpdateAccount(ctx, alice.User.ID, AccountUpdate{Username: &short})
	verr := validationError(t, err)
	require.Len(t, verr.Details, 1)
	assert.Equal(t, "username", verr.Details[0].Field)

	taken := "BOB"
	_, err = env.Auth.UpdateAccount(ctx, alice.User.ID, AccountUpdate{Username: &taken})
	assert.ErrorIs(t, err, ErrDuplicateIdentity)

	own := "Alice@x.com"
	u, err := env.Auth.UpdateAccount(ctx, alice.User.ID, AccountUpdate{Email: &own})
	require.NoError(t, err)
	assert.Equal(t, "alice@x.com", u.Email)

	name := "ghost"
	_, err = env.Auth.UpdateAccount(ctx, uuid.New(), AccountUpdate{Username: &name})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAuthService_DeleteAccount_Cascades(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.register(t, "alice", "alice@x.com")
	bob := env.register(t, "bob", "bob@x.com")

	_, err := env.Contacts.Create(ctx, alice.User.ID, "Carol", "carol@x.com")
	require.NoError(t, err)
	bobs, err := env.Contacts.Create(ctx, bob.User.ID, "Dave", "dave@x.com")
	require.NoError(t, err)

	require.NoError(t, env.Auth.DeleteAccount(ctx, alice.User.ID))

	_, err = env.Auth.Me(ctx, alice.User.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	left, err := env.Repo.ListContacts(ctx, alice.User.ID)
	require.NoError(t, err)
	assert.Empty(t, left)

	_, err = env.Contacts.Get(ctx, bob.User.ID, bobs.ID)
	require.NoError(t, err)

	assert.Equal(t, []uuid.UUID{alice.User.ID}, env.Index.owners)
	types := env.Events.types()
	assert.Equal(t, events.UserDeleted, types[len(types)-1])

	assert.ErrorIs(t, env.Auth.DeleteAccount(ctx, alice.User.ID), ErrNotFound)
}

func TestAuthService_PublishFailureDoesNotFailRequest(t *testing.T) {
	env := newTestEnv(t)
	env.Events.err = errors.New("broker down")

	res, err := env.Auth.Register(context.Background(), "alice", "alice@x.com", "secret1")
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)
}
