package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/contacts/internal/db"
	"github.com/Skotchmaster/contacts/internal/events"
	"github.com/Skotchmaster/contacts/internal/models"
	"github.com/Skotchmaster/contacts/internal/repo"
	"github.com/Skotchmaster/contacts/internal/search"
	"github.com/Skotchmaster/contacts/internal/tokens"
)

type published struct {
	Topic string
	Key   string
	Event any
}

type recordingPublisher struct {
	mu   sync.Mutex
	sent []published
	err  error
}

func (p *recordingPublisher) Publish(_ context.Context, topic, key string, event any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.sent = append(p.sent, published{Topic: topic, Key: key, Event: event})
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]string, 0, len(p.sent))
	for _, s := range p.sent {
		switch ev := s.Event.(type) {
		case events.UserEvent:
			out = append(out, ev.Type)
		case events.ContactEvent:
			out = append(out, ev.Type)
		}
	}
	return out
}

// recordingIndex searches through the database and remembers writes.
type recordingIndex struct {
	*search.DBIndex
	put     []uuid.UUID
	removed []uuid.UUID
	owners  []uuid.UUID
	err     error
}

func (i *recordingIndex) Put(_ context.Context, c *models.Contact) error {
	i.put = append(i.put, c.ID)
	return i.err
}

func (i *recordingIndex) Remove(_ context.Context, _ uuid.UUID, id uuid.UUID) error {
	i.removed = append(i.removed, id)
	return i.err
}

func (i *recordingIndex) RemoveOwner(_ context.Context, owner uuid.UUID) error {
	i.owners = append(i.owners, owner)
	return i.err
}

type testEnv struct {
	Repo     *repo.GormRepo
	Auth     *AuthService
	Contacts *ContactService
	Events   *recordingPublisher
	Index    *recordingIndex
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	ctx := context.Background()
	gdb, err := db.Open(ctx, "sqlite://:memory:")
	require.NoError(t, err)
	require.NoError(t, db.Migrate(ctx, gdb))
	t.Cleanup(func() { _ = db.Close(gdb) })

	r := repo.New(gdb)
	pub := &recordingPublisher{}
	idx := &recordingIndex{DBIndex: search.NewDBIndex(r)}

	return &testEnv{
		Repo:   r,
		Events: pub,
		Index:  idx,
		Auth: &AuthService{
			Repo:   r,
			Tokens: tokens.NewManager([]byte("test-jwt-secret"), time.Hour),
			Events: pub,
			Index:  idx,
		},
		Contacts: &ContactService{
			Repo:   r,
			Events: pub,
			Index:  idx,
		},
	}
}

func (env *testEnv) register(t *testing.T, username, email string) *AuthResult {
	t.Helper()

	res, err := env.Auth.Register(context.Background(), username, email, "password123")
	require.NoError(t, err)
	return res
}

func validationError(t *testing.T, err error) *ValidationError {
	t.Helper()

	require.Error(t, err)
	require.ErrorIs(t, err, ErrValidation)
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	return verr
}
