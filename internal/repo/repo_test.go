package repo

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/contacts/internal/db"
	"github.com/Skotchmaster/contacts/internal/models"
)

func newTestRepo(t *testing.T) *GormRepo {
	t.Helper()

	ctx := context.Background()
	gdb, err := db.Open(ctx, "sqlite://:memory:")
	require.NoError(t, err)
	require.NoError(t, db.Migrate(ctx, gdb))
	t.Cleanup(func() { _ = db.Close(gdb) })

	return New(gdb)
}

func mustCreateUser(t *testing.T, r *GormRepo, username, email string) *models.User {
	t.Helper()

	u, err := r.CreateUser(context.Background(), username, email, "password123")
	require.NoError(t, err)
	return u
}
