package integration

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"membership_webapp/internal/domain"
	"membership_webapp/internal/migrations"
	"membership_webapp/internal/repository"
	"membership_webapp/internal/service"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
)

// openDB migrates and connects to DATABASE_URL, skipping when unset.
func openDB(t *testing.T) (*pgxpool.Pool, string) {
	t.Helper()
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("DATABASE_URL not set")
	}

	require.NoError(t, migrations.Up(dsn))

	db, err := pgxpool.New(context.Background(), dsn)
	require.NoError(t, err)
	t.Cleanup(db.Close)
	return db, dsn
}

// uniq suffixes names so reruns against the same database never collide.
func uniq(prefix string) string {
	return fmt.Sprintf("%s_%d", prefix, time.Now().UnixNano()%1_000_000_000)
}

func createUser(t *testing.T, users *repository.UserRepository, username string) *domain.User {
	t.Helper()
	hash, err := service.HashPassword("integration-pass")
	require.NoError(t, err)
	u := &domain.User{Username: username, PasswordHash: hash}
	require.NoError(t, users.Create(context.Background(), u))
	return u
}
