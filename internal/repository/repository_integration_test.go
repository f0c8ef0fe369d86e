//go:build integration

package repository

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/clientdesk/clientdesk/internal/testutil"
)

func TestIntegrationRepository(t *testing.T) {
	repo := newIntegrationRepository(t)

	runStoreContract(t, func(t *testing.T) Store {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := testutil.TruncateAll(ctx, repo.Pool()); err != nil {
			t.Fatalf("reset tables: %v", err)
		}
		return repo
	})
}

func TestIntegrationRepository_MigrateIsIdempotent(t *testing.T) {
	repo := newIntegrationRepository(t)

	ctx := context.Background()
	if err := repo.Migrate(ctx, slog.New(slog.NewTextHandler(io.Discard, nil))); err != nil {
		t.Fatalf("second migrate: %v", err)
	}
}

func newIntegrationRepository(t *testing.T) *Repository {
	t.Helper()

	dsn := testutil.RequireEnv(t, "DATABASE_URL")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	repo, err := New(ctx, dsn)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(repo.Close)

	unlock, err := testutil.AcquireDBLock(context.Background(), repo.Pool())
	if err != nil {
		t.Fatalf("lock: %v", err)
	}
	t.Cleanup(func() {
		if err := unlock(); err != nil {
			t.Logf("unlock: %v", err)
		}
	})

	if err := repo.Migrate(ctx, slog.New(slog.NewTextHandler(io.Discard, nil))); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return repo
}
