package postgres

import (
	"context"
	"os"
	"testing"

	"github.com/homeboard/homeboard/internal/store"
	"github.com/homeboard/homeboard/internal/store/storetest"
)

func makePGStore(t *testing.T) store.Store {
	t.Helper()
	dsn := os.Getenv("HOMEBOARD_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("HOMEBOARD_POSTGRES_DSN not set; skipping postgres store integration test")
	}
	db, err := Open(dsn)
	if err != nil {
		t.Fatalf("postgres open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if err := Bootstrap(context.Background(), db); err != nil {
		t.Fatalf("postgres bootstrap: %v", err)
	}
	return NewWithDB(db)
}

func TestPostgresStore_Compliance(t *testing.T) {
	storetest.Run(t, makePGStore)
}
