package repo

import (
	"context"
	"errors"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	return conn
}

func TestBaseDB_BindsContext(t *testing.T) {
	db := newTestDB(t)
	base := NewBase(db)

	ctx := context.WithValue(context.Background(), struct{}{}, "value")
	withCtx := base.DB(ctx)
	if withCtx.Statement == nil || withCtx.Statement.Context != ctx {
		t.Fatalf("expected context to flow through")
	}

	if base.DB(nil) != db {
		t.Fatalf("expected nil context to return raw connection")
	}
	if base.Conn() != db {
		t.Fatalf("expected Conn to return raw connection")
	}
}

func TestFoundMapsNotFoundToNil(t *testing.T) {
	type row struct{ ID int }

	got, err := Found(&row{ID: 1}, gorm.ErrRecordNotFound)
	if err != nil || got != nil {
		t.Fatalf("expected nil, nil for not found; got %v, %v", got, err)
	}

	boom := errors.New("boom")
	if _, err := Found(&row{}, boom); !errors.Is(err, boom) {
		t.Fatalf("expected error passthrough, got %v", err)
	}

	r := &row{ID: 7}
	if got, err := Found(r, nil); err != nil || got != r {
		t.Fatalf("expected row passthrough")
	}
}
