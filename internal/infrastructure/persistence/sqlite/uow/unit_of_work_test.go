package uow

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	gormsqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"bountyvault/internal/infrastructure/persistence/sqlite/model"
	"bountyvault/internal/ports"
)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(gormsqlite.Open(filepath.Join(t.TempDir(), "uow.db")), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&model.LedgerKV{}); err != nil {
		t.Fatalf("auto migrate: %v", err)
	}
	return db
}

func countKeys(t *testing.T, db *gorm.DB) int64 {
	t.Helper()

	var n int64
	if err := db.Model(&model.LedgerKV{}).Count(&n).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	return n
}

func insertKey(ctx context.Context, key string) error {
	tx, ok := ports.TxFromContext(ctx).(*gorm.DB)
	if !ok {
		return errors.New("missing tx")
	}
	return tx.Create(&model.LedgerKV{Key: key, Value: "v", UpdatedAt: "now"}).Error
}

func TestWithTxRollsBackOnError(t *testing.T) {
	db := setupDB(t)
	u := NewUnitOfWork(db)
	boom := errors.New("boom")

	err := u.WithTx(context.Background(), func(ctx context.Context) error {
		if err := insertKey(ctx, "a"); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("WithTx() error = %v, want boom", err)
	}
	if n := countKeys(t, db); n != 0 {
		t.Fatalf("rows after rollback = %d", n)
	}
}

func TestWithTxJoinsOuterTransaction(t *testing.T) {
	db := setupDB(t)
	u := NewUnitOfWork(db)

	err := u.WithTx(context.Background(), func(ctx context.Context) error {
		outer := ports.TxFromContext(ctx)
		if err := u.WithTx(ctx, func(inner context.Context) error {
			if ports.TxFromContext(inner) != outer {
				t.Fatalf("inner unit of work opened a new transaction")
			}
			return insertKey(inner, "inner")
		}); err != nil {
			return err
		}
		return errors.New("abort outer")
	})
	if err == nil {
		t.Fatalf("WithTx() expected error")
	}
	if n := countKeys(t, db); n != 0 {
		t.Fatalf("inner write survived outer rollback: %d rows", n)
	}
}
