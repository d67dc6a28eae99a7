package locks

import (
	"context"
	"testing"

	"github.com/codr1/courtbook/internal/config"
)

var (
	_ Locker = (*LocalLocker)(nil)
	_ Locker = (*RedisLocker)(nil)
)

func TestNewSelectsDriver(t *testing.T) {
	ctx := context.Background()

	for _, driver := range []string{"", config.LockDriverLocal} {
		locker, err := New(ctx, config.LocksConfig{Driver: driver})
		if err != nil {
			t.Fatalf("New(%q) error = %v", driver, err)
		}
		if _, ok := locker.(*LocalLocker); !ok {
			t.Fatalf("New(%q) = %T, want *LocalLocker", driver, locker)
		}
		unlock, err := locker.Lock(ctx, 1)
		if err != nil {
			t.Fatalf("Lock() error = %v", err)
		}
		unlock()
	}

	if _, err := New(ctx, config.LocksConfig{Driver: "etcd"}); err == nil {
		t.Fatal("New(etcd) error = nil, want unsupported driver")
	}
}
