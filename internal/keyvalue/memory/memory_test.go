package memory

import (
	"context"
	"errors"
	"testing"

	"ledger/internal/keyvalue"
)

func TestMemoryStoreGetAndSet(t *testing.T) {
	ctx := context.Background()
	s := New()

	if _, found, err := s.Get(ctx, "transactions"); err != nil || found {
		t.Fatalf("expected missing key, found=%v err=%v", found, err)
	}

	value := []byte(`[]`)
	if err := s.Set(ctx, "transactions", value); err != nil {
		t.Fatalf("set: %v", err)
	}
	value[0] = 'x' // caller buffer must not alias stored value

	got, found, err := s.Get(ctx, "transactions")
	if err != nil || !found || string(got) != "[]" {
		t.Fatalf("unexpected get: %q found=%v err=%v", got, found, err)
	}
}

func TestNewWithDataAndClose(t *testing.T) {
	ctx := context.Background()
	s := NewWithData(map[string][]byte{"k": []byte("v")})

	got, found, _ := s.Get(ctx, "k")
	if !found || string(got) != "v" {
		t.Fatalf("expected seeded value, got %q", got)
	}

	if err := s.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := s.Set(ctx, "k", nil); !errors.Is(err, keyvalue.ErrClosed) {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
}
