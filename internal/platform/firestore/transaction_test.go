package firestore

import (
	"context"
	"strings"
	"testing"
	"time"

	"cloud.google.com/go/firestore"
)

func TestRunTransactionRequiresFunc(t *testing.T) {
	err := RunTransaction(context.Background(), nil, nil)
	if err == nil {
		t.Fatal("expected an error for a nil transaction function")
	}
	if !strings.Contains(err.Error(), "transaction function") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestRunTransactionRequiresClient(t *testing.T) {
	fn := func(context.Context, *firestore.Transaction) error { return nil }
	err := RunTransaction(context.Background(), nil, fn)
	if err == nil {
		t.Fatal("expected an error for a nil client")
	}
	if !strings.Contains(err.Error(), "client is nil") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestTxOptionsGuardInvalidValues(t *testing.T) {
	settings := txSettings{attempts: 5, timeout: 15 * time.Second}

	WithTxAttempts(0)(&settings)
	WithTxTimeout(-time.Second)(&settings)
	if settings.attempts != 5 || settings.timeout != 15*time.Second {
		t.Fatalf("invalid option values must not override defaults, got %+v", settings)
	}

	WithTxAttempts(3)(&settings)
	WithTxTimeout(time.Second)(&settings)
	if settings.attempts != 3 || settings.timeout != time.Second {
		t.Fatalf("options not applied, got %+v", settings)
	}
}
