package cart

import (
	"context"
	"io"
	"testing"

	"github.com/avaldez-dev/storefront-core/pkg/db/models"
	"github.com/avaldez-dev/storefront-core/pkg/logger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func newTestService(t *testing.T, f *fixture) Service {
	t.Helper()
	svc, err := NewService(f.local, f.remote, f.products, f.logg)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func TestServiceAddItemReturnsView(t *testing.T) {
	t.Parallel()

	f := newFixture()
	svc := newTestService(t, f)
	ctx := context.Background()
	productA := f.addProduct("Desk Lamp", 45.00)
	subject := Subject{SessionID: uuid.NewString()}

	view, err := svc.AddItem(ctx, subject, productA, 2)
	if err != nil {
		t.Fatalf("add item: %v", err)
	}
	if view.Count != 2 {
		t.Fatalf("expected count 2, got %d", view.Count)
	}
	if !view.Total.Equal(decimal.NewFromInt(90)) {
		t.Fatalf("expected total 90, got %s", view.Total)
	}

	// A fresh view hydrates the same lines back from the store.
	again, err := svc.View(ctx, subject)
	if err != nil {
		t.Fatalf("view: %v", err)
	}
	if len(again.Lines) != 1 || again.Lines[0].Quantity != 2 {
		t.Fatalf("expected rehydrated line with quantity 2, got %+v", again.Lines)
	}
}

func TestServiceUserSignedInMergesLocalCart(t *testing.T) {
	t.Parallel()

	f := newFixture()
	svc := newTestService(t, f)
	ctx := context.Background()
	sessionID := uuid.NewString()
	productA := f.addProduct("Desk Lamp", 45.00)
	user := &models.User{ID: uuid.New(), Email: "shopper@example.com"}

	if _, err := svc.AddItem(ctx, Subject{SessionID: sessionID}, productA, 2); err != nil {
		t.Fatalf("seed anonymous cart: %v", err)
	}
	if _, err := f.remote.Upsert(ctx, &models.CartLine{UserID: user.ID, ProductID: productA, Quantity: 1}); err != nil {
		t.Fatalf("seed remote cart: %v", err)
	}

	if err := svc.UserSignedIn(ctx, user, sessionID); err != nil {
		t.Fatalf("user signed in: %v", err)
	}

	view, err := svc.View(ctx, Subject{UserID: user.ID})
	if err != nil {
		t.Fatalf("view account cart: %v", err)
	}
	if len(view.Lines) != 1 || view.Lines[0].Quantity != 3 {
		t.Fatalf("expected merged quantity 3, got %+v", view.Lines)
	}

	snap, err := f.local.Load(ctx, sessionID)
	if err != nil {
		t.Fatalf("load snapshot: %v", err)
	}
	if !snap.Empty() {
		t.Fatal("expected local snapshot cleared after merge")
	}
}

func TestServiceUserSignedInWithoutSessionIsNoop(t *testing.T) {
	t.Parallel()

	f := newFixture()
	svc := newTestService(t, f)
	user := &models.User{ID: uuid.New()}

	if err := svc.UserSignedIn(context.Background(), user, ""); err != nil {
		t.Fatalf("expected no-op, got %v", err)
	}
	if f.remote.upserts != 0 {
		t.Fatalf("expected no remote writes, got %d", f.remote.upserts)
	}
}

func TestServiceUserSignedInEmptyCartSkipsMerge(t *testing.T) {
	t.Parallel()

	f := newFixture()
	svc := newTestService(t, f)
	user := &models.User{ID: uuid.New()}

	if err := svc.UserSignedIn(context.Background(), user, uuid.NewString()); err != nil {
		t.Fatalf("expected empty merge to succeed, got %v", err)
	}
	if f.remote.upserts != 0 {
		t.Fatalf("expected no remote writes for empty cart, got %d", f.remote.upserts)
	}
}

func TestNewServiceValidatesDependencies(t *testing.T) {
	t.Parallel()

	f := newFixture()
	logg := logger.New(logger.Options{ServiceName: "cart-test", Output: io.Discard})

	if _, err := NewService(nil, f.remote, f.products, logg); err == nil {
		t.Fatal("expected error for nil local store")
	}
	if _, err := NewService(f.local, nil, f.products, logg); err == nil {
		t.Fatal("expected error for nil remote store")
	}
	if _, err := NewService(f.local, f.remote, nil, logg); err == nil {
		t.Fatal("expected error for nil product loader")
	}
	if _, err := NewService(f.local, f.remote, f.products, nil); err == nil {
		t.Fatal("expected error for nil logger")
	}
}
