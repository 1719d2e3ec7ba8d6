package sellers

import (
	"testing"

	pkgerrors "github.com/angelmondragon/marketplace-backend/pkg/errors"
)

func TestRegistry_Register(t *testing.T) {
	reg := NewRegistry()

	seller, err := reg.Register("seller-1", "10.0.0.4:50052")
	if err != nil {
		t.Fatalf("unexpected register error: %v", err)
	}
	if seller.ID != "seller-1" || seller.Endpoint != "10.0.0.4:50052" {
		t.Fatalf("unexpected seller %+v", seller)
	}
	if seller.RegisteredAt.IsZero() {
		t.Fatal("expected registration timestamp")
	}
	if !reg.IsRegistered("seller-1") {
		t.Fatal("expected seller to be registered")
	}
	if reg.Count() != 1 {
		t.Fatalf("expected one seller, got %d", reg.Count())
	}
}

func TestRegistry_RegisterDuplicate(t *testing.T) {
	reg := NewRegistry()
	if _, err := reg.Register("seller-1", "a"); err != nil {
		t.Fatalf("unexpected register error: %v", err)
	}

	_, err := reg.Register("seller-1", "b")
	if !pkgerrors.IsCode(err, pkgerrors.CodeConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}

	seller, ok := reg.Lookup("seller-1")
	if !ok || seller.Endpoint != "a" {
		t.Fatalf("original registration must be kept, got %+v", seller)
	}
}

func TestRegistry_RegisterRequiresIdentity(t *testing.T) {
	reg := NewRegistry()
	if _, err := reg.Register("  ", "a"); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if reg.Count() != 0 {
		t.Fatal("failed registration must not be stored")
	}
}

func TestRegistry_LookupUnknown(t *testing.T) {
	reg := NewRegistry()
	if _, ok := reg.Lookup("ghost"); ok {
		t.Fatal("expected unknown seller lookup to miss")
	}
	if reg.IsRegistered("ghost") {
		t.Fatal("expected unknown seller to be unregistered")
	}
}
