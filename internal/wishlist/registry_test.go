package wishlist

import (
	"testing"

	pkgerrors "github.com/angelmondragon/marketplace-backend/pkg/errors"
)

func TestRegistry_Watch(t *testing.T) {
	reg := NewRegistry()

	if err := reg.Watch(1, "buyer-a"); err != nil {
		t.Fatalf("unexpected watch error: %v", err)
	}
	if err := reg.Watch(1, "buyer-b"); err != nil {
		t.Fatalf("unexpected watch error: %v", err)
	}
	if err := reg.Watch(2, "buyer-a"); err != nil {
		t.Fatalf("unexpected watch error: %v", err)
	}

	watchers := reg.WatchersOf(1)
	if len(watchers) != 2 || watchers[0] != "buyer-a" || watchers[1] != "buyer-b" {
		t.Fatalf("unexpected watchers %v", watchers)
	}
	items := reg.ItemsFor("buyer-a")
	if len(items) != 2 || items[0] != 1 || items[1] != 2 {
		t.Fatalf("unexpected wishlist %v", items)
	}
	if got := reg.WatchersOf(2); len(got) != 1 || got[0] != "buyer-a" {
		t.Fatalf("expected buyer-a to watch item 2, got %v", got)
	}
}

func TestRegistry_WatchIsIdempotent(t *testing.T) {
	reg := NewRegistry()
	if err := reg.Watch(1, "buyer-a"); err != nil {
		t.Fatalf("unexpected watch error: %v", err)
	}

	err := reg.Watch(1, "buyer-a")
	if !pkgerrors.IsCode(err, pkgerrors.CodeConflict) {
		t.Fatalf("expected conflict on duplicate watch, got %v", err)
	}
	if got := reg.WatchersOf(1); len(got) != 1 {
		t.Fatalf("duplicate watch must not add a watcher, got %v", got)
	}
	if got := reg.ItemsFor("buyer-a"); len(got) != 1 {
		t.Fatalf("duplicate watch must not grow the wishlist, got %v", got)
	}
}

func TestRegistry_EmptyLookups(t *testing.T) {
	reg := NewRegistry()
	if got := reg.WatchersOf(9); got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil watchers, got %#v", got)
	}
	if got := reg.ItemsFor("nobody"); got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil wishlist, got %#v", got)
	}
	if err := reg.Watch(1, ""); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error for blank buyer, got %v", err)
	}
}

func TestRegistry_WatchersOfReturnsCopy(t *testing.T) {
	reg := NewRegistry()
	if err := reg.Watch(1, "buyer-a"); err != nil {
		t.Fatalf("unexpected watch error: %v", err)
	}
	got := reg.WatchersOf(1)
	got[0] = "mutated"
	if reg.WatchersOf(1)[0] != "buyer-a" {
		t.Fatal("callers must not be able to mutate registry state")
	}
}
