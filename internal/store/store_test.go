package store_test

import (
	"testing"

	"github.com/msomdec/photolog/internal/domain"
	"github.com/msomdec/photolog/internal/store"
)

func entry(id, title string) domain.CatalogEntry {
	return domain.CatalogEntry{ID: id, Title: title, Image: []byte{0x1}}
}

func TestCurrent_EmptyStore(t *testing.T) {
	s := store.New()

	if got := s.Current(); len(got) != 0 {
		t.Fatalf("expected empty snapshot, got %d entries", len(got))
	}
	if s.Len() != 0 {
		t.Fatalf("expected Len 0, got %d", s.Len())
	}
}

func TestReplace_SwapsSnapshot(t *testing.T) {
	s := store.New()

	s.Replace([]domain.CatalogEntry{entry("a", "A"), entry("b", "B")})

	got := s.Current()
	if len(got) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(got))
	}
	if got[0].ID != "a" || got[1].ID != "b" {
		t.Fatalf("unexpected order: %s, %s", got[0].ID, got[1].ID)
	}
}

func TestReplace_NotifiesSubscribersInOrder(t *testing.T) {
	s := store.New()

	var order []string
	s.Subscribe(func(entries []domain.CatalogEntry) {
		order = append(order, "first")
	})
	s.Subscribe(func(entries []domain.CatalogEntry) {
		order = append(order, "second")
	})

	s.Replace([]domain.CatalogEntry{entry("a", "A")})

	if len(order) != 2 || order[0] != "first" || order[1] != "second" {
		t.Fatalf("expected [first second], got %v", order)
	}
}

func TestSubscribe_NoImmediateCallback(t *testing.T) {
	s := store.New()
	s.Replace([]domain.CatalogEntry{entry("a", "A")})

	called := false
	s.Subscribe(func(entries []domain.CatalogEntry) {
		called = true
	})

	if called {
		t.Fatal("subscriber should not receive the current snapshot on registration")
	}
}

func TestSubscriber_ReceivesFullSnapshot(t *testing.T) {
	s := store.New()

	var got []domain.CatalogEntry
	s.Subscribe(func(entries []domain.CatalogEntry) {
		got = entries
	})

	s.Replace([]domain.CatalogEntry{entry("a", "A"), entry("b", "B")})

	if len(got) != 2 {
		t.Fatalf("expected snapshot with 2 entries, got %d", len(got))
	}
}

func TestUnsubscribe_StopsNotifications(t *testing.T) {
	s := store.New()

	count := 0
	unsubscribe := s.Subscribe(func(entries []domain.CatalogEntry) {
		count++
	})

	s.Replace([]domain.CatalogEntry{entry("a", "A")})
	unsubscribe()
	s.Replace([]domain.CatalogEntry{entry("b", "B")})

	if count != 1 {
		t.Fatalf("expected exactly 1 notification, got %d", count)
	}
}

func TestUnsubscribe_LeavesOtherSubscribersIntact(t *testing.T) {
	s := store.New()

	first := 0
	second := 0
	unsubFirst := s.Subscribe(func([]domain.CatalogEntry) { first++ })
	s.Subscribe(func([]domain.CatalogEntry) { second++ })

	unsubFirst()
	s.Replace([]domain.CatalogEntry{entry("a", "A")})

	if first != 0 {
		t.Fatalf("unsubscribed callback ran %d times", first)
	}
	if second != 1 {
		t.Fatalf("expected remaining subscriber to run once, got %d", second)
	}
}

func TestCurrent_ReturnsCopy(t *testing.T) {
	s := store.New()
	s.Replace([]domain.CatalogEntry{entry("a", "A")})

	snapshot := s.Current()
	snapshot[0].Title = "mutated"

	if got := s.Current(); got[0].Title != "A" {
		t.Fatalf("store snapshot was mutated through a returned copy: %q", got[0].Title)
	}
}

func TestReplace_CopiesInput(t *testing.T) {
	s := store.New()

	input := []domain.CatalogEntry{entry("a", "A")}
	s.Replace(input)
	input[0].Title = "mutated"

	if got := s.Current(); got[0].Title != "A" {
		t.Fatalf("store snapshot aliases the caller's slice: %q", got[0].Title)
	}
}
