package session_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/minqi/ai-chat/backend/internal/model/chat"
	"github.com/minqi/ai-chat/backend/internal/service/session"
)

func appendN(t *testing.T, store *session.Store, token string, n int) {
	t.Helper()
	ctx := context.Background()
	for i := 0; i < n; i++ {
		store.Append(ctx, token, chat.Turn{Role: chat.RoleUser, Content: fmt.Sprintf("turn-%d", i)})
	}
}

func TestGetOrCreateStartsEmpty(t *testing.T) {
	store := session.NewStore()
	ctx := context.Background()

	token := session.NewToken()
	if history := store.GetOrCreate(ctx, token); len(history) != 0 {
		t.Fatalf("new session should have empty history, got %d turns", len(history))
	}
}

func TestAppendEvictsOldestBeyondCap(t *testing.T) {
	store := session.NewStore()
	ctx := context.Background()
	token := session.NewToken()

	appendN(t, store, token, session.MaxStoredTurns+7)

	history := store.GetOrCreate(ctx, token)
	if len(history) != session.MaxStoredTurns {
		t.Fatalf("expected %d turns after eviction, got %d", session.MaxStoredTurns, len(history))
	}

	// The retained suffix must be the last 50 appends in original order.
	want := fmt.Sprintf("turn-%d", 7)
	if history[0].Content != want {
		t.Errorf("oldest retained turn = %q, want %q", history[0].Content, want)
	}
	last := fmt.Sprintf("turn-%d", session.MaxStoredTurns+6)
	if history[len(history)-1].Content != last {
		t.Errorf("newest retained turn = %q, want %q", history[len(history)-1].Content, last)
	}
}

func TestRecentBoundsAndOrder(t *testing.T) {
	store := session.NewStore()
	ctx := context.Background()
	token := session.NewToken()

	appendN(t, store, token, 30)

	recent := store.Recent(ctx, token, 10)
	if len(recent) != 20 {
		t.Fatalf("expected 20 turns for 10 exchanges, got %d", len(recent))
	}
	if recent[0].Content != "turn-10" || recent[19].Content != "turn-29" {
		t.Errorf("recent window mismatch: first=%q last=%q", recent[0].Content, recent[19].Content)
	}

	// Fewer stored turns than the window returns all of them.
	short := session.NewToken()
	appendN(t, store, short, 3)
	if got := store.Recent(ctx, short, 10); len(got) != 3 {
		t.Fatalf("expected 3 turns, got %d", len(got))
	}
}

func TestRecentDoesNotMutate(t *testing.T) {
	store := session.NewStore()
	ctx := context.Background()
	token := session.NewToken()

	appendN(t, store, token, 8)

	first := store.Recent(ctx, token, 10)
	second := store.Recent(ctx, token, 10)
	if len(first) != len(second) {
		t.Fatalf("consecutive Recent calls disagree: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].Content != second[i].Content {
			t.Fatalf("turn %d differs between consecutive reads", i)
		}
	}

	// Mutating the returned slice must not leak into the store.
	first[0].Content = "tampered"
	if got := store.Recent(ctx, token, 10); got[0].Content == "tampered" {
		t.Fatal("Recent returned a view into stored history")
	}
}

func TestClearEmptiesHistory(t *testing.T) {
	store := session.NewStore()
	ctx := context.Background()
	token := session.NewToken()

	appendN(t, store, token, 12)
	store.Clear(ctx, token)

	if got := store.Recent(ctx, token, 10); len(got) != 0 {
		t.Fatalf("expected empty history after clear, got %d turns", len(got))
	}

	// Idempotent, and a no-op for unknown tokens.
	store.Clear(ctx, token)
	store.Clear(ctx, "never-seen")
}

func TestConcurrentSessionsDoNotCorrupt(t *testing.T) {
	store := session.NewStore()
	ctx := context.Background()

	var wg sync.WaitGroup
	tokens := make([]string, 8)
	for i := range tokens {
		tokens[i] = session.NewToken()
	}

	for _, token := range tokens {
		wg.Add(1)
		go func(token string) {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				store.Append(ctx, token, chat.Turn{Role: chat.RoleUser, Content: "x"})
				store.Recent(ctx, token, 10)
			}
		}(token)
	}
	wg.Wait()

	for _, token := range tokens {
		if got := len(store.GetOrCreate(ctx, token)); got != session.MaxStoredTurns {
			t.Fatalf("session %s: expected %d turns, got %d", token, session.MaxStoredTurns, got)
		}
	}
}
