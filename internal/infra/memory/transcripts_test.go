package memory_test

import (
	"fmt"
	"sync"
	"testing"

	"github.com/boddenberg/citizen-ai-portal/internal/domain"
	"github.com/boddenberg/citizen-ai-portal/internal/infra/memory"
)

func TestTranscriptStore_AppendAndGet(t *testing.T) {
	store := memory.NewTranscriptStore()

	store.Append("citizen1", domain.TranscriptEntry{Sender: domain.SenderUser, Text: "hello"})
	store.Append("citizen1", domain.TranscriptEntry{Sender: domain.SenderAssistant, Text: "hi there"})

	entries := store.Get("citizen1")
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Text != "hello" || entries[1].Text != "hi there" {
		t.Errorf("unexpected entries: %v", entries)
	}
}

func TestTranscriptStore_IdentitiesAreIsolated(t *testing.T) {
	store := memory.NewTranscriptStore()

	store.Append("citizen1", domain.TranscriptEntry{Sender: domain.SenderUser, Text: "a"})
	store.Append("citizen2", domain.TranscriptEntry{Sender: domain.SenderUser, Text: "b"})

	if len(store.Get("citizen1")) != 1 || len(store.Get("citizen2")) != 1 {
		t.Error("transcripts leaked between identities")
	}
}

func TestTranscriptStore_GetReturnsCopy(t *testing.T) {
	store := memory.NewTranscriptStore()
	store.Append("citizen1", domain.TranscriptEntry{Sender: domain.SenderUser, Text: "original"})

	entries := store.Get("citizen1")
	entries[0].Text = "mutated"

	if store.Get("citizen1")[0].Text != "original" {
		t.Error("Get must return a copy, not the backing slice")
	}
}

func TestTranscriptStore_UnknownIdentityIsEmpty(t *testing.T) {
	store := memory.NewTranscriptStore()

	if entries := store.Get("nobody"); len(entries) != 0 {
		t.Errorf("expected empty transcript, got %d entries", len(entries))
	}
}

func TestTranscriptStore_ConcurrentAppends(t *testing.T) {
	store := memory.NewTranscriptStore()

	const workers = 10
	const perWorker = 100

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			identity := fmt.Sprintf("citizen%d", w%2) // two identities contended
			for i := 0; i < perWorker; i++ {
				store.Append(identity, domain.TranscriptEntry{Sender: domain.SenderUser, Text: "x"})
			}
		}(w)
	}
	wg.Wait()

	total := len(store.Get("citizen0")) + len(store.Get("citizen1"))
	if total != workers*perWorker {
		t.Errorf("expected %d entries with no lost appends, got %d", workers*perWorker, total)
	}
}
