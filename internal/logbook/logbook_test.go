package logbook

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/kingrea/blueprint/internal/blueprint"
	"github.com/kingrea/blueprint/internal/events"
)

func TestTailReturnsRecentLinesAndTotal(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, FileName)
	book, err := New(path)
	if err != nil {
		t.Fatalf("new logbook: %v", err)
	}
	for i := 0; i < 5; i++ {
		book.Info("entry-%d", i)
	}
	lines, total := book.Tail(3)
	if total != 5 {
		t.Fatalf("total lines = %d, want 5", total)
	}
	if len(lines) != 3 {
		t.Fatalf("len(lines) = %d, want 3", len(lines))
	}
	for idx, want := range []string{"entry-2", "entry-3", "entry-4"} {
		if !strings.Contains(lines[idx], want) {
			t.Fatalf("line %d = %q, missing %s", idx, lines[idx], want)
		}
	}
}

func TestMessageAndEventLines(t *testing.T) {
	book, err := New(filepath.Join(t.TempDir(), "logs", FileName))
	if err != nil {
		t.Fatalf("new logbook: %v", err)
	}
	now := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	book.clock = func() time.Time { return now }

	book.Message(blueprint.NewMessage(blueprint.RoleUser, "Grade 7\nscience", now))
	book.Event(events.Event{Type: events.PersistenceFailed, DocumentID: "doc", Step: "WIZARD_VISION", Message: "disk full"})

	lines, total := book.Tail(10)
	if total != 2 {
		t.Fatalf("expected 2 lines, got %d: %v", total, lines)
	}
	if lines[0] != "2024-03-01T09:00:00Z CHAT  user: Grade 7 science" {
		t.Fatalf("unexpected chat line %q", lines[0])
	}
	if !strings.Contains(lines[1], "ERROR persistence_failed doc=doc step=WIZARD_VISION disk full") {
		t.Fatalf("unexpected event line %q", lines[1])
	}
}

func TestFollowDrainsSubscription(t *testing.T) {
	book, err := New(filepath.Join(t.TempDir(), FileName))
	if err != nil {
		t.Fatal(err)
	}
	router := events.NewRouter()
	sub := router.Subscribe("doc")
	done := make(chan struct{})
	go func() {
		book.Follow(sub)
		close(done)
	}()
	router.Publish(events.Event{Type: events.StepAdvanced, DocumentID: "doc"})
	deadline := time.Now().Add(time.Second)
	for {
		if _, total := book.Tail(1); total == 1 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("event was not recorded")
		}
		time.Sleep(5 * time.Millisecond)
	}
	router.Close()
	<-done
}

func TestNilLogbookIsSafe(t *testing.T) {
	var book *Logbook
	book.Info("ignored")
	if lines, total := book.Tail(5); lines != nil || total != 0 {
		t.Fatalf("expected empty tail")
	}
}
