package notify

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestWriterFormatsVariants(t *testing.T) {
	var buf bytes.Buffer
	n := NewWriter(&buf)

	n.Show(context.Background(), Message{Title: "Welcome!"})
	n.Show(context.Background(), Message{Title: "Error", Description: "Fill in all fields", Variant: Destructive})

	want := "* Welcome!\n! Error: Fill in all fields\n"
	if buf.String() != want {
		t.Fatalf("expected %q, got %q", want, buf.String())
	}
}

func TestLogUsesLevels(t *testing.T) {
	var buf bytes.Buffer
	n := NewLog(zerolog.New(&buf))

	n.Show(context.Background(), Message{Title: "Signed out"})
	n.Show(context.Background(), Message{Title: "Error", Variant: Destructive})

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	if !strings.Contains(lines[0], `"level":"info"`) || !strings.Contains(lines[1], `"level":"warn"`) {
		t.Fatalf("unexpected levels: %v", lines)
	}
}

func TestRecorder(t *testing.T) {
	var r Recorder
	if _, ok := r.Last(); ok {
		t.Fatal("expected empty recorder")
	}
	r.Show(context.Background(), Message{Title: "a"})
	r.Show(context.Background(), Message{Title: "b"})
	if last, _ := r.Last(); last.Title != "b" || len(r.Messages()) != 2 {
		t.Fatalf("unexpected recorder state %+v", r.Messages())
	}
}
