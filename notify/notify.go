package notify

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/rs/zerolog"
)

// Variant selects how a message is presented.
type Variant string

const (
	Default     Variant = "default"
	Destructive Variant = "destructive"
)

// Message is one toast.
type Message struct {
	Title       string
	Description string
	Variant     Variant
}

// Notifier shows messages to the user. Show must not block for long.
type Notifier interface {
	Show(ctx context.Context, m Message)
}

// Func adapts a function to [Notifier].
type Func func(ctx context.Context, m Message)

func (f Func) Show(ctx context.Context, m Message) { f(ctx, m) }

// Discard drops every message.
var Discard Notifier = Func(func(context.Context, Message) {})

// Writer prints one line per message, prefixed with "!" for destructive
// messages. It is the CLI's toast surface.
type Writer struct {
	mu sync.Mutex
	w  io.Writer
}

func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

func (n *Writer) Show(_ context.Context, m Message) {
	n.mu.Lock()
	defer n.mu.Unlock()

	mark := "*"
	if m.Variant == Destructive {
		mark = "!"
	}
	if m.Description == "" {
		fmt.Fprintf(n.w, "%s %s\n", mark, m.Title)
		return
	}
	fmt.Fprintf(n.w, "%s %s: %s\n", mark, m.Title, m.Description)
}

// Log sends messages to a zerolog logger: destructive messages at warn
// level, the rest at info.
type Log struct {
	logger zerolog.Logger
}

func NewLog(l zerolog.Logger) *Log {
	return &Log{logger: l}
}

func (n *Log) Show(_ context.Context, m Message) {
	ev := n.logger.Info()
	if m.Variant == Destructive {
		ev = n.logger.Warn()
	}
	ev.Str("title", m.Title).Str("description", m.Description).Msg("toast")
}

// Recorder keeps every message. Useful in tests and headless flows.
type Recorder struct {
	mu       sync.Mutex
	messages []Message
}

func (r *Recorder) Show(_ context.Context, m Message) {
	r.mu.Lock()
	r.messages = append(r.messages, m)
	r.mu.Unlock()
}

// Messages returns a copy of the recorded messages.
func (r *Recorder) Messages() []Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Message, len(r.messages))
	copy(out, r.messages)
	return out
}

// Last returns the most recent message.
func (r *Recorder) Last() (Message, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.messages) == 0 {
		return Message{}, false
	}
	return r.messages[len(r.messages)-1], true
}
