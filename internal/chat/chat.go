package chat

import (
	"sync"
	"time"
)

// BotAuthor is the reserved author name for system-generated lines. Real
// players cannot register under it.
const BotAuthor = "BOT"

// DefaultCap bounds the in-memory chat history.
const DefaultCap = 500

// Message is one chat line. The timestamp is assigned by the log on
// append, so ordering is authoritative.
type Message struct {
	Player string    `json:"player"`
	Text   string    `json:"message"`
	At     time.Time `json:"timestamp"`
}

// Log is an append-only, time-ordered chat history with a bounded tail.
// Safe for concurrent use.
type Log struct {
	mu       sync.Mutex
	cap      int
	messages []Message
}

func NewLog(capacity int) *Log {
	if capacity <= 0 {
		capacity = DefaultCap
	}
	return &Log{cap: capacity}
}

// Append records a line and returns it with its assigned timestamp.
func (l *Log) Append(player, text string, at time.Time) Message {
	msg := Message{Player: player, Text: text, At: at}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.messages = append(l.messages, msg)
	if len(l.messages) > l.cap {
		l.messages = l.messages[len(l.messages)-l.cap:]
	}
	return msg
}

// Bot appends a system-authored line.
func (l *Log) Bot(text string, at time.Time) Message {
	return l.Append(BotAuthor, text, at)
}

// Messages returns a copy of the current history, oldest first.
func (l *Log) Messages() []Message {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Message, len(l.messages))
	copy(out, l.messages)
	return out
}

// Len reports the number of retained lines.
func (l *Log) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.messages)
}
