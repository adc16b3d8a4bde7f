package domain

import "time"

// Sender identifies who authored a chat turn.
type Sender string

const (
	SenderUser Sender = "user"
	SenderBot  Sender = "bot"
)

// Turn is one message in a chat transcript. Turns are never mutated after
// they are appended; Seq is the 1-based position in the transcript.
type Turn struct {
	Seq    int       `json:"seq"`
	Sender Sender    `json:"sender"`
	Text   string    `json:"text"`
	At     time.Time `json:"at"`
}

// IsBot reports whether the turn was produced by the assistant.
func (t Turn) IsBot() bool {
	return t.Sender == SenderBot
}
