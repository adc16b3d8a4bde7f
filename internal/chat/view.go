package chat

import (
	"log/slog"

	"github.com/ashureev/propdash/internal/domain"
)

// Renderer converts bot markdown to HTML.
type Renderer interface {
	Render(text string) (string, error)
}

// TurnView is a turn as sent to the browser. Bot turns carry rendered HTML.
type TurnView struct {
	domain.Turn
	HTML string `json:"html,omitempty"`
}

// View is a snapshot as sent to the browser.
type View struct {
	SessionID    string     `json:"sessionId"`
	Turns        []TurnView `json:"turns"`
	PendingInput string     `json:"pendingInput"`
	Awaiting     bool       `json:"isAwaitingReply"`
}

// Present renders a snapshot for the browser. r may be nil.
func Present(snap Snapshot, r Renderer) View {
	turns := make([]TurnView, 0, len(snap.Turns))
	for _, t := range snap.Turns {
		turns = append(turns, PresentTurn(t, r))
	}
	return View{
		SessionID:    snap.SessionID,
		Turns:        turns,
		PendingInput: snap.PendingInput,
		Awaiting:     snap.Awaiting,
	}
}

// PresentTurn renders one turn for the browser.
func PresentTurn(t domain.Turn, r Renderer) TurnView {
	v := TurnView{Turn: t}
	if r == nil || !t.IsBot() {
		return v
	}
	html, err := r.Render(t.Text)
	if err != nil {
		slog.Warn("failed to render bot turn", "seq", t.Seq, "error", err)
		return v
	}
	v.HTML = html
	return v
}
