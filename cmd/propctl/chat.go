package main

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/ashureev/propdash/internal/chat"
	"github.com/ashureev/propdash/internal/intent"
	"github.com/ashureev/propdash/internal/render"
)

func (a *app) chatCmd() *cobra.Command {
	var width int
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Talk to the finance assistant",
		Long: `Start an interactive chat with the finance assistant.

Messages that look like bookkeeping ("paid a $400 electricity bill by card")
are recorded through the finance endpoint; everything else goes to the general
chatbot. Type /quit or press Ctrl-D to leave.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runChat(cmd.Context(), width)
		},
	}
	cmd.Flags().IntVar(&width, "width", 80, "word wrap width for replies")
	return cmd
}

func (a *app) runChat(ctx context.Context, width int) error {
	// A missing or rejected token is not fatal; the assistant answers with a
	// login prompt instead.
	if err := a.session.Init(ctx); err != nil {
		slog.Warn("Failed to restore session", "error", err)
	}

	classifier := intent.Default()
	if a.cfg.VocabularyPath != "" {
		vocab, err := intent.LoadVocabulary(a.cfg.VocabularyPath)
		if err != nil {
			return err
		}
		classifier = intent.New(vocab)
	}

	term, err := render.NewTerminal(width)
	if err != nil {
		return err
	}

	transcript, err := chat.NewTranscriptLogger(a.cfg.ChatLog, slog.Default())
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := transcript.Close(); closeErr != nil {
			slog.Warn("Failed to close chat transcript", "error", closeErr)
		}
	}()

	sess := chat.NewSession(uuid.NewString(), a.session, a.client, classifier, chat.WithTranscript(transcript))
	defer sess.Close()

	last := a.printTurns(sess, term, 0)

	lines := make(chan string)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(a.in)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		fmt.Fprint(a.out, "> ")
		var line string
		select {
		case <-ctx.Done():
			fmt.Fprintln(a.out)
			return nil
		case l, ok := <-lines:
			if !ok {
				fmt.Fprintln(a.out)
				return nil
			}
			line = l
		}

		switch strings.TrimSpace(line) {
		case "":
			continue
		case "/quit", "/exit":
			return nil
		}

		sess.Submit(ctx, line)
		last = a.printTurns(sess, term, last)
	}
}

// printTurns writes the bot turns after seq and returns the newest seq seen.
func (a *app) printTurns(sess *chat.Session, term *render.Terminal, seq int) int {
	for _, t := range sess.Snapshot().Turns {
		if t.Seq <= seq {
			continue
		}
		seq = t.Seq
		if t.IsBot() {
			fmt.Fprintln(a.out, term.Render(t.Text))
		}
	}
	return seq
}
