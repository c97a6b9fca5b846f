// Package titling names conversations after their first exchange. It runs
// behind the job queue so a slow model call never delays a chat response.
package titling

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/dvloznov/finance-assistant/internal/chat"
	"github.com/dvloznov/finance-assistant/internal/jobs"
	"github.com/dvloznov/finance-assistant/internal/router"
)

// maxTitleLength truncates runaway model output.
const maxTitleLength = 60

// Titler processes TitleConversationJob jobs.
type Titler struct {
	store     chat.Store
	generator router.Generator
	log       zerolog.Logger
}

// New creates a Titler.
func New(store chat.Store, generator router.Generator, log zerolog.Logger) *Titler {
	return &Titler{
		store:     store,
		generator: generator,
		log:       log,
	}
}

// HandleJob is the jobs.JobHandler for titling jobs. A returned error
// triggers the queue's retry logic.
func (t *Titler) HandleJob(ctx context.Context, job jobs.Job) error {
	titleJob, ok := job.(*jobs.TitleConversationJob)
	if !ok {
		return fmt.Errorf("HandleJob: unexpected job type: %T", job)
	}

	title, err := t.generator.Generate(ctx, buildTitlePrompt(titleJob.FirstMessage))
	if err != nil {
		return fmt.Errorf("HandleJob: generate title: %w", err)
	}

	title = sanitizeTitle(title)
	if title == "" {
		return fmt.Errorf("HandleJob: model produced an empty title")
	}

	if err := t.store.SetTitle(ctx, titleJob.ConversationID, title); err != nil {
		return fmt.Errorf("HandleJob: set title: %w", err)
	}

	t.log.Info().
		Str("conversation_id", titleJob.ConversationID).
		Str("title", title).
		Msg("Conversation titled")

	return nil
}

func buildTitlePrompt(firstMessage string) string {
	var b strings.Builder
	b.WriteString("Write a title for a chat that starts with the user message below.\n")
	b.WriteString("Rules:\n")
	b.WriteString("- At most 6 words.\n")
	b.WriteString("- Plain text only: no quotes, no Markdown, no trailing punctuation.\n")
	b.WriteString("\nUser message: " + firstMessage + "\n")
	return b.String()
}

// sanitizeTitle collapses the model reply to a single trimmed line.
func sanitizeTitle(raw string) string {
	title := strings.TrimSpace(raw)
	if idx := strings.IndexByte(title, '\n'); idx != -1 {
		title = title[:idx]
	}
	title = strings.Trim(title, `"' `)
	if len(title) > maxTitleLength {
		title = strings.TrimSpace(title[:maxTitleLength])
	}
	return title
}
