package wallet

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"demowallet/internal/core"
	"demowallet/internal/insight"
)

// InsightGenerator produces text for a prompt. *insight.Client implements it.
type InsightGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// BuildPrompt renders the single-turn prompt for a completed transaction.
func BuildPrompt(rec core.TransactionRecord, acct core.Account) string {
	return fmt.Sprintf(
		"Given a %s of %s %s on a %s, and the current balance is %s %s, provide a brief, creative, and positive insight or suggestion. Keep it under 50 words.",
		rec.Kind, core.FormatAmount(rec.Amount), acct.Currency, acct.Name,
		core.FormatAmount(acct.Balance), acct.Currency,
	)
}

// ResolveInsight returns the text to show for an insight request. Without a
// transaction it returns the prompt-to-transact message and makes no call.
// Generator failures are downgraded to a fixed message; the cause is
// returned alongside for logging.
func ResolveInsight(ctx context.Context, gen InsightGenerator, rec *core.TransactionRecord, acct core.Account) (string, error) {
	if rec == nil {
		return MsgNoTransaction, nil
	}
	if gen == nil {
		return MsgInsightFailed, insight.ErrNotConfigured
	}
	text, err := gen.Generate(ctx, BuildPrompt(*rec, acct))
	switch {
	case err == nil:
		return text, nil
	case errors.Is(err, insight.ErrNoCandidates):
		return MsgInsightEmpty, err
	default:
		return MsgInsightFailed, err
	}
}

// InsightTask is one insight request bound to a session's insight slot.
type InsightTask struct {
	done   chan struct{}
	cancel context.CancelFunc
	once   sync.Once

	text string
	err  error
}

func newInsightTask(cancel context.CancelFunc) *InsightTask {
	return &InsightTask{done: make(chan struct{}), cancel: cancel}
}

func completedInsightTask(text string) *InsightTask {
	t := newInsightTask(func() {})
	t.finish(text, nil)
	return t
}

func (t *InsightTask) finish(text string, err error) {
	t.once.Do(func() {
		t.text, t.err = text, err
		close(t.done)
	})
}

// Done is closed once the task has a result.
func (t *InsightTask) Done() <-chan struct{} {
	return t.done
}

// Wait blocks until the task completes or ctx ends.
func (t *InsightTask) Wait(ctx context.Context) (string, error) {
	select {
	case <-t.done:
		return t.text, t.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// Result returns the text and underlying error. Only meaningful after Done.
func (t *InsightTask) Result() (string, error) {
	select {
	case <-t.done:
		return t.text, t.err
	default:
		return "", nil
	}
}

// Cancel aborts the outbound request. The session slot drops the result.
func (t *InsightTask) Cancel() {
	t.cancel()
}
