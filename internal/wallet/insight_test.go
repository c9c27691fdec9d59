package wallet

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"demowallet/internal/core"
	"demowallet/internal/insight"
)

// stubGenerator answers from fn and counts calls.
type stubGenerator struct {
	mu      sync.Mutex
	calls   int
	prompts []string
	fn      func(ctx context.Context, prompt string) (string, error)
}

func (g *stubGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	g.mu.Lock()
	g.calls++
	g.prompts = append(g.prompts, prompt)
	fn := g.fn
	g.mu.Unlock()
	return fn(ctx, prompt)
}

func (g *stubGenerator) Calls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls
}

func answer(text string, err error) *stubGenerator {
	return &stubGenerator{fn: func(context.Context, string) (string, error) { return text, err }}
}

func TestBuildPrompt(t *testing.T) {
	acct := core.Account{ID: "personalWallet", Name: "Personal Wallet", Currency: core.USD, Balance: decimal.RequireFromString("2600.5")}
	rec := core.TransactionRecord{Kind: core.Deposit, Amount: decimal.NewFromInt(100)}

	assert.Equal(t,
		"Given a deposit of 100.00 USD on a Personal Wallet, and the current balance is 2600.50 USD, provide a brief, creative, and positive insight or suggestion. Keep it under 50 words.",
		BuildPrompt(rec, acct))
}

func TestResolveInsight(t *testing.T) {
	acct := core.Account{ID: "a", Name: "A", Currency: core.LAK, Balance: decimal.NewFromInt(5)}
	rec := &core.TransactionRecord{Kind: core.Withdraw, Amount: decimal.NewFromInt(1)}

	tests := []struct {
		name string
		gen  InsightGenerator
		rec  *core.TransactionRecord
		want string
		err  bool
	}{
		{"no transaction", answer("unused", nil), nil, MsgNoTransaction, false},
		{"verbatim text", answer("  Keep going!\n", nil), rec, "  Keep going!\n", false},
		{"no candidates", answer("", insight.ErrNoCandidates), rec, MsgInsightEmpty, true},
		{"status error", answer("", &insight.StatusError{StatusCode: 500}), rec, MsgInsightFailed, true},
		{"transport", answer("", fmt.Errorf("%w: dial", insight.ErrTransport)), rec, MsgInsightFailed, true},
		{"unclassified", answer("", errors.New("boom")), rec, MsgInsightFailed, true},
		{"no generator", nil, rec, MsgInsightFailed, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolveInsight(context.Background(), tt.gen, tt.rec, acct)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.err, err != nil)
		})
	}
}

func TestResolveInsightWithoutTransactionMakesNoCall(t *testing.T) {
	gen := answer("x", nil)
	_, _ = ResolveInsight(context.Background(), gen, nil, core.Account{})
	assert.Zero(t, gen.Calls())
}

func TestInsightTaskWait(t *testing.T) {
	task := newInsightTask(func() {})
	text, err := task.Result()
	assert.Empty(t, text)
	assert.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err = task.Wait(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	task.finish("done", nil)
	task.finish("again", errors.New("ignored"))
	text, err = task.Wait(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "done", text)
}
