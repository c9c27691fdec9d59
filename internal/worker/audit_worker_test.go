package worker

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"demowallet/internal/amqp"
	"demowallet/internal/core"
	"demowallet/internal/log"
)

func message(id string, kind core.TransactionKind, amount, balance string, at time.Time) *amqp.TransactionMessage {
	return &amqp.TransactionMessage{
		MessageID:   id,
		PublishedAt: at,
		TransactionEvent: core.TransactionEvent{
			SessionID:   "s1",
			AccountID:   "personalWallet",
			AccountName: "Personal Wallet",
			Kind:        kind,
			Amount:      decimal.RequireFromString(amount),
			Currency:    core.USD,
			Balance:     decimal.RequireFromString(balance),
			OccurredAt:  at,
		},
	}
}

func TestAuditWorker_HandleTransaction(t *testing.T) {
	w := NewAuditWorker(100, time.Hour, log.Discard())
	ctx := context.Background()
	t0 := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	require.NoError(t, w.HandleTransaction(ctx, message("m1", core.Deposit, "100", "2600.50", t0)))
	require.NoError(t, w.HandleTransaction(ctx, message("m2", core.Withdraw, "50.25", "2550.25", t0.Add(time.Minute))))
	require.NoError(t, w.HandleTransaction(ctx, message("m1", core.Deposit, "100", "2600.50", t0)), "redelivery is ignored")

	snapshot := w.Snapshot()
	require.Len(t, snapshot, 1)
	got := snapshot[0]
	assert.Equal(t, "s1", got.SessionID)
	assert.Equal(t, "personalWallet", got.AccountID)
	assert.Equal(t, 1, got.Deposits)
	assert.Equal(t, 1, got.Withdrawals)
	assert.Equal(t, "100.00", core.FormatAmount(got.Deposited))
	assert.Equal(t, "50.25", core.FormatAmount(got.Withdrawn))
	assert.Equal(t, "2550.25", core.FormatAmount(got.LastBalance))
}

func TestAuditWorker_OutOfOrderKeepsLatestBalance(t *testing.T) {
	w := NewAuditWorker(100, time.Hour, log.Discard())
	ctx := context.Background()
	t0 := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	require.NoError(t, w.HandleTransaction(ctx, message("late", core.Deposit, "10", "120", t0.Add(time.Hour))))
	require.NoError(t, w.HandleTransaction(ctx, message("early", core.Deposit, "10", "110", t0)))

	assert.Equal(t, "120.00", core.FormatAmount(w.Snapshot()[0].LastBalance))
}

func TestAuditWorker_SeparatesSessions(t *testing.T) {
	w := NewAuditWorker(100, time.Hour, log.Discard())
	ctx := context.Background()
	t0 := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	other := message("m2", core.Withdraw, "500", "2000.50", t0)
	other.SessionID = "s0"
	require.NoError(t, w.HandleTransaction(ctx, message("m1", core.Deposit, "100", "2600.50", t0.Add(time.Minute))))
	require.NoError(t, w.HandleTransaction(ctx, other))

	snapshot := w.Snapshot()
	require.Len(t, snapshot, 2)
	assert.Equal(t, "s0", snapshot[0].SessionID)
	assert.Equal(t, "2000.50", core.FormatAmount(snapshot[0].LastBalance))
	assert.Equal(t, 1, snapshot[0].Withdrawals)
	assert.Equal(t, "s1", snapshot[1].SessionID)
	assert.Equal(t, "2600.50", core.FormatAmount(snapshot[1].LastBalance))
	assert.Equal(t, 1, snapshot[1].Deposits)
}

func TestAuditWorker_RejectsInvalidMessages(t *testing.T) {
	w := NewAuditWorker(100, time.Hour, log.Discard())
	ctx := context.Background()

	bad := message("m1", "transfer", "1", "1", time.Now())
	assert.ErrorIs(t, w.HandleTransaction(ctx, bad), core.ErrInvalidKind)

	bad = message("m2", core.Deposit, "1", "1", time.Now())
	bad.Currency = "EUR"
	assert.ErrorIs(t, w.HandleTransaction(ctx, bad), core.ErrInvalidCurrency)

	assert.Empty(t, w.Snapshot())
}

func TestAuditWorker_LogSummary(t *testing.T) {
	w := NewAuditWorker(10, time.Hour, log.Discard())
	require.NoError(t, w.HandleTransaction(context.Background(), message("m1", core.Deposit, "1", "1", time.Now())))
	assert.NotPanics(t, func() { w.LogSummary(context.Background()) })
	assert.Equal(t, 0, w.Cleaner().CleanExpired())
}
