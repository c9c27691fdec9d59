package worker

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"demowallet/internal/amqp"
	"demowallet/internal/cache"
	"demowallet/internal/core"
	"demowallet/internal/log"
)

// AccountTotals aggregates the transactions seen for one account instance.
// Every session works on its own copy of the catalog, so balances are only
// comparable within a session.
type AccountTotals struct {
	SessionID   string
	AccountID   string
	Currency    core.Currency
	Deposits    int
	Withdrawals int
	Deposited   decimal.Decimal
	Withdrawn   decimal.Decimal
	LastBalance decimal.Decimal
	LastSeen    time.Time
}

// AuditWorker consumes transaction events, drops redeliveries and keeps
// per-session account totals.
type AuditWorker struct {
	seen   *cache.LRUCache[struct{}]
	logger *log.Logger

	mu     sync.Mutex
	totals map[totalsKey]*AccountTotals
	events int
}

type totalsKey struct {
	session string
	account string
}

// NewAuditWorker remembers up to dedupSize message IDs for dedupTTL.
func NewAuditWorker(dedupSize int, dedupTTL time.Duration, logger *log.Logger) *AuditWorker {
	if logger == nil {
		logger = log.Discard()
	}
	return &AuditWorker{
		seen:   cache.NewLRUCache[struct{}](dedupSize, dedupTTL),
		logger: logger.WithComponent(log.ComponentAudit),
		totals: make(map[totalsKey]*AccountTotals),
	}
}

// HandleTransaction processes a single transaction message from AMQP.
func (w *AuditWorker) HandleTransaction(ctx context.Context, msg *amqp.TransactionMessage) error {
	if _, dup := w.seen.Get(msg.MessageID); dup {
		w.logger.DebugContext(ctx, "Skipping redelivered message", "message_id", msg.MessageID)
		return nil
	}
	if err := msg.Kind.Validate(); err != nil {
		return fmt.Errorf("message %s: %w", msg.MessageID, err)
	}
	if err := msg.Currency.Validate(); err != nil {
		return fmt.Errorf("message %s: %w", msg.MessageID, err)
	}

	w.mu.Lock()
	key := totalsKey{session: msg.SessionID, account: msg.AccountID}
	t, ok := w.totals[key]
	if !ok {
		t = &AccountTotals{SessionID: msg.SessionID, AccountID: msg.AccountID, Currency: msg.Currency}
		w.totals[key] = t
	}
	switch msg.Kind {
	case core.Deposit:
		t.Deposits++
		t.Deposited = t.Deposited.Add(msg.Amount)
	case core.Withdraw:
		t.Withdrawals++
		t.Withdrawn = t.Withdrawn.Add(msg.Amount)
	}
	if msg.OccurredAt.After(t.LastSeen) || t.LastSeen.IsZero() {
		t.LastBalance = msg.Balance
		t.LastSeen = msg.OccurredAt
	}
	w.events++
	w.mu.Unlock()

	w.seen.Set(msg.MessageID, struct{}{})

	w.logger.InfoContext(ctx, "Transaction audited",
		append(log.NewFields().
			WithSession(msg.SessionID).
			WithOperation(log.OpConsume).
			WithTransaction(msg.AccountID, string(msg.Kind), core.FormatAmount(msg.Amount), string(msg.Currency), core.FormatAmount(msg.Balance)).
			ToSlice(), "message_id", msg.MessageID)...)
	return nil
}

// Snapshot returns the totals ordered by session ID, then account ID.
func (w *AuditWorker) Snapshot() []AccountTotals {
	w.mu.Lock()
	defer w.mu.Unlock()

	out := make([]AccountTotals, 0, len(w.totals))
	for _, t := range w.totals {
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].SessionID != out[j].SessionID {
			return out[i].SessionID < out[j].SessionID
		}
		return out[i].AccountID < out[j].AccountID
	})
	return out
}

// LogSummary writes one record per session account.
func (w *AuditWorker) LogSummary(ctx context.Context) {
	snapshot := w.Snapshot()

	w.mu.Lock()
	events := w.events
	w.mu.Unlock()

	w.logger.InfoContext(ctx, "Audit summary", "events", events, "accounts", len(snapshot))
	for _, t := range snapshot {
		w.logger.InfoContext(ctx, "Account totals",
			log.FieldSessionID, t.SessionID,
			log.FieldAccountID, t.AccountID,
			log.FieldCurrency, string(t.Currency),
			"deposits", t.Deposits,
			"withdrawals", t.Withdrawals,
			"deposited", core.FormatAmount(t.Deposited),
			"withdrawn", core.FormatAmount(t.Withdrawn),
			log.FieldBalance, core.FormatAmount(t.LastBalance))
	}
}

// Cleaner exposes the dedup cache to a cache.Manager sweep.
func (w *AuditWorker) Cleaner() cache.Cleaner {
	return w.seen
}
