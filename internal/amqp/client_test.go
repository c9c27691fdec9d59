package amqp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/rabbitmq/amqp091-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"demowallet/internal/core"
)

type published struct {
	exchange string
	key      string
	msg      amqp091.Publishing
}

type fakeChannel struct {
	mu         sync.Mutex
	published  []published
	publishErr error
	deliveries chan amqp091.Delivery
	declared   []string
}

func (f *fakeChannel) ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp091.Table) error {
	f.declared = append(f.declared, "exchange:"+name+":"+kind)
	return nil
}

func (f *fakeChannel) QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp091.Table) (amqp091.Queue, error) {
	f.declared = append(f.declared, "queue:"+name)
	return amqp091.Queue{Name: name}, nil
}

func (f *fakeChannel) QueueBind(name, key, exchange string, noWait bool, args amqp091.Table) error {
	f.declared = append(f.declared, "bind:"+name+":"+key+":"+exchange)
	return nil
}

func (f *fakeChannel) Qos(prefetchCount, prefetchSize int, global bool) error { return nil }

func (f *fakeChannel) PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp091.Publishing) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.publishErr != nil {
		return f.publishErr
	}
	f.published = append(f.published, published{exchange: exchange, key: key, msg: msg})
	return nil
}

func (f *fakeChannel) Consume(queue, consumer string, autoAck, exclusive, noLocal, noWait bool, args amqp091.Table) (<-chan amqp091.Delivery, error) {
	return f.deliveries, nil
}

func (f *fakeChannel) Close() error { return nil }

type ackRecorder struct {
	mu      sync.Mutex
	acks    int
	nacks   int
	requeue []bool
}

func (a *ackRecorder) Ack(tag uint64, multiple bool) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.acks++
	return nil
}

func (a *ackRecorder) Nack(tag uint64, multiple, requeue bool) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.nacks++
	a.requeue = append(a.requeue, requeue)
	return nil
}

func (a *ackRecorder) Reject(tag uint64, requeue bool) error { return nil }

func sampleEvent() core.TransactionEvent {
	return core.TransactionEvent{
		SessionID:   "sess",
		AccountID:   "personalWallet",
		AccountName: "Personal Wallet",
		Kind:        core.Deposit,
		Amount:      decimal.NewFromInt(100),
		Currency:    core.USD,
		Balance:     decimal.RequireFromString("2600.50"),
		OccurredAt:  time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestSetupDeclaresTopology(t *testing.T) {
	ch := &fakeChannel{}
	c := newClient(ch, "wallet", "wallet_transactions", nil)
	require.NoError(t, c.setup())
	assert.Equal(t, []string{
		"exchange:wallet:direct",
		"queue:wallet_transactions",
		"bind:wallet_transactions:wallet_transactions:wallet",
	}, ch.declared)
}

func TestPublishTransaction(t *testing.T) {
	ch := &fakeChannel{}
	c := newClient(ch, "wallet", "wallet_transactions", nil)

	require.NoError(t, c.PublishTransaction(context.Background(), sampleEvent()))
	require.Len(t, ch.published, 1)

	p := ch.published[0]
	assert.Equal(t, "wallet", p.exchange)
	assert.Equal(t, "wallet_transactions", p.key)
	assert.Equal(t, amqp091.Persistent, p.msg.DeliveryMode)
	assert.Equal(t, "application/json", p.msg.ContentType)
	assert.Equal(t, "wallet.transaction.deposit", p.msg.Type)

	var body map[string]any
	require.NoError(t, json.Unmarshal(p.msg.Body, &body))
	assert.Equal(t, "personalWallet", body["account_id"])
	assert.Equal(t, "2600.5", body["balance"])
	assert.Equal(t, p.msg.MessageId, body["message_id"])

	decoded, err := TransactionMessageFromJSON(p.msg.Body)
	require.NoError(t, err)
	assert.True(t, decoded.Amount.Equal(decimal.NewFromInt(100)))
}

func TestPublishTransactionErrors(t *testing.T) {
	ch := &fakeChannel{publishErr: errors.New("channel closed")}
	c := newClient(ch, "wallet", "q", nil)
	err := c.PublishTransaction(context.Background(), sampleEvent())
	assert.ErrorContains(t, err, "publish message")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, c.PublishTransaction(ctx, sampleEvent()), context.Canceled)
}

func TestConsumeTransactionsAcknowledgement(t *testing.T) {
	good, err := NewTransactionMessage(sampleEvent(), time.Now()).ToJSON()
	require.NoError(t, err)

	ch := &fakeChannel{deliveries: make(chan amqp091.Delivery, 4)}
	acks := &ackRecorder{}
	ch.deliveries <- amqp091.Delivery{Acknowledger: acks, Body: good}
	ch.deliveries <- amqp091.Delivery{Acknowledger: acks, Body: []byte(`{not json`)}
	ch.deliveries <- amqp091.Delivery{Acknowledger: acks, Body: good}
	close(ch.deliveries)

	calls := 0
	c := newClient(ch, "wallet", "q", nil)
	err = c.ConsumeTransactions(context.Background(), func(_ context.Context, msg *TransactionMessage) error {
		calls++
		if calls == 2 {
			return errors.New("try later")
		}
		assert.Equal(t, "personalWallet", msg.AccountID)
		return nil
	})
	assert.EqualError(t, err, "message channel closed")
	assert.Equal(t, 2, calls)
	assert.Equal(t, 1, acks.acks)
	assert.Equal(t, 2, acks.nacks)
	assert.Equal(t, []bool{false, true}, acks.requeue)
}

func TestConsumeTransactionsStopsOnContext(t *testing.T) {
	ch := &fakeChannel{deliveries: make(chan amqp091.Delivery)}
	c := newClient(ch, "wallet", "q", nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := c.ConsumeTransactions(ctx, func(context.Context, *TransactionMessage) error { return nil })
	assert.ErrorIs(t, err, context.Canceled)
}

func TestTransactionMessageFromJSONValidation(t *testing.T) {
	tests := map[string]string{
		"missing id":   `{"account_id":"a","kind":"deposit"}`,
		"bad kind":     `{"message_id":"m","account_id":"a","kind":"transfer"}`,
		"missing acct": `{"message_id":"m","kind":"withdraw"}`,
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := TransactionMessageFromJSON([]byte(body))
			assert.Error(t, err)
		})
	}
}

func TestExponentialBackoff(t *testing.T) {
	tests := []struct {
		attempt  int
		expected time.Duration
	}{
		{0, 1 * time.Second},
		{1, 2 * time.Second},
		{2, 4 * time.Second},
		{3, 8 * time.Second},
		{4, 16 * time.Second},
		{5, 30 * time.Second},
		{10, 30 * time.Second},
		{64, 30 * time.Second},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("attempt_%d", tt.attempt), func(t *testing.T) {
			if got := exponentialBackoff(tt.attempt); got != tt.expected {
				t.Errorf("exponentialBackoff(%d) = %v, want %v", tt.attempt, got, tt.expected)
			}
		})
	}
}

func TestIsConnectionError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"nil error", nil, false},
		{"connection refused", errors.New("dial tcp: connection refused"), true},
		{"EOF", errors.New("unexpected EOF"), true},
		{"broken pipe", errors.New("write: broken pipe"), true},
		{"closed", amqp091.ErrClosed, true},
		{"access refused", errors.New("Exception (403) Reason: \"ACCESS_REFUSED\""), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isConnectionError(tt.err); got != tt.expected {
				t.Errorf("isConnectionError(%v) = %v, want %v", tt.err, got, tt.expected)
			}
		})
	}
}
