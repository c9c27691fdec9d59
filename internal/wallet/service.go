// Package wallet implements the session state machine of the demo wallet:
// login, account selection, navigation, deposits, withdrawals and
// transaction insights.
package wallet

import (
	"context"
	"crypto/subtle"
	"fmt"
	"time"

	"demowallet/internal/core"
	"demowallet/internal/log"
)

const defaultInsightTimeout = 15 * time.Second

// Credentials is the single accepted username/PIN pair.
type Credentials struct {
	Username string
	PIN      string
}

// EventPublisher receives an event after every completed transaction.
type EventPublisher interface {
	PublishTransaction(ctx context.Context, ev core.TransactionEvent) error
}

type Options struct {
	Credentials    Credentials
	Catalog        *core.Catalog
	Insights       InsightGenerator
	Events         EventPublisher
	InsightTimeout time.Duration
	Logger         *log.Logger
	Now            func() time.Time
}

// Service applies user intents to sessions. It holds no per-session state.
type Service struct {
	creds          Credentials
	catalog        *core.Catalog
	catalogView    []AccountView
	insights       InsightGenerator
	events         EventPublisher
	insightTimeout time.Duration
	logger         *log.Logger
	now            func() time.Time
}

func NewService(opts Options) *Service {
	if opts.Catalog == nil {
		opts.Catalog = core.DefaultCatalog()
	}
	if opts.InsightTimeout <= 0 {
		opts.InsightTimeout = defaultInsightTimeout
	}
	if opts.Logger == nil {
		opts.Logger = log.Discard()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	svc := &Service{
		creds:          opts.Credentials,
		catalog:        opts.Catalog,
		insights:       opts.Insights,
		events:         opts.Events,
		insightTimeout: opts.InsightTimeout,
		logger:         opts.Logger.WithComponent(log.ComponentWallet),
		now:            opts.Now,
	}
	for _, a := range opts.Catalog.List() {
		svc.catalogView = append(svc.catalogView, catalogAccountView(a))
	}
	return svc
}

// Accounts returns the catalog in display order.
func (svc *Service) Accounts() []AccountView {
	out := make([]AccountView, len(svc.catalogView))
	copy(out, svc.catalogView)
	return out
}

// View returns a snapshot of the session.
func (svc *Service) View(s *Session) View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewLocked(svc.Accounts())
}

// Login authenticates the session when both values match the configured pair.
func (svc *Service) Login(ctx context.Context, s *Session, username, pin string) error {
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(svc.creds.Username)) == 1
	pinOK := subtle.ConstantTimeCompare([]byte(pin), []byte(svc.creds.PIN)) == 1

	s.mu.Lock()
	defer s.mu.Unlock()

	if !userOK || !pinOK {
		s.loginError = MsgInvalidCredentials
		svc.logger.WarnContext(ctx, "Login rejected", log.FieldSessionID, s.ID, log.FieldOperation, log.OpLogin)
		return ErrInvalidCredentials
	}
	s.clearAccountLocked()
	s.authenticated = true
	s.loginError = ""
	s.screen = HomeScreen{}
	svc.logger.InfoContext(ctx, "Login succeeded", log.FieldSessionID, s.ID, log.FieldOperation, log.OpLogin)
	return nil
}

// Logout returns the session to its initial state.
func (svc *Service) Logout(ctx context.Context, s *Session) {
	s.mu.Lock()
	s.reset()
	s.mu.Unlock()
	svc.logger.InfoContext(ctx, "Logged out", log.FieldSessionID, s.ID, log.FieldOperation, log.OpLogout)
}

// SelectAccount makes a fresh copy of the catalog template the active account.
func (svc *Service) SelectAccount(ctx context.Context, s *Session, accountID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.authenticated {
		return ErrNotAuthenticated
	}
	acct, ok := svc.catalog.Instantiate(accountID)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownAccount, accountID)
	}
	s.clearAccountLocked()
	s.account = &acct
	s.screen = AccountOverviewScreen{}

	svc.logger.InfoContext(ctx, "Account selected",
		log.FieldSessionID, s.ID,
		log.FieldAccountID, acct.ID,
		log.FieldOperation, log.OpSelect)
	return nil
}

// GoHome shows account selection when authenticated and the login gate
// otherwise. It never logs out.
func (svc *Service) GoHome(ctx context.Context, s *Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.authenticated {
		s.clearAccountLocked()
	}
	s.screen = HomeScreen{}
}

// Navigate moves between the overview and the input screens.
func (svc *Service) Navigate(ctx context.Context, s *Session, target ScreenName) error {
	if target == ScreenHome {
		svc.GoHome(ctx, s)
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireAccountLocked(); err != nil {
		return err
	}

	from := s.screen.Name()
	if (from == ScreenDeposit && target == ScreenWithdraw) || (from == ScreenWithdraw && target == ScreenDeposit) {
		return fmt.Errorf("%w: %s to %s", ErrInvalidTransition, from, target)
	}

	switch target {
	case ScreenOverview:
		s.screen = AccountOverviewScreen{}
	case ScreenDeposit, ScreenWithdraw:
		s.dropInsightLocked()
		s.message = ""
		s.insight = ""
		s.lastTx = nil
		if target == ScreenDeposit {
			s.screen = DepositScreen{}
		} else {
			s.screen = WithdrawScreen{}
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownScreen, target)
	}

	svc.logger.DebugContext(ctx, "Screen changed",
		log.FieldSessionID, s.ID,
		log.FieldScreen, string(target),
		log.FieldOperation, log.OpNavigate)
	return nil
}

// SetInput stores the pending amount on the current deposit or withdraw screen.
func (svc *Service) SetInput(ctx context.Context, s *Session, raw string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.screen.(type) {
	case DepositScreen:
		s.screen = DepositScreen{Input: raw}
	case WithdrawScreen:
		s.screen = WithdrawScreen{Input: raw}
	default:
		return ErrNoInputScreen
	}
	return nil
}

// Deposit credits the active account. An empty raw amount falls back to the
// pending input of the deposit screen.
func (svc *Service) Deposit(ctx context.Context, s *Session, raw string) error {
	return svc.transact(ctx, s, core.Deposit, raw, Deposit)
}

// Withdraw debits the active account. An empty raw amount falls back to the
// pending input of the withdraw screen.
func (svc *Service) Withdraw(ctx context.Context, s *Session, raw string) error {
	return svc.transact(ctx, s, core.Withdraw, raw, Withdraw)
}

func (svc *Service) transact(ctx context.Context, s *Session, kind core.TransactionKind, raw string, apply func(core.Account, string) (Result, error)) error {
	op := log.OpDeposit
	if kind == core.Withdraw {
		op = log.OpWithdraw
	}

	s.mu.Lock()
	if err := s.requireAccountLocked(); err != nil {
		s.mu.Unlock()
		return err
	}
	if raw == "" {
		if in, ok := screenInput(s.screen); ok && s.screen.Name() == ScreenName(kind) {
			raw = in
		}
	}

	res, err := apply(*s.account, raw)
	s.message = res.Message
	if err != nil {
		s.mu.Unlock()
		svc.logger.InfoContext(ctx, "Transaction rejected",
			log.NewFields().WithSession(s.ID).WithOperation(op).WithError(err).ToSlice()...)
		return err
	}

	s.dropInsightLocked()
	s.account = &res.Account
	s.lastTx = res.Record
	s.insight = ""
	s.screen = AccountOverviewScreen{}
	ev := res.Record.Event(s.ID, res.Account, svc.now())
	s.mu.Unlock()

	svc.logger.InfoContext(ctx, "Transaction completed",
		log.NewFields().
			WithSession(s.ID).
			WithOperation(op).
			WithTransaction(ev.AccountID, string(ev.Kind), core.FormatAmount(ev.Amount), string(ev.Currency), core.FormatAmount(ev.Balance)).
			ToSlice()...)

	svc.publish(ctx, ev)
	return nil
}

func (svc *Service) publish(ctx context.Context, ev core.TransactionEvent) {
	if svc.events == nil {
		return
	}
	if err := svc.events.PublishTransaction(ctx, ev); err != nil {
		svc.logger.ErrorContext(ctx, "Failed to publish transaction event",
			log.FieldSessionID, ev.SessionID,
			log.FieldOperation, log.OpPublish,
			log.FieldError, err.Error())
	}
}

// RequestInsight starts an insight request bound to the session's insight
// slot and returns immediately. With no transaction on record the returned
// task is already complete and no call is made.
func (svc *Service) RequestInsight(ctx context.Context, s *Session) (*InsightTask, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireAccountLocked(); err != nil {
		return nil, err
	}
	if s.insightTask != nil {
		return nil, ErrInsightInFlight
	}
	s.insight = ""

	if s.lastTx == nil {
		s.insight = MsgNoTransaction
		return completedInsightTask(MsgNoTransaction), nil
	}

	rec := *s.lastTx
	acct := *s.account
	taskCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), svc.insightTimeout)
	task := newInsightTask(cancel)
	s.insightTask = task

	go svc.runInsight(taskCtx, s, task, rec, acct)
	return task, nil
}

func (svc *Service) runInsight(ctx context.Context, s *Session, task *InsightTask, rec core.TransactionRecord, acct core.Account) {
	defer task.cancel()

	start := time.Now()
	text, err := ResolveInsight(ctx, svc.insights, &rec, acct)

	s.mu.Lock()
	current := s.insightTask == task
	if current {
		s.insight = text
		s.insightTask = nil
	}
	s.mu.Unlock()
	task.finish(text, err)

	if err != nil {
		svc.logger.WarnContext(ctx, "Insight request failed",
			log.FieldSessionID, s.ID,
			log.FieldOperation, log.OpInsight,
			log.FieldDuration, time.Since(start).Milliseconds(),
			log.FieldError, err.Error(),
			"applied", current)
		return
	}
	svc.logger.DebugContext(ctx, "Insight generated",
		log.FieldSessionID, s.ID,
		log.FieldOperation, log.OpInsight,
		log.FieldDuration, time.Since(start).Milliseconds(),
		"applied", current)
}
