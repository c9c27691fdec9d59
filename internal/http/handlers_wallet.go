package http

import (
	"context"
	"net/http"
	"time"

	"demowallet/internal/wallet"
)

const maxInsightWait = 30 * time.Second

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	sess, r := s.session(w, r)
	s.writeView(w, r, sess, nil)
}

func (s *Server) handleAccounts(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]any{"accounts": s.wallet.Accounts()})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	sess, r := s.session(w, r)

	var req loginRequest
	if err := parseRequest(r, &req, func(p *RequestBodyParser) {
		req.Username = p.Get("username")
		req.PIN = p.Get("pin")
	}); err != nil {
		s.writeView(w, r, sess, err)
		return
	}

	err := s.wallet.Login(r.Context(), sess, req.Username, req.PIN)
	if err != nil {
		s.appMetrics.loginFailures.Add(1)
	}
	s.writeView(w, r, sess, err)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	sess, r := s.session(w, r)
	s.wallet.Logout(r.Context(), sess)
	s.writeView(w, r, sess, nil)
}

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	sess, r := s.session(w, r)
	s.wallet.GoHome(r.Context(), sess)
	s.writeView(w, r, sess, nil)
}

func (s *Server) handleSelectAccount(w http.ResponseWriter, r *http.Request) {
	sess, r := s.session(w, r)
	err := s.wallet.SelectAccount(r.Context(), sess, r.PathValue("id"))
	s.writeView(w, r, sess, err)
}

func (s *Server) handleNavigate(w http.ResponseWriter, r *http.Request) {
	sess, r := s.session(w, r)

	var req navigateRequest
	if err := parseRequest(r, &req, func(p *RequestBodyParser) {
		req.Screen = p.Get("screen")
	}); err != nil {
		s.writeView(w, r, sess, err)
		return
	}

	target, err := wallet.ParseScreenName(req.Screen)
	if err != nil {
		s.writeView(w, r, sess, err)
		return
	}
	s.writeView(w, r, sess, s.wallet.Navigate(r.Context(), sess, target))
}

func (s *Server) handleInput(w http.ResponseWriter, r *http.Request) {
	sess, r := s.session(w, r)

	var req amountRequest
	if err := parseRequest(r, &req, func(p *RequestBodyParser) {
		req.Amount = p.Get("amount")
	}); err != nil {
		s.writeView(w, r, sess, err)
		return
	}
	s.writeView(w, r, sess, s.wallet.SetInput(r.Context(), sess, req.Amount))
}

func (s *Server) handleDeposit(w http.ResponseWriter, r *http.Request) {
	s.handleTransaction(w, r, s.wallet.Deposit, &s.appMetrics.deposits)
}

func (s *Server) handleWithdraw(w http.ResponseWriter, r *http.Request) {
	s.handleTransaction(w, r, s.wallet.Withdraw, &s.appMetrics.withdrawals)
}

type transactFunc func(ctx context.Context, sess *wallet.Session, raw string) error

type counter interface{ Add(int64) int64 }

func (s *Server) handleTransaction(w http.ResponseWriter, r *http.Request, apply transactFunc, done counter) {
	sess, r := s.session(w, r)

	var req amountRequest
	if err := parseRequest(r, &req, func(p *RequestBodyParser) {
		req.Amount = p.Get("amount")
	}); err != nil {
		s.writeView(w, r, sess, err)
		return
	}

	err := apply(r.Context(), sess, req.Amount)
	if err != nil {
		s.appMetrics.rejectedTx.Add(1)
	} else {
		done.Add(1)
	}
	s.writeView(w, r, sess, err)
}

// handleInsight starts an insight request and answers 202 while it runs.
// With ?wait=true the handler blocks until the insight arrives or the
// request is cancelled.
func (s *Server) handleInsight(w http.ResponseWriter, r *http.Request) {
	sess, r := s.session(w, r)

	task, err := s.wallet.RequestInsight(r.Context(), sess)
	if err != nil {
		s.writeView(w, r, sess, err)
		return
	}
	s.appMetrics.insights.Add(1)

	if r.URL.Query().Get("wait") == "true" {
		ctx, cancel := context.WithTimeout(r.Context(), maxInsightWait)
		defer cancel()
		_, _ = task.Wait(ctx)
	}

	select {
	case <-task.Done():
		s.writeView(w, r, sess, nil)
	default:
		s.writeViewStatus(w, r, sess, http.StatusAccepted, nil)
	}
}
