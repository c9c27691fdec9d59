package http

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"demowallet/internal/wallet"
)

func TestRequestBodyParser(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		contentType string
		key         string
		want        string
		wantJSON    bool
	}{
		{"json string", `{"amount":"12.50"}`, "application/json", "amount", "12.50", true},
		{"json number", `{"amount":100.25}`, "application/json", "amount", "100.25", true},
		{"json number keeps precision", `{"amount":12345678901234567.89}`, "application/json", "amount", "12345678901234567.89", true},
		{"json exponent kept literal", `{"amount":1e9}`, "application/json", "amount", "1e9", true},
		{"json bool", `{"amount":true}`, "application/json", "amount", "true", true},
		{"json sniffed without content type", `{"pin":"1234"}`, "", "pin", "1234", true},
		{"json missing key", `{"pin":"1234"}`, "application/json", "username", "", true},
		{"form", "username=user&pin=1234", "application/x-www-form-urlencoded", "username", "user", false},
		{"form trims and strips control chars", "amount=%20%2012%00%20", "application/x-www-form-urlencoded", "amount", "12", false},
		{"empty body", "", "", "amount", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			if tt.contentType != "" {
				req.Header.Set("Content-Type", tt.contentType)
			}
			p := NewRequestBodyParser(req)
			if err := p.Parse(); err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			if got := p.Get(tt.key); got != tt.want {
				t.Errorf("Get(%q) = %q, want %q", tt.key, got, tt.want)
			}
			if p.IsJSON() != tt.wantJSON {
				t.Errorf("IsJSON() = %v, want %v", p.IsJSON(), tt.wantJSON)
			}
		})
	}
}

func TestRequestBodyParser_Errors(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"amount":`))
	req.Header.Set("Content-Type", "application/json")
	if err := NewRequestBodyParser(req).Parse(); err == nil {
		t.Error("expected error for truncated JSON")
	}

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"amount":"1"} {"amount":"2"}`))
	req.Header.Set("Content-Type", "application/json")
	if err := NewRequestBodyParser(req).Parse(); err == nil {
		t.Error("expected error for trailing JSON data")
	}

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader("amount="+strings.Repeat("9", maxBodyBytes)))
	p := NewRequestBodyParser(req)
	if err := p.Parse(); !errors.Is(err, errBodyTooLarge) {
		t.Errorf("Parse() error = %v, want errBodyTooLarge", err)
	}
	if err := p.Parse(); !errors.Is(err, errBodyTooLarge) {
		t.Errorf("second Parse() error = %v, want cached errBodyTooLarge", err)
	}
}

func TestParseRequestValidates(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"screen":""}`))
	var nav navigateRequest
	err := parseRequest(req, &nav, func(p *RequestBodyParser) { nav.Screen = p.Get("screen") })
	if err == nil || !strings.Contains(err.Error(), "screen") {
		t.Errorf("parseRequest() error = %v, want screen validation failure", err)
	}

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"amount":"7"}`))
	var amt amountRequest
	if err := parseRequest(req, &amt, func(p *RequestBodyParser) { amt.Amount = p.Get("amount") }); err != nil {
		t.Fatalf("parseRequest() error = %v", err)
	}
	if amt.Amount != "7" {
		t.Errorf("Amount = %q, want %q", amt.Amount, "7")
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{nil, http.StatusOK},
		{wallet.ErrInvalidCredentials, http.StatusUnauthorized},
		{wallet.ErrNotAuthenticated, http.StatusUnauthorized},
		{wallet.ErrUnknownAccount, http.StatusNotFound},
		{wallet.ErrInvalidTransition, http.StatusConflict},
		{wallet.ErrNoActiveAccount, http.StatusConflict},
		{wallet.ErrInsightInFlight, http.StatusConflict},
		{wallet.ErrNoInputScreen, http.StatusConflict},
		{wallet.ErrInvalidAmount, http.StatusUnprocessableEntity},
		{wallet.ErrInsufficientFunds, http.StatusUnprocessableEntity},
		{wallet.ErrUnknownScreen, http.StatusBadRequest},
		{errBodyTooLarge, http.StatusBadRequest},
	}

	for _, tt := range tests {
		name := "nil"
		if tt.err != nil {
			name = tt.err.Error()
		}
		t.Run(name, func(t *testing.T) {
			if got := statusFor(tt.err); got != tt.want {
				t.Errorf("statusFor(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}
