package log

// Common field names for structured logging
const (
	FieldComponent  = "component"
	FieldRequestID  = "request_id"
	FieldSessionID  = "session_id"
	FieldClientIP   = "client_ip"
	FieldMethod     = "method"
	FieldPath       = "path"
	FieldStatusCode = "status_code"
	FieldDuration   = "duration_ms"
	FieldUserAgent  = "user_agent"
	FieldError      = "error"
	FieldOperation  = "operation"
	FieldAccountID  = "account_id"
	FieldCurrency   = "currency"
	FieldKind       = "kind"
	FieldAmount     = "amount"
	FieldBalance    = "balance"
	FieldScreen     = "screen"
	FieldModel      = "model"
	FieldQueue      = "queue"
)

// Components defines standard component names
const (
	ComponentApp       = "app"
	ComponentHTTP      = "http"
	ComponentWallet    = "wallet"
	ComponentInsight   = "insight"
	ComponentSession   = "session"
	ComponentAMQP      = "amqp"
	ComponentAudit     = "audit"
	ComponentCache     = "cache"
	ComponentSecurity  = "security"
	ComponentRateLimit = "rate_limit"
	ComponentTrace     = "trace"
)

// Operations defines standard operation names
const (
	OpLogin    = "login"
	OpLogout   = "logout"
	OpSelect   = "select_account"
	OpNavigate = "navigate"
	OpDeposit  = "deposit"
	OpWithdraw = "withdraw"
	OpInsight  = "insight"
	OpPublish  = "publish"
	OpConsume  = "consume"
	OpShutdown = "shutdown"
	OpStartup  = "startup"
)

// Fields is a small builder for structured log attributes.
type Fields map[string]any

// NewFields creates a new Fields instance
func NewFields() Fields {
	return make(Fields)
}

func (f Fields) WithSession(id string) Fields {
	f[FieldSessionID] = id
	return f
}

func (f Fields) WithOperation(op string) Fields {
	f[FieldOperation] = op
	return f
}

// WithError adds the error text; nil is ignored.
func (f Fields) WithError(err error) Fields {
	if err != nil {
		f[FieldError] = err.Error()
	}
	return f
}

// WithTransaction adds the fields describing a ledger change.
func (f Fields) WithTransaction(accountID, kind, amount, currency, balance string) Fields {
	f[FieldAccountID] = accountID
	f[FieldKind] = kind
	f[FieldAmount] = amount
	f[FieldCurrency] = currency
	f[FieldBalance] = balance
	return f
}

// ToSlice converts Fields to the alternating key/value form slog expects.
func (f Fields) ToSlice() []any {
	slice := make([]any, 0, len(f)*2)
	for k, v := range f {
		slice = append(slice, k, v)
	}
	return slice
}
