package log

// Common field names for structured logging
const (
	FieldComponent  = "component"
	FieldRequestID  = "request_id"
	FieldClientIP   = "client_ip"
	FieldMethod     = "method"
	FieldPath       = "path"
	FieldQuery      = "query"
	FieldStatusCode = "status_code"
	FieldDuration   = "duration_ms"
	FieldUserAgent  = "user_agent"
	FieldSuccess    = "success"
	FieldError      = "error"
	FieldOperation  = "operation"

	FieldTransactionID = "transaction_id"
	FieldAmount        = "amount"
	FieldDate          = "date"
	FieldCategoryID    = "category_id"
	FieldTotalIncome   = "total_income"
	FieldTotalExpense  = "total_expense"
	FieldBalance       = "balance"
)

// Component names
const (
	ComponentApp       = "app"
	ComponentHTTP      = "http"
	ComponentDashboard = "dashboard"
	ComponentStorage   = "storage"
	ComponentAMQP      = "amqp"
	ComponentWorker    = "worker"
	ComponentSheets    = "sheets"
	ComponentBackend   = "backend"
)

// Operation names
const (
	OpCreate   = "create"
	OpList     = "list"
	OpDigest   = "digest"
	OpRender   = "render"
	OpShutdown = "shutdown"
	OpStartup  = "startup"
)

// LogFields is an ordered-agnostic attribute set for slog calls.
type LogFields map[string]any

func NewFields() LogFields {
	return make(LogFields)
}

func (f LogFields) WithComponent(component string) LogFields {
	f[FieldComponent] = component
	return f
}

func (f LogFields) WithOperation(op string) LogFields {
	f[FieldOperation] = op
	return f
}

func (f LogFields) WithError(err error) LogFields {
	if err != nil {
		f[FieldError] = err.Error()
	}
	return f
}

// WithTotals adds the headline dashboard figures.
func (f LogFields) WithTotals(income, expense, balance int64) LogFields {
	f[FieldTotalIncome] = income
	f[FieldTotalExpense] = expense
	f[FieldBalance] = balance
	return f
}

// WithTransaction adds the identifying fields of a recorded transaction.
func (f LogFields) WithTransaction(id int64, date string, amount, categoryID int64) LogFields {
	f[FieldTransactionID] = id
	f[FieldDate] = date
	f[FieldAmount] = amount
	if categoryID != 0 {
		f[FieldCategoryID] = categoryID
	}
	return f
}

// ToSlice converts the fields to slog's key/value form.
func (f LogFields) ToSlice() []any {
	out := make([]any, 0, len(f)*2)
	for k, v := range f {
		out = append(out, k, v)
	}
	return out
}
