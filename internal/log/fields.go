package log

import "time"

// Common field names for structured logging
const (
	FieldComponent     = "component"
	FieldError         = "error"
	FieldErrorType     = "error_type"
	FieldOperation     = "operation"
	FieldDuration      = "duration_ms"
	FieldSuccess       = "success"
	FieldEntity        = "entity"
	FieldEntityID      = "entity_id"
	FieldWalletID      = "wallet_id"
	FieldCategoryID    = "category_id"
	FieldTransactionID = "transaction_id"
	FieldKind          = "kind"
	FieldPeriod        = "period"
	FieldModifiedAt    = "modified_at"
	FieldApplied       = "applied"
	FieldQueue         = "queue"
	FieldCount         = "count"
	FieldRequestID     = "request_id"
)

// Components defines standard component names
const (
	ComponentApp     = "app"
	ComponentCodec   = "codec"
	ComponentStorage = "storage"
	ComponentAMQP    = "amqp"
	ComponentWorker  = "worker"
	ComponentCache   = "cache"
	ComponentSync    = "sync"
	ComponentReport  = "report"
	ComponentHTTP    = "http"
)

// Operations defines standard operation names
const (
	OpSave     = "save"
	OpRead     = "read"
	OpDelete   = "delete"
	OpList     = "list"
	OpPublish  = "publish"
	OpConsume  = "consume"
	OpSync     = "sync"
	OpDecode   = "decode"
	OpReport   = "report"
	OpMigrate  = "migrate"
	OpShutdown = "shutdown"
	OpStartup  = "startup"
)

// ErrorTypes defines standard error type categories
const (
	ErrorTypeValidation    = "validation_error"
	ErrorTypeConfiguration = "configuration_error"
	ErrorTypeDatabase      = "database_error"
	ErrorTypeNetwork       = "network_error"
	ErrorTypeDecode        = "decode_error"
	ErrorTypeNotFound      = "not_found_error"
	ErrorTypeConflict      = "conflict_error"
	ErrorTypeInternal      = "internal_error"
)

// LogFields provides a builder pattern for structured log fields
type LogFields map[string]any

// NewFields creates a new LogFields instance
func NewFields() LogFields {
	return make(LogFields)
}

// WithComponent adds component field
func (f LogFields) WithComponent(component string) LogFields {
	f[FieldComponent] = component
	return f
}

// WithError adds error field
func (f LogFields) WithError(err error) LogFields {
	if err != nil {
		f[FieldError] = err.Error()
	}
	return f
}

// WithErrorType adds the error category
func (f LogFields) WithErrorType(kind string) LogFields {
	f[FieldErrorType] = kind
	return f
}

// WithOperation adds operation field
func (f LogFields) WithOperation(op string) LogFields {
	f[FieldOperation] = op
	return f
}

// WithEntity identifies the record a log line is about
func (f LogFields) WithEntity(entity, id string, modifiedAt time.Time) LogFields {
	f[FieldEntity] = entity
	f[FieldEntityID] = id
	if !modifiedAt.IsZero() {
		f[FieldModifiedAt] = modifiedAt.UTC().Format(time.RFC3339Nano)
	}
	return f
}

// WithWallet adds the wallet id
func (f LogFields) WithWallet(walletID string) LogFields {
	f[FieldWalletID] = walletID
	return f
}

// WithPeriod adds the budget period in YYYY-MM form
func (f LogFields) WithPeriod(period string) LogFields {
	f[FieldPeriod] = period
	return f
}

// WithDuration adds an elapsed time in milliseconds
func (f LogFields) WithDuration(d time.Duration) LogFields {
	f[FieldDuration] = d.Milliseconds()
	return f
}

// ToSlice converts LogFields to a slice for slog
func (f LogFields) ToSlice() []any {
	slice := make([]any, 0, len(f)*2)
	for k, v := range f {
		slice = append(slice, k, v)
	}
	return slice
}
