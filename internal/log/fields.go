package log

// Common field names for structured logging
const (
	FieldComponent = "component"
	FieldError     = "error"
	FieldTxID      = "transaction_id"
	FieldRemoved   = "removed"
	FieldSkipped   = "skipped"
	FieldQueue     = "queue"
)

// Components defines standard component names
const (
	ComponentApp       = "app"
	ComponentReconcile = "reconcile"
	ComponentImport    = "import"
	ComponentStore     = "store"
	ComponentAMQP      = "amqp"
	ComponentWorker    = "worker"
)
