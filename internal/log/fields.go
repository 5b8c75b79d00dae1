package log

// Common field names for structured logging
const (
	FieldComponent   = "component"
	FieldOperation   = "operation"
	FieldError       = "error"
	FieldUser        = "user"
	FieldScanRun     = "scan_run"
	FieldStatement   = "statement"
	FieldPeriods     = "periods"
	FieldRows        = "rows"
	FieldDescription = "description"
	FieldAmount      = "amount"
	FieldAccount     = "account"
	FieldAccountType = "account_type"
	FieldMonths      = "months"
	FieldCategory    = "category"
	FieldRecurring   = "recurring"
	FieldOneTime     = "one_time"
	FieldDuration    = "duration_ms"
)

// Components defines standard component names
const (
	ComponentApp      = "app"
	ComponentCLI      = "cli"
	ComponentParser   = "parser"
	ComponentDetector = "detector"
	ComponentForecast = "forecast"
	ComponentScan     = "scan"
	ComponentLedger   = "ledger"
	ComponentStorage  = "storage"
	ComponentAMQP     = "amqp"
	ComponentWorker   = "worker"
	ComponentBankFeed = "bankfeed"
	ComponentCache    = "cache"
)

// Operations defines standard operation names
const (
	OpParse    = "parse"
	OpDetect   = "detect"
	OpProject  = "project"
	OpScan     = "scan"
	OpSync     = "sync"
	OpCreate   = "create"
	OpDelete   = "delete"
	OpList     = "list"
	OpStartup  = "startup"
	OpShutdown = "shutdown"
)
