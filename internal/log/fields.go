package log

// Common field names for structured logging
const (
	FieldComponent  = "component"
	FieldError      = "error"
	FieldErrorKind  = "error_kind"
	FieldOperation  = "operation"
	FieldSystem     = "system"
	FieldInterface  = "interface"
	FieldCommand    = "command"
	FieldTargetDate = "target_date"
	FieldHost       = "host"
	FieldPath       = "path"
	FieldStatusCode = "status_code"
	FieldDuration   = "duration_ms"
	FieldParts      = "parts"
)

// Components defines standard component names
const (
	ComponentApp      = "app"
	ComponentVnstat   = "vnstat"
	ComponentStatus   = "status"
	ComponentRemote   = "remote"
	ComponentTelegram = "telegram"
	ComponentNotifier = "notifier"
	ComponentConfig   = "config"
)

// Operations defines standard operation names
const (
	OpCollect = "collect"
	OpResolve = "resolve"
	OpFetch   = "fetch"
	OpSave    = "save"
	OpSend    = "send"
)
