package models

// Статусы бронирования
const (
	StatusWaiting  Status = "WAITING"
	StatusApproved Status = "APPROVED"
	StatusRejected Status = "REJECTED"
)

const (
	// HeaderUserID carries the acting user's id on every request.
	HeaderUserID = "X-Sharer-User-Id"

	// TimeLayout is the wire format for booking and comment timestamps.
	TimeLayout = "2006-01-02T15:04:05"

	// DefaultPageSize размер страницы на сервере, если параметры не переданы
	DefaultPageSize = 50

	// GatewayDefaultPageSize размер страницы по умолчанию на шлюзе
	GatewayDefaultPageSize = 10

	// MaxExportRows ограничение на количество строк в выгрузке
	MaxExportRows = 10000
)

// Sync task statuses.
const (
	TaskStatusPending   = "pending"
	TaskStatusRetry     = "retry"
	TaskStatusRunning   = "processing"
	TaskStatusCompleted = "completed"
	TaskStatusFailed    = "failed"
)
