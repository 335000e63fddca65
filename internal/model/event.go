package model

import (
	"database/sql"
	"time"
)

// Event levels
const (
	EventLevelInfo    = "info"
	EventLevelWarning = "warning"
	EventLevelError   = "error"
)

// Event categories
const (
	EventCategoryDocument    = "document"
	EventCategoryLanguage    = "language"
	EventCategoryTranslation = "translation"
	EventCategoryPublish     = "publish"
	EventCategoryCache       = "cache"
	EventCategorySystem      = "system"
)

// Event represents a system event log entry.
type Event struct {
	ID        int64
	Level     string
	Category  string
	Message   string
	Editor    sql.NullString // identity passed in by the web layer, if any
	Metadata  string         // JSON string
	CreatedAt time.Time
}
