package db

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Import job lifecycle states.
const (
	ImportStatusPending = "pending"
	ImportStatusRunning = "running"
	ImportStatusDone    = "done"
	ImportStatusFailed  = "failed"
)

// Import job kind classes, i.e. whether the uploaded file carries entity rows
// or relationship rows.
const (
	ImportClassEntity       = "entity"
	ImportClassRelationship = "relationship"
)

type ImportJob struct {
	ID            uuid.UUID       `json:"id"`
	KindClass     string          `json:"kind_class"`
	TargetKind    string          `json:"target_kind"`
	ObjectKey     string          `json:"object_key"`
	FileName      string          `json:"file_name"`
	Status        string          `json:"status"`
	TotalRows     int32           `json:"total_rows"`
	SucceededRows int32           `json:"succeeded_rows"`
	FailedRows    int32           `json:"failed_rows"`
	Errors        json.RawMessage `json:"errors"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

type ProcessStat struct {
	ID         int64     `json:"id"`
	JobID      uuid.UUID `json:"job_id"`
	StatType   string    `json:"stat_type"`
	Amount     int32     `json:"amount"`
	DurationMs int64     `json:"duration_ms"`
	CreatedAt  time.Time `json:"created_at"`
}
