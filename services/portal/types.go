package portal

import (
	"time"

	"aurassist-backend/lib/scrapers/aurion"
)

// RecordSet is the uniform result envelope every portal operation
// returns. Failures carry a short actionable message instead of a
// payload; callers branch on the message-level distinction between
// bad credentials, an unreachable upstream and an expired session.
type RecordSet[T any] struct {
	Success bool   `json:"success"`
	Errors  string `json:"errors,omitempty"`
	Data    *T     `json:"data,omitempty"`
}

func failure[T any](message string) RecordSet[T] {
	return RecordSet[T]{Errors: message}
}

func success[T any](data T) RecordSet[T] {
	return RecordSet[T]{Success: true, Data: &data}
}

type GradeRecord struct {
	// persisted row id, 0 until stored
	ID int64 `json:"id"`
	// temporary identifier for rows not yet persisted
	TempID string `json:"temp_id,omitempty"`
	// canonical course code recovered by the matcher, "" when
	// uncategorized
	Code  string    `json:"code"`
	Label string    `json:"label"`
	Grade string    `json:"grade"`
	Date  time.Time `json:"date"`
	// derived on merge, never stored
	IsNew bool `json:"is_new"`
}

type LoginData struct {
	Username  string    `json:"username"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

type GradesData struct {
	Grades []GradeRecord `json:"grades"`
	New    []GradeRecord `json:"new,omitempty"`
}

type AbsencesData struct {
	Total   int              `json:"total"`
	Records []aurion.Absence `json:"records"`
	Stats   []AbsenceStat    `json:"stats"`
}

type PlanningData struct {
	Events []aurion.PlanningEvent `json:"events"`
}
