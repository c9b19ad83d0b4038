package models

import (
	"encoding/json"
	"time"
)

type Question struct {
	ID        string          `json:"id" db:"id"`
	PoolID    string          `json:"pool_id" db:"pool_id"`
	Text      string          `json:"text" db:"text"`
	Kind      string          `json:"kind" db:"kind"` // select, text, both
	Options   json.RawMessage `json:"options,omitempty" db:"options"`
	Position  int             `json:"position" db:"position"`
	CreatedAt time.Time       `json:"created_at" db:"created_at"`
}

type QuestionKind string

const (
	QuestionKindSelect QuestionKind = "select"
	QuestionKindText   QuestionKind = "text"
	QuestionKindBoth   QuestionKind = "both"
)

func (qk QuestionKind) String() string {
	return string(qk)
}

func IsValidQuestionKind(kind string) bool {
	switch kind {
	case "select", "text", "both":
		return true
	default:
		return false
	}
}
