package models

import (
	"time"
)

type Pool struct {
	ID                  string    `json:"id" db:"id"`
	Name                string    `json:"name" db:"name"`
	Description         string    `json:"description" db:"description"`
	Status              string    `json:"status" db:"status"` // open, closed
	RequiredRepetitions int       `json:"required_repetitions" db:"required_repetitions"`
	TargetEvaluations   int       `json:"target_evaluations" db:"target_evaluations"`
	AutoTarget          bool      `json:"auto_target" db:"auto_target"`
	CreatedAt           time.Time `json:"created_at" db:"created_at"`
	UpdatedAt           time.Time `json:"updated_at" db:"updated_at"`
}

type PoolStatus string

const (
	PoolStatusOpen   PoolStatus = "open"
	PoolStatusClosed PoolStatus = "closed"
)

func (ps PoolStatus) String() string {
	return string(ps)
}
