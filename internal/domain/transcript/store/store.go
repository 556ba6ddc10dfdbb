// Package store persists {question, answer} pairs produced by pipeline runs
// in a durable append-only log. The pipeline produces the pair; everything
// about persistence lives here.
package store

import (
	"context"
	"time"
)

// Record is one question/answer pair.
type Record struct {
	Question  string            `json:"question"`
	Answer    string            `json:"answer"`
	CreatedAt time.Time         `json:"created_at"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// Store appends records. Implementations must be safe for concurrent use.
type Store interface {
	Append(ctx context.Context, rec Record) error
	Close() error
}
