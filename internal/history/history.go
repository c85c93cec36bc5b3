// Package history persists past analysis responses so users can review
// earlier results. Only the most recent entries are retained.
package history

import (
	"context"
	"time"

	"github.com/skin-wellness-navigator/internal/domain"
)

// Entry is one stored analysis. The full response is kept alongside the
// indexed columns so the review endpoint can return it verbatim.
type Entry struct {
	ID            int64                   `json:"id"`
	CreatedAt     time.Time               `json:"created_at"`
	Condition     domain.Label            `json:"condition"`
	Confidence    float64                 `json:"confidence"`
	UsingFallback bool                    `json:"using_fallback"`
	Response      domain.AnalysisResponse `json:"response"`
}

// Store records analysis responses and serves them back newest first.
type Store interface {
	Save(ctx context.Context, response *domain.AnalysisResponse) error
	Recent(ctx context.Context, limit int) ([]*Entry, error)
	Count(ctx context.Context) (int64, error)
	Close() error
}
