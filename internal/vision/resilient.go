package vision

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"

	"github.com/skin-wellness-navigator/internal/domain"
)

// ResilientClassifier wraps a Classifier with a circuit breaker and an
// optional redis result cache. When the external service is flapping, the
// open breaker short-circuits new calls so requests fall back immediately
// instead of burning the full deadline each time.
type ResilientClassifier struct {
	inner   domain.Classifier
	breaker *gobreaker.CircuitBreaker
	cache   *ResultCache
	logger  *logrus.Logger
}

// NewResilientClassifier wraps the given classifier. The cache may be nil.
func NewResilientClassifier(inner domain.Classifier, cache *ResultCache, logger *logrus.Logger) *ResilientClassifier {
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "VisionModel",
		MaxRequests: 3,
		Interval:    30 * time.Second,
		Timeout:     60 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= 0.6
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.WithFields(logrus.Fields{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			}).Warn("Circuit breaker state changed")
		},
	})

	return &ResilientClassifier{
		inner:   inner,
		breaker: breaker,
		cache:   cache,
		logger:  logger,
	}
}

// Classify serves from cache when possible, otherwise attempts the external
// call through the circuit breaker. All failures surface as
// domain.ErrClassificationUnavailable.
func (r *ResilientClassifier) Classify(ctx context.Context, data []byte, mimeType string) (*domain.ClassificationResult, error) {
	if r.cache != nil {
		if cached, found, err := r.cache.Get(ctx, data); err == nil && found {
			r.logger.Debug("Classification served from cache")
			return cached, nil
		}
	}

	result, err := r.breaker.Execute(func() (interface{}, error) {
		return r.inner.Classify(ctx, data, mimeType)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%w: circuit breaker open", domain.ErrClassificationUnavailable)
		}
		if errors.Is(err, domain.ErrClassificationUnavailable) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrClassificationUnavailable, err)
	}

	classification := result.(*domain.ClassificationResult)

	if r.cache != nil {
		if err := r.cache.Set(ctx, data, classification); err != nil {
			r.logger.WithError(err).Warn("Failed to cache classification result")
		}
	}

	return classification, nil
}
