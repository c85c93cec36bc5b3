// Package service orchestrates one analysis: preprocessing, classification
// with fallback substitution, insight attachment, and response assembly.
package service

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/skin-wellness-navigator/internal/domain"
	"github.com/skin-wellness-navigator/internal/image"
)

// HistorySaver is the slice of the history store the pipeline needs.
type HistorySaver interface {
	Save(ctx context.Context, response *domain.AnalysisResponse) error
}

// Analyzer runs the full pipeline for one uploaded image.
type Analyzer struct {
	preprocessor *image.Preprocessor
	classifier   domain.Classifier
	fallback     domain.FallbackAnalyzer
	insights     domain.InsightSource
	store        HistorySaver
	logger       *logrus.Logger
	now          func() time.Time
}

// NewAnalyzer wires the pipeline. store may be nil when history persistence
// is disabled.
func NewAnalyzer(
	preprocessor *image.Preprocessor,
	classifier domain.Classifier,
	fallback domain.FallbackAnalyzer,
	insights domain.InsightSource,
	store HistorySaver,
	logger *logrus.Logger,
) *Analyzer {
	return &Analyzer{
		preprocessor: preprocessor,
		classifier:   classifier,
		fallback:     fallback,
		insights:     insights,
		store:        store,
		logger:       logger,
		now:          time.Now,
	}
}

// Analyze processes one image and always produces a complete response unless
// the image itself is invalid. Classification failures of any kind are
// substituted with the fallback analyzer; the response flags the
// substitution but the request still succeeds.
func (a *Analyzer) Analyze(ctx context.Context, data []byte, mimeType string) (*domain.AnalysisResponse, error) {
	start := a.now()

	if _, err := a.preprocessor.Preprocess(data); err != nil {
		a.logger.WithError(err).Warn("Image preprocessing failed")
		return nil, err
	}

	result := a.classify(ctx, data, mimeType)
	insights := a.insights.Insights(result.Label)
	response := domain.NewAnalysisResponse(result, insights, a.now())

	a.saveHistory(ctx, response)

	a.logger.WithFields(logrus.Fields{
		"classification": result.Label,
		"confidence":     result.Confidence,
		"using_fallback": response.UsingFallback,
		"duration":       a.now().Sub(start).String(),
	}).Info("Analysis completed")

	return response, nil
}

func (a *Analyzer) classify(ctx context.Context, data []byte, mimeType string) *domain.ClassificationResult {
	result, err := a.classifier.Classify(ctx, data, mimeType)
	if err == nil {
		err = result.Validate()
		if err == nil {
			return result
		}
	}

	a.logger.WithError(err).Warn("Classification unavailable, using fallback")
	return a.fallback.Simulate(mimeType)
}

func (a *Analyzer) saveHistory(ctx context.Context, response *domain.AnalysisResponse) {
	if a.store == nil {
		return
	}
	// Best effort; a full or broken history store must not fail the request.
	if err := a.store.Save(ctx, response); err != nil {
		a.logger.WithError(err).Warn("Failed to save analysis history")
	}
}
