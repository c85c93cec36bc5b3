package service

import (
	"bytes"
	"context"
	"errors"
	"image/color"
	"image/png"
	"os"
	"testing"
	"time"

	stdimage "image"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skin-wellness-navigator/internal/domain"
	"github.com/skin-wellness-navigator/internal/image"
)

type stubClassifier struct {
	result *domain.ClassificationResult
	err    error
	calls  int
}

func (s *stubClassifier) Classify(ctx context.Context, data []byte, mimeType string) (*domain.ClassificationResult, error) {
	s.calls++
	return s.result, s.err
}

type stubFallback struct {
	calls int
}

func (s *stubFallback) Simulate(mimeType string) *domain.ClassificationResult {
	s.calls++
	return &domain.ClassificationResult{
		Label:      domain.LabelBenign,
		Confidence: 0.7,
		Characteristics: domain.Characteristics{
			Color: "uniform", Border: "regular", Symmetry: "symmetric", Texture: "smooth",
		},
		Reasoning:       "simulated",
		Recommendations: []string{"Continue regular skin checks"},
		Source:          domain.SourceFallback,
	}
}

type stubInsights struct{}

func (stubInsights) Insights(label domain.Label) domain.ClinicalInsights {
	return domain.ClinicalInsights{
		StageDistribution:    map[string]int{"Stage II": 2},
		MostCommonMorphology: "8720/3",
		SimilarCaseCount:     2,
	}
}

type recordingStore struct {
	saved []*domain.AnalysisResponse
	err   error
}

func (r *recordingStore) Save(ctx context.Context, response *domain.AnalysisResponse) error {
	r.saved = append(r.saved, response)
	return r.err
}

func externalResult() *domain.ClassificationResult {
	return &domain.ClassificationResult{
		Label:      domain.LabelMalignant,
		Confidence: 0.92,
		Characteristics: domain.Characteristics{
			Color: "variegated", Border: "irregular", Symmetry: "asymmetric", Texture: "raised",
		},
		Reasoning:       "irregular borders with color variegation",
		Recommendations: []string{"Seek immediate medical attention"},
		Source:          domain.SourceExternal,
	}
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := stdimage.NewRGBA(stdimage.Rect(0, 0, 20, 20))
	for i := range img.Pix {
		img.Pix[i] = 180
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func newTestAnalyzer(classifier domain.Classifier, fb *stubFallback, store *recordingStore) *Analyzer {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	logger.SetLevel(logrus.ErrorLevel)

	var saver HistorySaver
	if store != nil {
		saver = store
	}
	a := NewAnalyzer(image.NewPreprocessor(), classifier, fb, stubInsights{}, saver, logger)
	a.now = func() time.Time { return time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC) }
	return a
}

func TestAnalyzeExternalSuccess(t *testing.T) {
	classifier := &stubClassifier{result: externalResult()}
	fb := &stubFallback{}
	store := &recordingStore{}

	resp, err := newTestAnalyzer(classifier, fb, store).Analyze(
		context.Background(), pngBytes(t), "image/png")
	require.NoError(t, err)

	assert.Equal(t, domain.LabelMalignant, resp.Classification)
	assert.Equal(t, 0.92, resp.Confidence)
	assert.False(t, resp.UsingFallback)
	assert.Equal(t, "2026-08-30T12:00:00Z", resp.Timestamp)
	assert.Equal(t, "8720/3", resp.Insights.MostCommonMorphology)
	assert.Zero(t, fb.calls)
	require.Len(t, store.saved, 1)
}

func TestAnalyzeSubstitutesFallbackOnError(t *testing.T) {
	classifier := &stubClassifier{err: domain.ErrClassificationUnavailable}
	fb := &stubFallback{}

	resp, err := newTestAnalyzer(classifier, fb, nil).Analyze(
		context.Background(), pngBytes(t), "image/png")
	require.NoError(t, err)

	assert.True(t, resp.UsingFallback)
	assert.Equal(t, domain.LabelBenign, resp.Classification)
	assert.Equal(t, 1, fb.calls)
}

func TestAnalyzeSubstitutesFallbackOnInvalidResult(t *testing.T) {
	bad := externalResult()
	bad.Confidence = 1.5
	classifier := &stubClassifier{result: bad}
	fb := &stubFallback{}

	resp, err := newTestAnalyzer(classifier, fb, nil).Analyze(
		context.Background(), pngBytes(t), "image/png")
	require.NoError(t, err)

	assert.True(t, resp.UsingFallback)
	assert.Equal(t, 1, fb.calls)
}

func TestAnalyzeRejectsInvalidImage(t *testing.T) {
	classifier := &stubClassifier{result: externalResult()}
	fb := &stubFallback{}

	_, err := newTestAnalyzer(classifier, fb, nil).Analyze(
		context.Background(), []byte("not an image"), "image/png")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInvalidImage))
	assert.Zero(t, classifier.calls)
	assert.Zero(t, fb.calls)
}

func TestAnalyzeHistoryFailureTolerated(t *testing.T) {
	classifier := &stubClassifier{result: externalResult()}
	store := &recordingStore{err: errors.New("disk full")}

	resp, err := newTestAnalyzer(classifier, &stubFallback{}, store).Analyze(
		context.Background(), pngBytes(t), "image/png")
	require.NoError(t, err)
	assert.NotNil(t, resp)
}

func TestAnalyzeSolidGrayImage(t *testing.T) {
	// Paletted input exercises the decode-any-registered-format path.
	img := stdimage.NewPaletted(stdimage.Rect(0, 0, 10, 10), color.Palette{
		color.RGBA{R: 120, G: 80, B: 60, A: 255},
	})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))

	resp, err := newTestAnalyzer(&stubClassifier{result: externalResult()}, &stubFallback{}, nil).
		Analyze(context.Background(), buf.Bytes(), "image/png")
	require.NoError(t, err)
	assert.NotNil(t, resp)
}
