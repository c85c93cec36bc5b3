package fallback

import (
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skin-wellness-navigator/internal/domain"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func TestSimulate_ProducesValidResult(t *testing.T) {
	sim := NewSimulator(testLogger())

	result := sim.Simulate("image/png")
	require.NotNil(t, result)

	assert.NoError(t, result.Validate())
	assert.Contains(t, []domain.Label{domain.LabelBenign, domain.LabelMalignant}, result.Label)
	assert.GreaterOrEqual(t, result.Confidence, 0.65)
	assert.LessOrEqual(t, result.Confidence, 0.92)
	assert.Equal(t, domain.SourceFallback, result.Source)
	assert.True(t, result.UsingFallback())
}

func TestSimulate_AppendsDisclosure(t *testing.T) {
	sim := NewSimulator(testLogger())

	result := sim.Simulate("image/jpeg")
	require.NotEmpty(t, result.Recommendations)
	assert.Equal(t, DisclosureRecommendation, result.Recommendations[len(result.Recommendations)-1])
}

func TestSimulate_TemplatesMatchLabel(t *testing.T) {
	sim := NewSimulator(testLogger())

	// Sample until both labels have appeared.
	seen := map[domain.Label]*domain.ClassificationResult{}
	for i := 0; i < 1000 && len(seen) < 2; i++ {
		r := sim.Simulate("image/png")
		seen[r.Label] = r
	}
	require.Len(t, seen, 2, "both labels should appear within 1000 draws")

	benign := seen[domain.LabelBenign]
	assert.Equal(t, "Uniform tan to brown coloration", benign.Characteristics.Color)
	assert.Contains(t, benign.Reasoning, "benign skin lesions")

	malignant := seen[domain.LabelMalignant]
	assert.Equal(t, "Irregular, poorly defined edges", malignant.Characteristics.Border)
	assert.Contains(t, malignant.Reasoning, "malignant skin lesions")
}

func TestSimulate_BenignFractionConverges(t *testing.T) {
	sim := NewSimulator(testLogger())

	const trials = 10000
	benign := 0
	for i := 0; i < trials; i++ {
		r := sim.Simulate("image/png")
		assert.GreaterOrEqual(t, r.Confidence, 0.65)
		assert.LessOrEqual(t, r.Confidence, 0.92)
		if r.Label == domain.LabelBenign {
			benign++
		}
	}

	fraction := float64(benign) / float64(trials)
	// Binomial std dev at p=0.7, n=10000 is ~0.0046; 0.03 is well past 5 sigma.
	assert.InDelta(t, 0.7, fraction, 0.03)
}

func TestSimulate_SecondOpinionTracksConfidence(t *testing.T) {
	sim := NewSimulator(testLogger())

	for i := 0; i < 500; i++ {
		r := sim.Simulate("image/png")
		hasSecondOpinion := false
		for _, rec := range r.Recommendations {
			if rec == domain.SecondOpinionRecommendation {
				hasSecondOpinion = true
			}
		}
		if r.Confidence < 0.8 {
			assert.True(t, hasSecondOpinion, "confidence %v should carry second opinion", r.Confidence)
		} else {
			assert.False(t, hasSecondOpinion, "confidence %v should omit second opinion", r.Confidence)
		}
	}
}

func TestDegradedResult_Shape(t *testing.T) {
	result := degradedResult()

	assert.Equal(t, domain.LabelUncertain, result.Label)
	assert.Equal(t, 0.5, result.Confidence)
	assert.Equal(t, domain.SourceDegraded, result.Source)
	assert.True(t, result.UsingFallback())
	assert.Equal(t, "Unable to analyze", result.Characteristics.Color)
	assert.NotEmpty(t, result.Recommendations)
	assert.NoError(t, result.Validate())
}
