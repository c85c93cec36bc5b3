// Package fallback synthesizes classification results locally so the service
// stays available when the external vision model is not.
package fallback

import (
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/skin-wellness-navigator/internal/domain"
)

// Distribution of the synthetic classification. The weights are a documented
// placeholder with no clinical grounding; they are preserved for behavioral
// compatibility and covered by tests.
const (
	benignProbability = 0.7
	confidenceMin     = 0.65
	confidenceMax     = 0.92
)

// DisclosureRecommendation is appended to every simulated result so callers
// can tell the response apart from a real model assessment.
const DisclosureRecommendation = "Note: This analysis is using simulated results as the AI model is currently unavailable"

var benignTemplate = struct {
	characteristics domain.Characteristics
	reasoning       string
}{
	characteristics: domain.Characteristics{
		Color:    "Uniform tan to brown coloration",
		Border:   "Well-defined, smooth borders",
		Symmetry: "Mostly symmetrical",
		Texture:  "Smooth, consistent texture",
	},
	reasoning: "The lesion shows uniform coloration without significant variation. " +
		"The borders are well-defined and regular. The overall shape is symmetrical. " +
		"These characteristics are typically associated with benign skin lesions.",
}

var malignantTemplate = struct {
	characteristics domain.Characteristics
	reasoning       string
}{
	characteristics: domain.Characteristics{
		Color:    "Varied coloration with dark and uneven areas",
		Border:   "Irregular, poorly defined edges",
		Symmetry: "Asymmetrical shape",
		Texture:  "Uneven texture with raised areas",
	},
	reasoning: "The lesion shows concerning features including color variation, " +
		"irregular borders, and asymmetrical shape. These features are " +
		"common in malignant skin lesions and warrant further examination.",
}

// Simulator produces complete synthetic classification results with no
// external dependency. Simulate never fails.
type Simulator struct {
	logger *logrus.Logger
	mu     sync.Mutex
	rng    *rand.Rand
}

// NewSimulator creates a fallback simulator seeded from the clock.
func NewSimulator(logger *logrus.Logger) *Simulator {
	return &Simulator{
		logger: logger,
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Simulate produces a synthetic result: Benign with probability 0.7,
// Malignant with 0.3, confidence uniform in [0.65, 0.92]. The mime type is
// informational only. If generation fails for any reason the fixed degraded
// result is returned instead; callers never see an error.
func (s *Simulator) Simulate(mimeType string) (result *domain.ClassificationResult) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.WithField("panic", r).Error("Fallback generation failed, returning degraded result")
			result = degradedResult()
		}
	}()

	s.logger.WithField("mime_type", mimeType).Warn("Using fallback simulation for model response")

	s.mu.Lock()
	label := domain.LabelBenign
	if s.rng.Float64() >= benignProbability {
		label = domain.LabelMalignant
	}
	confidence := confidenceMin + s.rng.Float64()*(confidenceMax-confidenceMin)
	s.mu.Unlock()

	confidence = math.Round(confidence*100) / 100

	template := benignTemplate
	if label == domain.LabelMalignant {
		template = malignantTemplate
	}

	recommendations := domain.Recommendations(label, confidence)
	recommendations = append(recommendations, DisclosureRecommendation)

	return &domain.ClassificationResult{
		Label:           label,
		Confidence:      confidence,
		Characteristics: template.characteristics,
		Reasoning:       template.reasoning,
		Recommendations: recommendations,
		Source:          domain.SourceFallback,
	}
}

// degradedResult is the fixed last-resort answer when even the simulator
// misbehaves. Still flagged as a fallback.
func degradedResult() *domain.ClassificationResult {
	return &domain.ClassificationResult{
		Label:      domain.LabelUncertain,
		Confidence: 0.5,
		Characteristics: domain.Characteristics{
			Color:    "Unable to analyze",
			Border:   "Unable to analyze",
			Symmetry: "Unable to analyze",
			Texture:  "Unable to analyze",
		},
		Reasoning: "Analysis unavailable due to system error",
		Recommendations: []string{
			"Please try again later",
			"Consult a healthcare professional if you have concerns",
		},
		Source: domain.SourceDegraded,
	}
}
