package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRecommendations_Malignant(t *testing.T) {
	recs := Recommendations(LabelMalignant, 0.92)

	assert.Len(t, recs, 4)
	assert.Contains(t, recs, "Seek immediate medical attention")
	assert.Contains(t, recs, "Schedule an appointment with a dermatologist")
	assert.Contains(t, recs, "Document any changes in the lesion")
	assert.Contains(t, recs, "Avoid sun exposure to the affected area")
	assert.NotContains(t, recs, SecondOpinionRecommendation)
}

func TestRecommendations_Benign(t *testing.T) {
	recs := Recommendations(LabelBenign, 0.85)

	assert.Len(t, recs, 4)
	assert.Contains(t, recs, "Continue regular skin checks")
	assert.Contains(t, recs, "Use sun protection")
	assert.Contains(t, recs, "Monitor for any changes")
	assert.Contains(t, recs, "Schedule routine dermatologist visits")
	assert.NotContains(t, recs, SecondOpinionRecommendation)
}

func TestRecommendations_LowConfidenceAppendsSecondOpinion(t *testing.T) {
	recs := Recommendations(LabelMalignant, 0.79)
	assert.Len(t, recs, 5)
	assert.Equal(t, SecondOpinionRecommendation, recs[len(recs)-1])

	recs = Recommendations(LabelBenign, 0.5)
	assert.Len(t, recs, 5)
	assert.Equal(t, SecondOpinionRecommendation, recs[len(recs)-1])
}

func TestRecommendations_ThresholdBoundary(t *testing.T) {
	// Exactly 0.8 is not low confidence.
	recs := Recommendations(LabelBenign, 0.8)
	assert.NotContains(t, recs, SecondOpinionRecommendation)
}

func TestRecommendations_UncertainUsesRoutineSet(t *testing.T) {
	recs := Recommendations(LabelUncertain, 0.5)
	assert.Contains(t, recs, "Continue regular skin checks")
	assert.Contains(t, recs, SecondOpinionRecommendation)
}

func TestRecommendations_DoesNotShareBackingArray(t *testing.T) {
	a := Recommendations(LabelBenign, 0.9)
	a[0] = "mutated"
	b := Recommendations(LabelBenign, 0.9)
	assert.Equal(t, "Continue regular skin checks", b[0])
}
