package domain

// Care recommendations keyed by classification. The second-opinion string is
// appended whenever confidence falls below the threshold, regardless of
// which path produced the result.
const confidenceThreshold = 0.8

var urgentCareRecommendations = []string{
	"Seek immediate medical attention",
	"Schedule an appointment with a dermatologist",
	"Document any changes in the lesion",
	"Avoid sun exposure to the affected area",
}

var routineCareRecommendations = []string{
	"Continue regular skin checks",
	"Use sun protection",
	"Monitor for any changes",
	"Schedule routine dermatologist visits",
}

// SecondOpinionRecommendation is appended for low-confidence results.
const SecondOpinionRecommendation = "Consider getting a second opinion due to uncertainty in the analysis"

// Recommendations returns the care recommendations for a classification.
// Malignant yields the urgent set, everything else the routine set; a
// confidence below 0.8 appends the second-opinion note. The rule is shared
// verbatim by the external and fallback paths.
func Recommendations(label Label, confidence float64) []string {
	var recs []string
	if label == LabelMalignant {
		recs = append(recs, urgentCareRecommendations...)
	} else {
		recs = append(recs, routineCareRecommendations...)
	}
	if confidence < confidenceThreshold {
		recs = append(recs, SecondOpinionRecommendation)
	}
	return recs
}
