// Package domain contains the core entities of the skin-lesion analysis
// pipeline: classification results, clinical insight snapshots, and the
// assembled API response.
package domain

import (
	"fmt"
	"time"
)

// Label is the classification assigned to a lesion image.
type Label string

const (
	LabelBenign    Label = "Benign"
	LabelMalignant Label = "Malignant"
	LabelUncertain Label = "Uncertain"
)

// Valid reports whether the label is one of the known classifications.
func (l Label) Valid() bool {
	switch l {
	case LabelBenign, LabelMalignant, LabelUncertain:
		return true
	}
	return false
}

// ResultSource tags which path produced a classification result.
type ResultSource string

const (
	// SourceExternal marks results returned by the external vision model.
	SourceExternal ResultSource = "external"
	// SourceFallback marks locally synthesized substitute results.
	SourceFallback ResultSource = "fallback"
	// SourceDegraded marks the fixed last-resort result produced when even
	// the fallback generator failed.
	SourceDegraded ResultSource = "degraded"
)

// Characteristics describes the visual features of a lesion. All four fields
// are always populated, whichever path produced the result.
type Characteristics struct {
	Color    string `json:"color"`
	Border   string `json:"border"`
	Symmetry string `json:"symmetry"`
	Texture  string `json:"texture"`
}

// ClassificationResult is the outcome of classifying one image. Exactly one
// result is produced per request, from exactly one source.
type ClassificationResult struct {
	Label           Label           `json:"classification"`
	Confidence      float64         `json:"confidence"`
	Characteristics Characteristics `json:"characteristics"`
	Reasoning       string          `json:"reasoning"`
	Recommendations []string        `json:"recommendations"`
	Source          ResultSource    `json:"-"`
}

// UsingFallback reports whether the result was synthesized locally rather
// than returned by the external model.
func (r *ClassificationResult) UsingFallback() bool {
	return r.Source != SourceExternal
}

// Validate checks the structural invariants every result must satisfy.
func (r *ClassificationResult) Validate() error {
	if !r.Label.Valid() {
		return fmt.Errorf("unknown classification label %q", r.Label)
	}
	if r.Confidence < 0 || r.Confidence > 1 {
		return fmt.Errorf("confidence %v outside [0,1]", r.Confidence)
	}
	if len(r.Recommendations) == 0 {
		return fmt.Errorf("recommendations must not be empty")
	}
	return nil
}

// ClinicalInsights is a read-only per-request snapshot of descriptive
// statistics drawn from the clinical reference dataset. It is computed from
// data loaded once at process start and never mutated per request.
type ClinicalInsights struct {
	StageDistribution    map[string]int `json:"stage_distribution"`
	MostCommonMorphology string         `json:"most_common_morphology"`
	SimilarCaseCount     int            `json:"similar_case_count"`
}

// AnalysisRequest carries one uploaded image through the pipeline.
type AnalysisRequest struct {
	Data     []byte
	MimeType string
}

// AnalysisResponse is the merged API response: classification fields,
// clinical insights, timestamp, and the fallback flag. Immutable once
// serialized.
type AnalysisResponse struct {
	Classification  Label            `json:"classification"`
	Confidence      float64          `json:"confidence"`
	Characteristics Characteristics  `json:"characteristics"`
	Reasoning       string           `json:"reasoning"`
	Recommendations []string         `json:"recommendations"`
	Insights        ClinicalInsights `json:"clinical_insights"`
	Timestamp       string           `json:"timestamp"`
	UsingFallback   bool             `json:"using_fallback"`
}

// NewAnalysisResponse assembles the response from a classification result and
// an insight snapshot, stamping the given time in UTC RFC 3339 form.
func NewAnalysisResponse(result *ClassificationResult, insights ClinicalInsights, now time.Time) *AnalysisResponse {
	return &AnalysisResponse{
		Classification:  result.Label,
		Confidence:      result.Confidence,
		Characteristics: result.Characteristics,
		Reasoning:       result.Reasoning,
		Recommendations: result.Recommendations,
		Insights:        insights,
		Timestamp:       now.UTC().Format(time.RFC3339),
		UsingFallback:   result.UsingFallback(),
	}
}
