package clinical

import (
	"math"
	"sort"
)

// AgeStatistics summarizes the age column of the dataset.
type AgeStatistics struct {
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
}

// Summary is a full descriptive report over the reference dataset:
// demographics, disease characteristics, and treatments.
type Summary struct {
	TotalRecords       int            `json:"total_records"`
	UniquePatients     int            `json:"unique_patients"`
	GenderDistribution map[string]int `json:"gender_distribution"`
	VitalStatus        map[string]int `json:"vital_status"`
	RaceDistribution   map[string]int `json:"race_distribution"`
	AgeStatistics      *AgeStatistics `json:"age_statistics,omitempty"`
	PrimarySites       map[string]int `json:"primary_sites"`
	DiseaseTypes       map[string]int `json:"disease_types"`
	StageDistribution  map[string]int `json:"stage_distribution"`
	MorphologyTypes    map[string]int `json:"morphology_types"`
	TreatmentTypes     map[string]int `json:"treatment_types"`
	TreatmentOutcomes  map[string]int `json:"treatment_outcomes"`
	TreatmentIntents   map[string]int `json:"treatment_intents"`
}

// Summarize computes the full report. Deterministic for a given dataset; an
// empty dataset produces a zero-count summary with empty distributions.
func Summarize(dataset *Dataset) *Summary {
	s := &Summary{
		GenderDistribution: map[string]int{},
		VitalStatus:        map[string]int{},
		RaceDistribution:   map[string]int{},
		PrimarySites:       map[string]int{},
		DiseaseTypes:       map[string]int{},
		StageDistribution:  map[string]int{},
		MorphologyTypes:    map[string]int{},
		TreatmentTypes:     map[string]int{},
		TreatmentOutcomes:  map[string]int{},
		TreatmentIntents:   map[string]int{},
	}

	if dataset.Empty() {
		return s
	}

	patients := map[string]struct{}{}
	var ages []float64

	count := func(m map[string]int, key string) {
		if key != "" {
			m[key]++
		}
	}

	for _, rec := range dataset.Records() {
		s.TotalRecords++
		if rec.SubmitterID != "" {
			patients[rec.SubmitterID] = struct{}{}
		}
		count(s.GenderDistribution, rec.Gender)
		count(s.VitalStatus, rec.VitalStatus)
		count(s.RaceDistribution, rec.Race)
		count(s.PrimarySites, rec.PrimarySite)
		count(s.DiseaseTypes, rec.DiseaseType)
		count(s.StageDistribution, rec.PathologicStage)
		count(s.MorphologyTypes, rec.Morphology)
		count(s.TreatmentTypes, rec.TreatmentType)
		count(s.TreatmentOutcomes, rec.TreatmentOutcome)
		count(s.TreatmentIntents, rec.TreatmentIntent)
		if rec.HasAge {
			ages = append(ages, rec.Age)
		}
	}

	s.UniquePatients = len(patients)
	if len(ages) > 0 {
		s.AgeStatistics = ageStats(ages)
	}

	return s
}

func ageStats(ages []float64) *AgeStatistics {
	sorted := make([]float64, len(ages))
	copy(sorted, ages)
	sort.Float64s(sorted)

	sum := 0.0
	for _, a := range sorted {
		sum += a
	}

	n := len(sorted)
	median := sorted[n/2]
	if n%2 == 0 {
		median = (sorted[n/2-1] + sorted[n/2]) / 2
	}

	return &AgeStatistics{
		Mean:   math.Round(sum/float64(n)*100) / 100,
		Median: median,
		Min:    sorted[0],
		Max:    sorted[n-1],
	}
}
