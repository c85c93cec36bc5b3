// Package clinical loads the static clinical reference dataset and computes
// the descriptive statistics attached to analysis responses.
package clinical

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
)

// Column names in the reference CSV.
const (
	colSubmitterID     = "cases_submitter_id"
	colGender          = "demographic_gender"
	colAge             = "demographic_age_at_index"
	colVitalStatus     = "demographic_vital_status"
	colRace            = "demographic_race"
	colPrimarySite     = "cases_primary_site"
	colDiseaseType     = "cases_disease_type"
	colStage           = "diagnoses_ajcc_pathologic_stage"
	colMorphology      = "diagnoses_morphology"
	colTreatmentType   = "treatments_treatment_type"
	colTreatmentResult = "treatments_treatment_outcome"
	colTreatmentIntent = "treatments_treatment_intent_type"
)

// Record is one row of the clinical reference dataset.
type Record struct {
	SubmitterID      string
	Gender           string
	Age              float64
	HasAge           bool
	VitalStatus      string
	Race             string
	PrimarySite      string
	DiseaseType      string
	PathologicStage  string
	Morphology       string
	TreatmentType    string
	TreatmentOutcome string
	TreatmentIntent  string
}

// Dataset is the process-lifetime clinical reference data. It is loaded once
// at startup and shared read-only across all requests; nothing mutates it
// afterwards.
type Dataset struct {
	records []Record
}

// Empty reports whether the dataset holds no records.
func (d *Dataset) Empty() bool {
	return d == nil || len(d.records) == 0
}

// Len returns the number of records.
func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.records)
}

// Records returns the loaded rows. Callers must not modify them.
func (d *Dataset) Records() []Record {
	if d == nil {
		return nil
	}
	return d.records
}

// LoadDataset reads the clinical CSV at path. A missing or unreadable file
// is reported as an error; callers may continue with an empty dataset, which
// every aggregation tolerates.
func LoadDataset(path string, logger *logrus.Logger) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return &Dataset{}, fmt.Errorf("failed to open clinical data: %w", err)
	}
	defer f.Close()

	ds, err := parseDataset(f)
	if err != nil {
		return &Dataset{}, fmt.Errorf("failed to parse clinical data %s: %w", path, err)
	}

	logger.WithFields(logrus.Fields{
		"path":    path,
		"records": ds.Len(),
	}).Info("Clinical dataset loaded")

	return ds, nil
}

func parseDataset(r io.Reader) (*Dataset, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.TrimSpace(name)] = i
	}

	field := func(row []string, name string) string {
		i, ok := index[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	var records []Record
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}

		rec := Record{
			SubmitterID:      field(row, colSubmitterID),
			Gender:           field(row, colGender),
			VitalStatus:      field(row, colVitalStatus),
			Race:             field(row, colRace),
			PrimarySite:      field(row, colPrimarySite),
			DiseaseType:      field(row, colDiseaseType),
			PathologicStage:  field(row, colStage),
			Morphology:       field(row, colMorphology),
			TreatmentType:    field(row, colTreatmentType),
			TreatmentOutcome: field(row, colTreatmentResult),
			TreatmentIntent:  field(row, colTreatmentIntent),
		}
		if raw := field(row, colAge); raw != "" {
			if age, err := strconv.ParseFloat(raw, 64); err == nil {
				rec.Age = age
				rec.HasAge = true
			}
		}
		records = append(records, rec)
	}

	return &Dataset{records: records}, nil
}
