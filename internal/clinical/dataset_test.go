package clinical

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	logger.SetLevel(logrus.ErrorLevel)
	return logger
}

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "clinical.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const sampleCSV = `cases_submitter_id,demographic_gender,demographic_age_at_index,demographic_vital_status,demographic_race,cases_primary_site,cases_disease_type,diagnoses_ajcc_pathologic_stage,diagnoses_morphology,treatments_treatment_type,treatments_treatment_outcome,treatments_treatment_intent_type
TCGA-01,male,61,Alive,white,Skin,Nevi and Melanomas,Stage II,8720/3,Radiation,Complete Response,Curative
TCGA-02,female,54,Dead,white,Skin,Nevi and Melanomas,Stage III,8721/3,Pharmaceutical,,Palliative
TCGA-01,male,61,Alive,white,Skin,Nevi and Melanomas,Stage II,8720/3,Surgery,Complete Response,Curative
TCGA-03,female,,Alive,asian,Skin,Nevi and Melanomas,,8720/3,,,
`

func TestLoadDatasetParsesRows(t *testing.T) {
	path := writeCSV(t, sampleCSV)

	ds, err := LoadDataset(path, testLogger())
	require.NoError(t, err)
	require.Equal(t, 4, ds.Len())

	first := ds.Records()[0]
	assert.Equal(t, "TCGA-01", first.SubmitterID)
	assert.Equal(t, "male", first.Gender)
	assert.True(t, first.HasAge)
	assert.Equal(t, 61.0, first.Age)
	assert.Equal(t, "Stage II", first.PathologicStage)
	assert.Equal(t, "8720/3", first.Morphology)
	assert.Equal(t, "Curative", first.TreatmentIntent)

	blank := ds.Records()[3]
	assert.False(t, blank.HasAge)
	assert.Empty(t, blank.PathologicStage)
}

func TestLoadDatasetColumnOrderIndependent(t *testing.T) {
	path := writeCSV(t, strings.Join([]string{
		"diagnoses_morphology,cases_submitter_id,diagnoses_ajcc_pathologic_stage",
		"8720/3,TCGA-09,Stage I",
	}, "\n")+"\n")

	ds, err := LoadDataset(path, testLogger())
	require.NoError(t, err)
	require.Equal(t, 1, ds.Len())

	rec := ds.Records()[0]
	assert.Equal(t, "TCGA-09", rec.SubmitterID)
	assert.Equal(t, "Stage I", rec.PathologicStage)
	assert.Equal(t, "8720/3", rec.Morphology)
	assert.Empty(t, rec.Gender)
}

func TestLoadDatasetTrimsWhitespace(t *testing.T) {
	path := writeCSV(t, strings.Join([]string{
		"cases_submitter_id, diagnoses_ajcc_pathologic_stage",
		" TCGA-10 , Stage IV ",
	}, "\n")+"\n")

	ds, err := LoadDataset(path, testLogger())
	require.NoError(t, err)

	rec := ds.Records()[0]
	assert.Equal(t, "TCGA-10", rec.SubmitterID)
	assert.Equal(t, "Stage IV", rec.PathologicStage)
}

func TestLoadDatasetMissingFile(t *testing.T) {
	ds, err := LoadDataset(filepath.Join(t.TempDir(), "absent.csv"), testLogger())
	assert.Error(t, err)
	require.NotNil(t, ds)
	assert.True(t, ds.Empty())
}

func TestLoadDatasetMalformedQuoting(t *testing.T) {
	path := writeCSV(t, "cases_submitter_id\n\"unterminated\n")

	ds, err := LoadDataset(path, testLogger())
	assert.Error(t, err)
	assert.True(t, ds.Empty())
}

func TestDatasetNilSafe(t *testing.T) {
	var ds *Dataset
	assert.True(t, ds.Empty())
	assert.Equal(t, 0, ds.Len())
	assert.Nil(t, ds.Records())
}
