package clinical

import (
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/sirupsen/logrus"

	"github.com/skin-wellness-navigator/internal/domain"
)

// InsightLookup computes the per-request clinical insight snapshot: the
// full-dataset stage distribution, the globally most frequent morphology
// code, and the count of records sharing it.
//
// The classification label is accepted but does not filter the aggregation;
// the reported statistics are identical regardless of the predicted
// condition. That mirrors the upstream behavior this service replaces and is
// kept deliberately (see DESIGN.md).
type InsightLookup struct {
	dataset *Dataset
	cache   *lru.Cache[domain.Label, domain.ClinicalInsights]
	logger  *logrus.Logger
}

// NewInsightLookup creates a lookup over the loaded dataset. Snapshots are
// memoized per label; the dataset is immutable for the process lifetime, so
// cached entries never go stale.
func NewInsightLookup(dataset *Dataset, cacheSize int, logger *logrus.Logger) (*InsightLookup, error) {
	if cacheSize <= 0 {
		cacheSize = 16
	}
	cache, err := lru.New[domain.Label, domain.ClinicalInsights](cacheSize)
	if err != nil {
		return nil, err
	}
	return &InsightLookup{dataset: dataset, cache: cache, logger: logger}, nil
}

// Insights returns the snapshot for the given label. An empty or missing
// dataset yields an empty mapping rather than an error; the request must
// never fail on account of the reference data.
func (l *InsightLookup) Insights(label domain.Label) domain.ClinicalInsights {
	if cached, ok := l.cache.Get(label); ok {
		return cached
	}

	insights := l.compute()
	l.cache.Add(label, insights)
	return insights
}

func (l *InsightLookup) compute() domain.ClinicalInsights {
	insights := domain.ClinicalInsights{
		StageDistribution: map[string]int{},
	}

	if l.dataset.Empty() {
		l.logger.Warn("Clinical dataset empty, returning empty insights")
		return insights
	}

	morphologyCounts := map[string]int{}
	for _, rec := range l.dataset.Records() {
		if rec.PathologicStage != "" {
			insights.StageDistribution[rec.PathologicStage]++
		}
		if rec.Morphology != "" {
			morphologyCounts[rec.Morphology]++
		}
	}

	for code, count := range morphologyCounts {
		if count > insights.SimilarCaseCount ||
			(count == insights.SimilarCaseCount && code < insights.MostCommonMorphology) {
			insights.MostCommonMorphology = code
			insights.SimilarCaseCount = count
		}
	}

	return insights
}
