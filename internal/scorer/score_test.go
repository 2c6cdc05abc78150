package scorer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/adamancer/speciminer/internal/catnum"
	"github.com/adamancer/speciminer/internal/portal"
	"github.com/adamancer/speciminer/internal/scorer"
)

func TestScorePrefersTaxonomicMatch(t *testing.T) {
	ref := catnum.SpecNum{Code: "USNM", Number: 344300}
	ev := scorer.Evidence{RefNum: ref, Text: "a specimen referable to Foraminifera was recovered"}

	paleo := portal.CandidateRecord{
		OccurrenceID:         "paleo-1",
		CollectionCode:       "Paleobiology",
		CatalogNumber:        "344300",
		HigherClassification: "Foraminifera",
	}
	minsci := portal.CandidateRecord{
		OccurrenceID:   "minsci-1",
		CollectionCode: "Mineral Sciences",
		CatalogNumber:  "344300",
	}

	results := []*scorer.Result{
		scorer.Evaluate(paleo, ev),
		scorer.Evaluate(minsci, ev),
	}
	best := scorer.Best(results)

	assert.Len(t, best, 1)
	assert.Equal(t, "paleo-1", best[0].Record.OccurrenceID)
}

func TestScoreExcludesMismatchedCatalogNumber(t *testing.T) {
	ref := catnum.SpecNum{Code: "USNM", Number: 123}
	rec := portal.CandidateRecord{OccurrenceID: "x", CatalogNumber: "456"}
	result := scorer.Evaluate(rec, scorer.Evidence{RefNum: ref})
	assert.Less(t, result.Score.Points(), float64(0))
}

func TestScoreForcedDepartmentMismatchExcludes(t *testing.T) {
	ref := catnum.SpecNum{Code: "USNM", Number: 1001}
	rec := portal.CandidateRecord{OccurrenceID: "x", CatalogNumber: "1001", CollectionCode: "Botany"}
	result := scorer.Evaluate(rec, scorer.Evidence{RefNum: ref, ForcedDept: "VZ: Mammals"})
	assert.Less(t, result.Score.Points(), float64(0))
}

func TestSummaryEnumeratesMatchedComponents(t *testing.T) {
	ref := catnum.SpecNum{Code: "USNM", Number: 1001}
	rec := portal.CandidateRecord{
		OccurrenceID:         "x",
		CatalogNumber:        "1001",
		HigherClassification: "Mammalia Rodentia",
		Country:              "Panama",
	}
	result := scorer.Evaluate(rec, scorer.Evidence{RefNum: ref, Text: "Rodentia specimens from Panama"})
	summary := result.Score.Summary("Matched snippet")
	assert.Contains(t, summary, "Matched snippet")
	assert.Contains(t, summary, "taxa")
}
