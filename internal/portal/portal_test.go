package portal_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adamancer/speciminer/internal/portal"
	"github.com/adamancer/speciminer/internal/portal/portalfixture"
)

func TestHTTPClientDecodesCandidateRecords(t *testing.T) {
	fx := portalfixture.New()
	defer fx.Close()
	fx.Set("USNM 344300", []portal.CandidateRecord{
		{OccurrenceID: "abc", CollectionCode: "Paleobiology", CatalogNumber: "344300", HigherClassification: "Foraminifera"},
	})

	client := portal.NewHTTPClient(fx.URL() + "/portal")
	recs, err := client.GetSpecimenByID(context.Background(), "USNM 344300")
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "abc", recs[0].OccurrenceID)
	assert.Equal(t, "Foraminifera", recs[0].HigherClassification)
}

func TestRetryRecoversFromTransientFailures(t *testing.T) {
	fx := portalfixture.New()
	defer fx.Close()
	fx.Set("USNM 201117", []portal.CandidateRecord{{OccurrenceID: "xyz"}})
	fx.FailFirst("USNM 201117", 2)

	client := portal.NewHTTPClient(fx.URL() + "/portal")
	retry := &portal.Retry{Client: client, MaxTries: 5, MinDelay: time.Millisecond}

	recs, err := retry.GetSpecimenByID(context.Background(), "USNM 201117")
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "xyz", recs[0].OccurrenceID)
	assert.Equal(t, 3, fx.Hits("USNM 201117"))
}

func TestRetryDoesNotRetryNonRetryableStatus(t *testing.T) {
	fx := portalfixture.New()
	defer fx.Close()
	fx.FailFirstWithStatus("BAD", 100, 404)

	client := portal.NewHTTPClient(fx.URL() + "/portal")
	retry := &portal.Retry{Client: client, MaxTries: 5, MinDelay: time.Millisecond}

	_, err := retry.GetSpecimenByID(context.Background(), "BAD")
	require.Error(t, err)
	assert.Equal(t, 1, fx.Hits("BAD"))
}
