// Package portalfixture is an in-process fake of the collections portal
// (spec.md §6), built on gin the way the teacher's own daemon command
// (cmd/edict.go) serves EDirect over HTTP. It exists only for the tests
// of internal/portal, which need a real HTTP round trip to exercise
// HTTPClient and Retry without reaching the live GeoGallery portal.
package portalfixture

import (
	"net/http"
	"net/http/httptest"
	"sync"

	"github.com/gin-gonic/gin"

	"github.com/adamancer/speciminer/internal/portal"
)

// Fixture serves canned CandidateRecord responses keyed by catalog
// number, and counts how many times each key was requested so tests can
// assert on retry behavior.
type Fixture struct {
	server *httptest.Server

	mu      sync.Mutex
	records map[string][]portal.CandidateRecord
	// failFirst, when > 0, makes that many requests for a key return
	// failStatus before succeeding, to exercise Retry's backoff loop.
	failFirst  map[string]int
	failStatus map[string]int
	hits       map[string]int
}

// New starts a Fixture listening on an ephemeral local port.
func New() *Fixture {
	gin.SetMode(gin.TestMode)
	f := &Fixture{
		records:    make(map[string][]portal.CandidateRecord),
		failFirst:  make(map[string]int),
		failStatus: make(map[string]int),
		hits:       make(map[string]int),
	}

	router := gin.New()
	router.GET("/portal", f.handle)
	f.server = httptest.NewServer(router)
	return f
}

// Set registers the candidate records a specimen number should resolve
// to.
func (f *Fixture) Set(specNum string, recs []portal.CandidateRecord) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records[specNum] = recs
}

// FailFirst makes the next n requests for specNum return HTTP 503 before
// returning the registered records.
func (f *Fixture) FailFirst(specNum string, n int) {
	f.FailFirstWithStatus(specNum, n, http.StatusServiceUnavailable)
}

// FailFirstWithStatus is FailFirst with an explicit status code, used to
// exercise Retry's non-retryable-status short circuit (e.g. 404).
func (f *Fixture) FailFirstWithStatus(specNum string, n, status int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failFirst[specNum] = n
	f.failStatus[specNum] = status
}

// Hits reports how many requests the fixture has seen for specNum.
func (f *Fixture) Hits(specNum string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.hits[specNum]
}

// URL returns the fixture's base URL.
func (f *Fixture) URL() string {
	return f.server.URL
}

// Close shuts down the underlying HTTP test server.
func (f *Fixture) Close() {
	f.server.Close()
}

func (f *Fixture) handle(c *gin.Context) {
	specNum := c.Query("sample_id")

	f.mu.Lock()
	f.hits[specNum]++
	if remaining, ok := f.failFirst[specNum]; ok && remaining > 0 {
		f.failFirst[specNum] = remaining - 1
		status := f.failStatus[specNum]
		if status == 0 {
			status = http.StatusServiceUnavailable
		}
		f.mu.Unlock()
		c.Status(status)
		return
	}
	recs := f.records[specNum]
	f.mu.Unlock()

	out := make([]gin.H, 0, len(recs))
	for _, rec := range recs {
		out = append(out, gin.H{
			"occurrenceID":         rec.OccurrenceID,
			"collectionCode":       rec.CollectionCode,
			"catalogNumber":        rec.CatalogNumber,
			"recordNumber":         rec.RecordNumber,
			"higherClassification": rec.HigherClassification,
			"scientificName":       rec.ScientificName,
			"vernacularName":       rec.VernacularName,
			"country":              rec.Country,
			"stateProvince":        rec.StateProvince,
			"county":               rec.County,
			"municipality":         rec.Municipality,
			"island":               rec.Island,
			"verbatimLocality":     rec.VerbatimLocality,
			"group":                rec.Group,
			"formation":            rec.Formation,
			"member":               rec.Member,
		})
	}
	c.JSON(http.StatusOK, gin.H{
		"response": gin.H{
			"content": gin.H{
				"SimpleDarwinRecordSet": out,
			},
		},
	})
}
