// Package portal specifies the collections-portal contract (spec.md §6)
// as consumed by the resolution engine, an HTTP client for a
// GeoGallery-style portal endpoint (HTTPClient, httpclient.go), and the
// retry/backoff wrapper that spec.md §5 requires around it. The portal
// service itself ("https://geogallery.si.edu/portal" in the original
// source) is an external collaborator; a fake of it for tests lives in
// portalfixture.
package portal

import (
	"context"
	"math"
	"time"

	"github.com/adamancer/speciminer/internal/errs"
)

// CandidateRecord is the subset of a SimpleDarwinCore record the scorer
// and resolver need (spec.md §6). Fields follow the original's simpledwr
// schema names verbatim so that a real portal client can populate this
// struct directly from JSON.
type CandidateRecord struct {
	OccurrenceID          string
	CollectionCode        string
	CatalogNumber         string
	RecordNumber          string
	HigherClassification  string
	ScientificName        string
	VernacularName        string
	Country               string
	StateProvince         string
	County                string
	Municipality          string
	Island                string
	VerbatimLocality      string
	Group                 string
	Formation              string
	Member                 string
	Order                 string
	Family                string
	Genus                 string
	EarliestPeriod        string
	EarliestEpoch         string
	EarliestAge           string
	LatestPeriod          string
	LatestEpoch           string
	LatestAge             string
	TypeStatus            string
	HigherGeography       string
	AssociatedReferences  []string
}

// Client is the consumed portal lookup: given a canonical catalog
// number, it returns zero or more candidate records (spec.md §6). A real
// implementation performs an HTTP GET against the portal's
// ?sample_id=<spec_num> endpoint; tests use portalfixture's in-process
// fake.
type Client interface {
	GetSpecimenByID(ctx context.Context, specNum string) ([]CandidateRecord, error)
}

// Retry wraps a Client with the exponential-backoff policy of spec.md
// §5: base 2, minimum 2s, up to 8 attempts, with status codes
// 400/401/402/403/404/500 treated as non-retryable. Cancellation of ctx
// aborts the retry loop immediately.
type Retry struct {
	Client   Client
	MaxTries int
	MinDelay time.Duration
}

// NewRetry wraps client with the spec's default backoff policy.
func NewRetry(client Client) *Retry {
	return &Retry{Client: client, MaxTries: 8, MinDelay: 2 * time.Second}
}

func (r *Retry) GetSpecimenByID(ctx context.Context, specNum string) ([]CandidateRecord, error) {
	maxTries := r.MaxTries
	if maxTries <= 0 {
		maxTries = 8
	}
	minDelay := r.MinDelay
	if minDelay <= 0 {
		minDelay = 2 * time.Second
	}

	var lastErr error
	for attempt := 0; attempt < maxTries; attempt++ {
		recs, err := r.Client.GetSpecimenByID(ctx, specNum)
		if err == nil {
			return recs, nil
		}
		lastErr = err

		var extErr *errs.ExternalError
		if ok := asExternalError(err, &extErr); ok && !extErr.Retryable() {
			return nil, err
		}

		if attempt == maxTries-1 {
			break
		}
		delay := time.Duration(float64(minDelay) * math.Pow(2, float64(attempt)))
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
	}
	return nil, lastErr
}

func asExternalError(err error, target **errs.ExternalError) bool {
	for err != nil {
		if e, ok := err.(*errs.ExternalError); ok {
			*target = e
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}
