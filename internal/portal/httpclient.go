package portal

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/adamancer/speciminer/internal/errs"
)

// HTTPClient is a Client that queries the GeoGallery-style portal
// endpoint over HTTP, the same "?dept=any&format=json&schema=simpledwr"
// shape the original's _get_specimens built (speciminer/matchers
// analogue). It is the concrete Client that Retry wraps in production;
// tests exercise Retry against portalfixture instead.
type HTTPClient struct {
	BaseURL    string
	HTTPClient *http.Client
	UserAgent  string
}

// NewHTTPClient builds an HTTPClient against baseURL (e.g.
// "https://geogallery.si.edu/portal" or a portalfixture's URL()).
func NewHTTPClient(baseURL string) *HTTPClient {
	return &HTTPClient{
		BaseURL:    baseURL,
		HTTPClient: http.DefaultClient,
		UserAgent:  "speciminer/0.1 (+https://github.com/adamancer/speciminer)",
	}
}

type simpleDarwinRecordResponse struct {
	Response struct {
		Content struct {
			SimpleDarwinRecordSet []map[string]any `json:"SimpleDarwinRecordSet"`
		} `json:"content"`
	} `json:"response"`
}

func (c *HTTPClient) GetSpecimenByID(ctx context.Context, specNum string) ([]CandidateRecord, error) {
	q := url.Values{}
	q.Set("dept", "any")
	q.Set("format", "json")
	q.Set("schema", "simpledwr")
	q.Set("limit", "1000")
	q.Set("sample_id", specNum)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, &errs.ExternalError{Op: "portal.GetSpecimenByID", Err: err}
	}
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, &errs.ExternalError{Op: "portal.GetSpecimenByID", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &errs.ExternalError{Op: "portal.GetSpecimenByID", StatusCode: resp.StatusCode, Err: fmt.Errorf("unexpected status")}
	}

	var body simpleDarwinRecordResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, &errs.ExternalError{Op: "portal.GetSpecimenByID", Err: err}
	}

	recs := make([]CandidateRecord, 0, len(body.Response.Content.SimpleDarwinRecordSet))
	for _, raw := range body.Response.Content.SimpleDarwinRecordSet {
		recs = append(recs, recordFromMap(raw))
	}
	return recs, nil
}

func str(m map[string]any, key string) string {
	if v, ok := m[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

func recordFromMap(m map[string]any) CandidateRecord {
	return CandidateRecord{
		OccurrenceID:         str(m, "occurrenceID"),
		CollectionCode:       str(m, "collectionCode"),
		CatalogNumber:        str(m, "catalogNumber"),
		RecordNumber:         str(m, "recordNumber"),
		HigherClassification: str(m, "higherClassification"),
		ScientificName:       str(m, "scientificName"),
		VernacularName:       str(m, "vernacularName"),
		Country:              str(m, "country"),
		StateProvince:        str(m, "stateProvince"),
		County:               str(m, "county"),
		Municipality:         str(m, "municipality"),
		Island:               str(m, "island"),
		VerbatimLocality:     str(m, "verbatimLocality"),
		Group:                str(m, "group"),
		Formation:            str(m, "formation"),
		Member:               str(m, "member"),
	}
}
