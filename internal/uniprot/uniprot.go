package uniprot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultBaseURL is the UniProt REST root.
const DefaultBaseURL = "https://rest.uniprot.org"

// Fields is the restricted field set requested for every entry.
const Fields = "accession,protein_name,sequence,organism_name,gene_primary"

const defaultUserAgent = "protgps-collector/1.0"

// body bytes kept in a StatusError
const maxErrorBody = 512

var (
	ErrEmptyAccession = errors.New("empty accession")
	ErrNotFound       = errors.New("accession not found")
	ErrInactive       = errors.New("entry is inactive")
	ErrMalformed      = errors.New("malformed UniProt response")
)

// FetchError wraps every failure of Fetch with the accession it was for.
type FetchError struct {
	Accession string
	Err       error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch failed for %q: %v", e.Accession, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// StatusError is returned for non-2xx responses other than not found.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("uniprot returned status %d: %s", e.StatusCode, e.Body)
}

// Record is the subset of a UniProtKB entry the collector uses.
type Record struct {
	Accession      string `json:"accession"`
	FullName       string `json:"full_name"`
	ScientificName string `json:"scientific_name"`
	CommonName     string `json:"common_name,omitempty"`
	Gene           string `json:"gene,omitempty"`
	Sequence       string `json:"sequence"`
}

// DisplayOrganism prefers the common name ("Human") over the scientific one.
func (r *Record) DisplayOrganism() string {
	if r.CommonName != "" {
		return r.CommonName
	}
	return r.ScientificName
}

// GeneName returns the primary gene name or "Unknown".
func (r *Record) GeneName() string {
	if r.Gene != "" {
		return r.Gene
	}
	return "Unknown"
}

// entry mirrors the JSON returned by /uniprotkb/{accession}.
type entry struct {
	PrimaryAccession string `json:"primaryAccession"`
	EntryType        string `json:"entryType"`
	Organism         struct {
		ScientificName string `json:"scientificName"`
		CommonName     string `json:"commonName"`
	} `json:"organism"`
	ProteinDescription struct {
		RecommendedName *proteinName  `json:"recommendedName"`
		SubmissionNames []proteinName `json:"submissionNames"`
	} `json:"proteinDescription"`
	Genes []struct {
		GeneName *value `json:"geneName"`
	} `json:"genes"`
	Sequence struct {
		Value  string `json:"value"`
		Length int    `json:"length"`
	} `json:"sequence"`
}

type value struct {
	Value string `json:"value"`
}

type proteinName struct {
	FullName value `json:"fullName"`
}

func (e *entry) record() (*Record, error) {
	if e.EntryType == "Inactive" {
		return nil, ErrInactive
	}
	if e.PrimaryAccession == "" || e.Sequence.Value == "" {
		return nil, fmt.Errorf("%w: missing accession or sequence", ErrMalformed)
	}
	rec := &Record{
		Accession:      e.PrimaryAccession,
		ScientificName: e.Organism.ScientificName,
		CommonName:     e.Organism.CommonName,
		Sequence:       e.Sequence.Value,
	}
	// unreviewed entries only carry submission names
	if n := e.ProteinDescription.RecommendedName; n != nil {
		rec.FullName = n.FullName.Value
	} else if len(e.ProteinDescription.SubmissionNames) > 0 {
		rec.FullName = e.ProteinDescription.SubmissionNames[0].FullName.Value
	}
	if len(e.Genes) > 0 && e.Genes[0].GeneName != nil {
		rec.Gene = e.Genes[0].GeneName.Value
	}
	return rec, nil
}

// Client fetches entries from the UniProt REST API.
type Client struct {
	BaseURL    string
	UserAgent  string
	HTTPClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

func WithBaseURL(u string) Option { return func(c *Client) { c.BaseURL = u } }

func WithUserAgent(ua string) Option { return func(c *Client) { c.UserAgent = ua } }

func WithHTTPClient(h *http.Client) Option { return func(c *Client) { c.HTTPClient = h } }

// WithTimeout sets the timeout of the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.HTTPClient = &http.Client{Timeout: d}
		}
	}
}

// NewClient returns a client for DefaultBaseURL with a 20 second timeout
// unless overridden by opts.
func NewClient(opts ...Option) *Client {
	c := &Client{
		BaseURL:    DefaultBaseURL,
		UserAgent:  defaultUserAgent,
		HTTPClient: &http.Client{Timeout: 20 * time.Second},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// EntryURL returns the request URL for accession.
func (c *Client) EntryURL(accession string) string {
	base := strings.TrimRight(c.BaseURL, "/")
	return base + "/uniprotkb/" + url.PathEscape(accession) + "?" + url.Values{"fields": {Fields}}.Encode()
}

// Fetch issues a single GET for accession and decodes the entry. All
// errors are returned as *FetchError.
func (c *Client) Fetch(ctx context.Context, accession string) (*Record, error) {
	accession = strings.TrimSpace(accession)
	rec, err := c.fetch(ctx, accession)
	if err != nil {
		return nil, &FetchError{Accession: accession, Err: err}
	}
	return rec, nil
}

func (c *Client) fetch(ctx context.Context, accession string) (*Record, error) {
	if accession == "" {
		return nil, ErrEmptyAccession
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.EntryURL(accession), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.UserAgent)

	hc := c.HTTPClient
	if hc == nil {
		hc = http.DefaultClient
	}
	resp, err := hc.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound, resp.StatusCode == http.StatusBadRequest:
		// 400 is what UniProt answers for a badly formed accession
		return nil, ErrNotFound
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	var e entry
	if err := json.NewDecoder(resp.Body).Decode(&e); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return e.record()
}
