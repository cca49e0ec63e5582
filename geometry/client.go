package geometry

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
)

// Client talks to a toric geometry service over HTTP. The service wraps the
// actual geometry engine (polytope corpus, triangulation sampling, volume and
// intersection-number computation) behind two JSON endpoints:
//
//	GET  /polytopes?h11=&h21=&lattice=&limit=&favorable=
//	POST /triangulations  {"polytope_id":..,"n":..,"c":..,"seed":..,"backend":..}
//
// Requests carry no client-side timeout by default: triangulation sampling on
// large polytopes legitimately takes minutes, and the pipeline's contract is
// to wait out a slow chunk rather than abandon it mid-round. Callers that want
// a bound can supply their own http.Client.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewClient creates a Client for the geometry service at baseURL.
func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL:    baseURL,
		HTTPClient: &http.Client{},
	}
}

// FetchPolytopes queries the corpus for polytopes matching opts. The corpus
// is ordered, so callers wanting a single canonical polytope pass Limit 1 and
// use the first element.
func (c *Client) FetchPolytopes(opts FetchOptions) ([]Polytope, error) {
	q := url.Values{}
	q.Set("h11", strconv.Itoa(opts.H11))
	q.Set("h21", strconv.Itoa(opts.H21))
	if opts.Lattice != "" {
		q.Set("lattice", opts.Lattice)
	}
	if opts.Limit > 0 {
		q.Set("limit", strconv.Itoa(opts.Limit))
	}
	q.Set("favorable", strconv.FormatBool(opts.Favorable))

	resp, err := c.HTTPClient.Get(c.BaseURL + "/polytopes?" + q.Encode())
	if err != nil {
		return nil, fmt.Errorf("fetch polytopes: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, httpError("fetch polytopes", resp)
	}

	var out struct {
		Polytopes []Polytope `json:"polytopes"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode polytopes response: %w", err)
	}
	return out.Polytopes, nil
}

// RandomTriangulations asks the service for n random fine regular
// triangulations of the identified polytope, sampled with concentration c
// under the given seed using the named backend. The service resolves each
// triangulation to its CY and returns plain numeric data only.
func (c *Client) RandomTriangulations(polyID, n int, concentration float64, seed int64, backend string) ([]Triangulation, error) {
	req := struct {
		PolytopeID int     `json:"polytope_id"`
		N          int     `json:"n"`
		C          float64 `json:"c"`
		Seed       int64   `json:"seed"`
		Backend    string  `json:"backend"`
	}{polyID, n, concentration, seed, backend}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encode triangulation request: %w", err)
	}

	resp, err := c.HTTPClient.Post(c.BaseURL+"/triangulations", "application/json", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("sample triangulations (backend=%s): %w", backend, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, httpError("sample triangulations", resp)
	}

	var out struct {
		Triangulations []Triangulation `json:"triangulations"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode triangulations response: %w", err)
	}
	return out.Triangulations, nil
}

// httpError turns a non-200 response into an error carrying a snippet of the
// body, which is where the service reports solver failures.
func httpError(op string, resp *http.Response) error {
	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	return fmt.Errorf("%s: service returned %s: %s", op, resp.Status, bytes.TrimSpace(snippet))
}
