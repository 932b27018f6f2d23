package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
)

// Fetcher retrieves the provider feed for a search term through a CORS relay.
// The relay fetches the provider URL server-side and returns its body wrapped
// in a JSON envelope, so the provider never sees the caller directly.
type Fetcher struct {
	httpClient *http.Client
	relayURL   string
	baseURL    string
	language   string
	country    string
	edition    string
	userAgent  string
}

func NewFetcher(httpClient *http.Client, relayURL, baseURL, language, country, edition, userAgent string) *Fetcher {
	return &Fetcher{
		httpClient: httpClient,
		relayURL:   relayURL,
		baseURL:    baseURL,
		language:   language,
		country:    country,
		edition:    edition,
		userAgent:  userAgent,
	}
}

type relayEnvelope struct {
	Contents string `json:"contents"`
}

// Run performs one outbound call and returns the raw feed body. A failed run
// never partially mutates any state; retry policy belongs to the caller.
func (f *Fetcher) Run(ctx context.Context, term string) ([]byte, error) {
	requestURL := f.RelayRequestURL(term)

	req, err := http.NewRequestWithContext(ctx, "GET", requestURL, nil)
	if err != nil {
		return nil, &TransportError{Err: fmt.Errorf("failed to create request: %w", err)}
	}

	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{Err: fmt.Errorf("failed to fetch feed: %w", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &TransportError{Err: fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Err: fmt.Errorf("failed to read response body: %w", err)}
	}

	var envelope relayEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, &TransportError{Err: fmt.Errorf("malformed relay envelope: %w", err)}
	}

	if envelope.Contents == "" {
		return nil, &TransportError{Err: fmt.Errorf("relay envelope has no contents")}
	}

	return []byte(envelope.Contents), nil
}

// ProviderURL builds the provider search URL for a term, with the configured
// locale parameters.
func (f *Fetcher) ProviderURL(term string) string {
	params := url.Values{}
	params.Set("q", term)
	params.Set("hl", f.language)
	params.Set("gl", f.country)
	params.Set("ceid", f.edition)

	return f.baseURL + "?" + params.Encode()
}

// RelayRequestURL wraps the provider URL inside a relay request URL.
func (f *Fetcher) RelayRequestURL(term string) string {
	params := url.Values{}
	params.Set("url", f.ProviderURL(term))

	return f.relayURL + "?" + params.Encode()
}
