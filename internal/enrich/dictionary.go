// Package enrich fills in example sentences from an external dictionary.
// Lookups are best-effort: any failure yields an empty result and the word
// is saved without an example.
package enrich

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// lookupTimeout bounds the dictionary round trip so word creation is never
// held up by a slow enrichment service
const lookupTimeout = 3 * time.Second

// Client calls the dictionary lookup service
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a dictionary client for the given base URL
func New(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: lookupTimeout},
	}
}

// dictionaryEntry mirrors the relevant part of the lookup response
type dictionaryEntry struct {
	Meanings []struct {
		Definitions []struct {
			Example string `json:"example"`
		} `json:"definitions"`
	} `json:"meanings"`
}

// Lookup returns an example sentence for the word, or "" when the service
// has none or the call fails for any reason. It never returns an error.
func (c *Client) Lookup(ctx context.Context, word string) string {
	if strings.TrimSpace(word) == "" {
		return ""
	}

	ctx, cancel := context.WithTimeout(ctx, lookupTimeout)
	defer cancel()

	endpoint := fmt.Sprintf("%s/%s", c.baseURL, url.PathEscape(word))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return ""
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return ""
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return ""
	}

	var entries []dictionaryEntry
	if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		return ""
	}

	for _, entry := range entries {
		for _, meaning := range entry.Meanings {
			for _, def := range meaning.Definitions {
				if example := strings.TrimSpace(def.Example); example != "" {
					return example
				}
			}
		}
	}
	return ""
}
