package enrich

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestLookupReturnsFirstExample(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/Tisch" {
			t.Errorf("Unexpected lookup path %q", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"meanings":[{"definitions":[{"example":""},{"example":"Der Tisch ist groß."}]}]}]`))
	}))
	defer server.Close()

	client := New(server.URL)
	if got := client.Lookup(context.Background(), "Tisch"); got != "Der Tisch ist groß." {
		t.Errorf("Expected example sentence, got %q", got)
	}
}

func TestLookupEscapesWord(t *testing.T) {
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.EscapedPath()
		w.Write([]byte(`[]`))
	}))
	defer server.Close()

	New(server.URL).Lookup(context.Background(), "auf Wiedersehen")
	if gotPath != "/auf%20Wiedersehen" {
		t.Errorf("Expected escaped path, got %q", gotPath)
	}
}

func TestLookupFailuresYieldEmpty(t *testing.T) {
	notFound := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "not found", http.StatusNotFound)
	}))
	defer notFound.Close()

	broken := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{not json`))
	}))
	defer broken.Close()

	cases := []struct {
		name   string
		client *Client
		word   string
	}{
		{"status error", New(notFound.URL), "Tisch"},
		{"malformed body", New(broken.URL), "Tisch"},
		{"unreachable", New("http://127.0.0.1:1"), "Tisch"},
		{"blank word", New(notFound.URL), "   "},
	}
	for _, tc := range cases {
		if got := tc.client.Lookup(context.Background(), tc.word); got != "" {
			t.Errorf("%s: expected empty example, got %q", tc.name, got)
		}
	}
}

func TestLookupNoExamplesInResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"meanings":[{"definitions":[{"example":"   "}]}]}]`))
	}))
	defer server.Close()

	if got := New(server.URL).Lookup(context.Background(), "Tisch"); got != "" {
		t.Errorf("Expected empty example, got %q", got)
	}
}
