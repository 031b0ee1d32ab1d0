package wikiapi_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"wsexport/internal/services"
	"wsexport/internal/wikiapi"
)

func newTestClient(t *testing.T, lang string, handler http.HandlerFunc) *wikiapi.Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := wikiapi.New(lang, wikiapi.WithBaseURL(server.URL), wikiapi.WithHTTPClient(server.Client()))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	return client
}

func TestResolveSite(t *testing.T) {
	cases := []struct {
		code   string
		domain string
		lang   string
	}{
		{"", "wikisource.org", ""},
		{"www", "wikisource.org", ""},
		{"wl", "wikilivres.ca", ""},
		{"wikilivres", "wikilivres.ca", ""},
		{"fr-wikibooks", "fr.wikibooks.org", "fr"},
		{"enwikibooks", "en.wikibooks.org", "en"},
		{"zh_min_nanwikibooks", "zh_min_nan.wikibooks.org", "zh_min_nan"},
		{"fr", "fr.wikisource.org", "fr"},
		{"he", "he.wikisource.org", "he"},
	}
	for _, tc := range cases {
		site := wikiapi.ResolveSite(tc.code)
		if site.Domain != tc.domain || site.Lang != tc.lang {
			t.Errorf("ResolveSite(%q) = %+v, want %s/%s", tc.code, site, tc.domain, tc.lang)
		}
	}
}

func TestGetAsyncNon200IsTransportError(t *testing.T) {
	client := newTestClient(t, "fr", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusServiceUnavailable)
		fmt.Fprint(w, `<html><head><title>Wikimedia Error</title></head><body><code>upstream connect error</code></body></html>`)
	})

	_, err := client.GetAsync(context.Background(), client.BaseURL()+"/anything").Wait()
	if !errors.Is(err, services.ErrTransport) {
		t.Fatalf("expected transport error, got %v", err)
	}
	var transportErr *services.TransportError
	if !errors.As(err, &transportErr) || transportErr.Status != http.StatusServiceUnavailable {
		t.Fatalf("expected status 503, got %v", err)
	}
	if transportErr.Message != "Error performing an external request: upstream connect error" {
		t.Fatalf("unexpected extracted message %q", transportErr.Message)
	}
}

func TestGetAsyncNetworkFailure(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	base := server.URL
	server.Close()

	client, err := wikiapi.New("fr", wikiapi.WithBaseURL(base))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	_, err = client.GetAsync(context.Background(), base+"/w/api.php").Wait()
	var transportErr *services.TransportError
	if !errors.As(err, &transportErr) || transportErr.Status != 0 {
		t.Fatalf("expected status-less transport error, got %v", err)
	}
}

func TestQueryAsyncAddsDefaultsAndUserAgent(t *testing.T) {
	var gotQuery, gotAgent, gotPath string
	client := newTestClient(t, "fr", func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		gotAgent = r.Header.Get("User-Agent")
		fmt.Fprint(w, `{"batchcomplete":"","query":{"general":{"sitename":"Wikisource"}}}`)
	})

	result, err := client.Query(context.Background(), wikiapi.Params{"meta": "siteinfo"})
	if err != nil {
		t.Fatalf("Query returned error: %v", err)
	}
	if gotPath != "/w/api.php" {
		t.Fatalf("unexpected path %q", gotPath)
	}
	for _, fragment := range []string{"action=query", "format=json", "meta=siteinfo"} {
		if !strings.Contains(gotQuery, fragment) {
			t.Fatalf("expected %q in query %q", fragment, gotQuery)
		}
	}
	if gotAgent != wikiapi.DefaultUserAgent {
		t.Fatalf("unexpected user agent %q", gotAgent)
	}
	query := result["query"].(map[string]any)
	if query["general"].(map[string]any)["sitename"] != "Wikisource" {
		t.Fatalf("unexpected result %v", result)
	}
}

func TestQueryAsyncInvalidJSON(t *testing.T) {
	client := newTestClient(t, "fr", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "<html>maintenance</html>")
	})

	_, err := client.QueryAsync(context.Background(), wikiapi.Params{}).Wait()
	if !errors.Is(err, services.ErrProtocol) {
		t.Fatalf("expected protocol error, got %v", err)
	}
	var protocolErr *services.ProtocolError
	if !errors.As(err, &protocolErr) || protocolErr.RawBody != "<html>maintenance</html>" {
		t.Fatalf("expected raw body to be kept, got %v", err)
	}
	if !strings.HasPrefix(err.Error(), `invalid JSON: "<html>maintenance</html>": `) {
		t.Fatalf("unexpected message %q", err.Error())
	}
}

func TestQueryAsyncAPIErrorIsProtocolError(t *testing.T) {
	client := newTestClient(t, "fr", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"error":{"code":"badvalue","info":"Unrecognized value for parameter \"prop\""}}`)
	})

	_, err := client.Query(context.Background(), wikiapi.Params{"prop": "bogus"})
	if !errors.Is(err, services.ErrProtocol) || !strings.Contains(err.Error(), "badvalue") {
		t.Fatalf("expected api error, got %v", err)
	}
}

func TestCompleteQueryFollowsContinuation(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, "fr", func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		round := 1
		if token := r.URL.Query().Get("apcontinue"); token != "" {
			fmt.Sscanf(token, "page%d", &round)
		}
		if r.URL.Query().Get("list") != "allpages" {
			t.Errorf("original params lost in round %d: %s", round, r.URL.RawQuery)
		}
		response := map[string]any{
			"batchcomplete": fmt.Sprintf("round-%d", round),
			"query": map[string]any{
				"allpages": []any{map[string]any{"title": fmt.Sprintf("Page %d", round)}},
			},
		}
		if round < 4 {
			response["continue"] = map[string]any{
				"apcontinue": fmt.Sprintf("page%d", round+1),
				"continue":   "-||",
			}
		}
		_ = json.NewEncoder(w).Encode(response)
	})

	result, err := client.CompleteQuery(context.Background(), wikiapi.Params{"list": "allpages"})
	if err != nil {
		t.Fatalf("CompleteQuery returned error: %v", err)
	}
	if got := calls.Load(); got != 4 {
		t.Fatalf("expected 4 round trips, got %d", got)
	}
	pages := result["query"].(map[string]any)["allpages"].([]any)
	if len(pages) != 4 {
		t.Fatalf("expected 4 merged pages, got %d", len(pages))
	}
	for i, item := range pages {
		if title := item.(map[string]any)["title"]; title != fmt.Sprintf("Page %d", i+1) {
			t.Fatalf("page %d out of order: %v", i, title)
		}
	}
	if result["batchcomplete"] != "round-4" {
		t.Fatalf("expected last scalar to win, got %v", result["batchcomplete"])
	}
	if _, ok := result["continue"]; ok {
		t.Fatal("continue object must not leak into merged result")
	}
}

func TestCompleteQueryStopsOnCancelledContext(t *testing.T) {
	var calls atomic.Int32
	ctx, cancel := context.WithCancel(context.Background())
	client := newTestClient(t, "fr", func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		cancel()
		fmt.Fprint(w, `{"continue":{"apcontinue":"next"},"query":{"allpages":[]}}`)
	})

	_, err := client.CompleteQuery(ctx, wikiapi.Params{"list": "allpages"})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context cancellation, got %v", err)
	}
	if got := calls.Load(); got != 1 {
		t.Fatalf("expected loop to stop after first round, got %d calls", got)
	}
}

func TestCompleteQueryPropagatesRoundFailure(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, "fr", func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 2 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		fmt.Fprint(w, `{"continue":{"apcontinue":"next"},"query":{"allpages":[]}}`)
	})

	_, err := client.CompleteQuery(context.Background(), wikiapi.Params{})
	if !errors.Is(err, services.ErrTransport) || !strings.Contains(err.Error(), "query round 2") {
		t.Fatalf("expected round 2 transport failure, got %v", err)
	}
}
