package metadata

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ppiankov/claimgraph/internal/cache"
	"github.com/ppiankov/claimgraph/internal/model"
)

func newTestClient(baseURL string, c cache.Cache) *Client {
	cfg := model.DefaultConfig().Metadata
	cfg.BaseURL = baseURL
	cfg.APIKey = "test-key"
	cfg.RetryDelay = time.Minute
	return NewClient(cfg, nil, c, nil)
}

func stubSleep(t *testing.T, fn func(context.Context, time.Duration) error) {
	t.Helper()
	orig := metadataSleepFunc
	metadataSleepFunc = fn
	t.Cleanup(func() { metadataSleepFunc = orig })
}

func TestPaper(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/paper/corpusid:42" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("fields"); got != "citationCount,influentialCitationCount" {
			t.Errorf("unexpected fields %q", got)
		}
		if r.Header.Get("x-api-key") != "test-key" {
			t.Errorf("api key header missing")
		}
		_, _ = fmt.Fprint(w, `{"paperId":"abc","citationCount":120,"influentialCitationCount":7}`)
	}))
	defer server.Close()

	info := newTestClient(server.URL, nil).Paper(context.Background(), 42)
	if info.CitationCount != 120 || info.InfluentialCitationCount != 7 {
		t.Errorf("unexpected paper info %+v", info)
	}
}

func TestAuthors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = fmt.Fprint(w, `{"paperId":"abc","authors":[
			{"authorId":"1","name":"Ada","paperCount":10,"citationCount":100,"hIndex":5},
			{"authorId":"2","name":null,"paperCount":null,"citationCount":40,"hIndex":null},
			{"authorId":null,"name":"Ghost","paperCount":3,"citationCount":3,"hIndex":1},
			{"authorId":"3","name":"Cy","paperCount":4,"citationCount":20,"hIndex":3}
		]}`)
	}))
	defer server.Close()

	names := NewAuthorNames()
	names.Set("2", "Bo")

	info := newTestClient(server.URL, nil).Authors(context.Background(), 42, names)
	if err := info.Validate(); err != nil {
		t.Fatalf("author info invalid: %v", err)
	}
	if info.NumAuthors != 3 {
		t.Fatalf("expected 3 authors, got %d", info.NumAuthors)
	}
	if info.Authors[1].Name != "Bo" {
		t.Errorf("expected missing name filled from cache, got %q", info.Authors[1].Name)
	}
	if info.PaperCounts[1] != 0 || info.HIndices[1] != 0 {
		t.Errorf("expected null counts to read as 0, got %d/%d", info.PaperCounts[1], info.HIndices[1])
	}
	if info.MaxCitationCount != 100 || info.MedianCitationCount != 40 {
		t.Errorf("unexpected citation stats max=%d median=%v", info.MaxCitationCount, info.MedianCitationCount)
	}
	if name, ok := names.Name("3"); !ok || name != "Cy" {
		t.Errorf("expected Cy recorded in name cache, got %q", name)
	}
}

func TestReferences(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/paper/corpusid:42/references" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.URL.Query().Get("limit") != "1000" {
			t.Errorf("expected limit=1000")
		}
		_, _ = fmt.Fprint(w, `{"data":[
			{"isInfluential":true,"intents":["methodology"],"contexts":["as shown in"],"citedPaper":{"externalIds":{"CorpusId":7}}},
			{"isInfluential":false,"intents":[],"contexts":[],"citedPaper":{"externalIds":null}},
			{"isInfluential":false,"intents":["background"],"contexts":[],"citedPaper":{"externalIds":{"DOI":"10.1/x","CorpusId":9}}}
		]}`)
	}))
	defer server.Close()

	refs := newTestClient(server.URL, nil).References(context.Background(), 42)
	if len(refs) != 2 {
		t.Fatalf("expected 2 references, got %d", len(refs))
	}
	if r := refs[7]; !r.IsInfluential || len(r.Intents) != 1 || r.Intents[0] != "methodology" {
		t.Errorf("unexpected reference 7: %+v", r)
	}
	if r := refs[9]; r.IsInfluential || r.Intents[0] != "background" {
		t.Errorf("unexpected reference 9: %+v", r)
	}
}

func TestGet_RetriesRateLimits(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch attempts.Add(1) {
		case 1:
			w.WriteHeader(http.StatusTooManyRequests)
		case 2:
			w.WriteHeader(http.StatusGatewayTimeout)
		default:
			_, _ = fmt.Fprint(w, `{"citationCount":3,"influentialCitationCount":1}`)
		}
	}))
	defer server.Close()

	var slept []time.Duration
	stubSleep(t, func(_ context.Context, d time.Duration) error {
		slept = append(slept, d)
		return nil
	})

	info := newTestClient(server.URL, nil).Paper(context.Background(), 1)
	if info.CitationCount != 3 {
		t.Errorf("expected result after retries, got %+v", info)
	}
	if attempts.Load() != 3 {
		t.Errorf("expected 3 attempts, got %d", attempts.Load())
	}
	if len(slept) != 2 || slept[0] != time.Minute {
		t.Errorf("expected two fixed backoffs of 1m, got %v", slept)
	}
}

func TestGet_MaxRetries(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	stubSleep(t, func(context.Context, time.Duration) error { return nil })

	client := newTestClient(server.URL, nil)
	client.maxRetries = 2

	info := client.Paper(context.Background(), 1)
	if info != (model.PaperInfo{}) {
		t.Errorf("expected empty info, got %+v", info)
	}
	if attempts.Load() != 3 {
		t.Errorf("expected 3 attempts, got %d", attempts.Load())
	}
}

func TestGet_BackoffCancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	stubSleep(t, func(context.Context, time.Duration) error { return context.Canceled })

	refs := newTestClient(server.URL, nil).References(context.Background(), 1)
	if len(refs) != 0 {
		t.Errorf("expected no references, got %d", len(refs))
	}
}

func TestSleepContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := sleepContext(ctx, time.Hour); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if err := sleepContext(context.Background(), time.Millisecond); err != nil {
		t.Errorf("unexpected error %v", err)
	}
}

func TestGet_OtherStatusDegrades(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		http.Error(w, "not found", http.StatusNotFound)
	}))
	defer server.Close()

	stubSleep(t, func(context.Context, time.Duration) error {
		t.Error("404 must not back off")
		return nil
	})

	info := newTestClient(server.URL, nil).Authors(context.Background(), 1, NewAuthorNames())
	if info.NumAuthors != 0 || info.Authors == nil {
		t.Errorf("expected empty non-nil author info, got %+v", info)
	}
	if attempts.Load() != 1 {
		t.Errorf("expected a single attempt, got %d", attempts.Load())
	}
}

func TestGet_CachesSuccessfulResponses(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		_, _ = fmt.Fprint(w, `{"citationCount":5,"influentialCitationCount":0}`)
	}))
	defer server.Close()

	client := newTestClient(server.URL, cache.NewMemoryCache(time.Minute, time.Minute))
	first := client.Paper(context.Background(), 8)
	second := client.Paper(context.Background(), 8)

	if first != second || first.CitationCount != 5 {
		t.Errorf("unexpected results %+v / %+v", first, second)
	}
	if attempts.Load() != 1 {
		t.Errorf("expected cached second lookup, got %d requests", attempts.Load())
	}
}

func TestCorpusID(t *testing.T) {
	var lastPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		lastPath = r.URL.Path
		if r.URL.Path == "/paper/PMID:404" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = fmt.Fprint(w, `{"paperId":"abc","externalIds":{"CorpusId":4779710}}`)
	}))
	defer server.Close()

	client := newTestClient(server.URL, nil)
	tests := []struct {
		id, idType string
		wantPath   string
	}{
		{"27009955", "pubmed", "/paper/PMID:27009955"},
		{"PMC123456", "pmc", "/paper/PMCID:123456"},
		{"2106.15928", "arxiv", "/paper/arXiv:2106.15928"},
		{"219604114", "s2", "/paper/219604114"},
	}
	for _, tt := range tests {
		id, found, err := client.CorpusID(context.Background(), tt.id, tt.idType)
		if err != nil || !found || id != 4779710 {
			t.Errorf("%s %s: got id=%d found=%v err=%v", tt.idType, tt.id, id, found, err)
		}
		if lastPath != tt.wantPath {
			t.Errorf("%s %s: requested %s, want %s", tt.idType, tt.id, lastPath, tt.wantPath)
		}
	}

	if _, found, err := client.CorpusID(context.Background(), "404", "pubmed"); err != nil || found {
		t.Errorf("expected not found without error, got found=%v err=%v", found, err)
	}
	if _, _, err := client.CorpusID(context.Background(), "1", "isbn"); err == nil {
		t.Error("expected error for unknown id type")
	}
}
