package remotive

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/gokulchand98/jobscout/internal/job"
)

const sampleResponse = `{
  "jobs": [
    {
      "id": 123456,
      "title": "Senior  Data   Engineer",
      "company_name": "Acme",
      "candidate_required_location": "Worldwide",
      "url": "https://remotive.com/remote-jobs/data/senior-data-engineer-123456",
      "description": "Build data pipelines with Spark and Kafka."
    },
    {
      "id": 123457,
      "title": "MLOps Engineer",
      "company_name": "Globex",
      "candidate_required_location": "USA Only",
      "url": "https://remotive.com/remote-jobs/data/mlops-engineer-123457",
      "description": "Deploy ML models on Kubernetes."
    }
  ]
}`

func newTestClient(t *testing.T, handler http.HandlerFunc, scoreFn func(*job.Posting) int) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	c := New(zap.NewNop(), scoreFn)
	c.APIURL = server.URL
	return c
}

func TestFetchNormalizesPostings(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("search"); got != "data engineer" {
			t.Errorf("unexpected search query: %q", got)
		}
		w.Write([]byte(sampleResponse))
	}, nil)

	postings, err := c.Fetch(context.Background(), "data engineer", "", 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if postings.Len() != 2 {
		t.Fatalf("expected 2 postings, got %d", postings.Len())
	}

	first := postings.Items[0]
	if first.ID != "remotive_123456" {
		t.Fatalf("expected source-prefixed id, got %q", first.ID)
	}
	if first.Source != job.SourceRemotive {
		t.Fatalf("unexpected source tag: %q", first.Source)
	}
	if first.Title != "Senior Data Engineer" {
		t.Fatalf("expected collapsed whitespace in title, got %q", first.Title)
	}
	if first.Scored() {
		t.Fatalf("posting must not be marked scored without a score func")
	}
}

func TestFetchScoresAtFetchTime(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(sampleResponse))
	}, func(p *job.Posting) int {
		if strings.Contains(strings.ToLower(p.Title), "data engineer") {
			return 15
		}
		return 1
	})

	postings, err := c.Fetch(context.Background(), "data engineer", "", 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	first := postings.Items[0]
	if !first.Scored() {
		t.Fatalf("expected posting marked scored")
	}
	if first.RelevanceScore != 15 {
		t.Fatalf("expected relevance 15, got %d", first.RelevanceScore)
	}
}

func TestFetchHonorsLimit(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(sampleResponse))
	}, nil)

	postings, err := c.Fetch(context.Background(), "engineer", "", 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if postings.Len() != 1 {
		t.Fatalf("expected 1 posting, got %d", postings.Len())
	}
}

func TestFetchBadStatus(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}, nil)

	if _, err := c.Fetch(context.Background(), "engineer", "", 5); err == nil {
		t.Fatalf("expected error on non-200 status")
	}
}
