package aggregate

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/gokulchand98/jobscout/internal/job"
	"github.com/gokulchand98/jobscout/internal/notify"
	"github.com/gokulchand98/jobscout/internal/rubric"
	"github.com/gokulchand98/jobscout/internal/source"
)

type stubSource struct {
	name     string
	items    []*job.Posting
	err      error
	panics   bool
	gotQuery string
	gotLimit int
	calls    int
}

func (s *stubSource) Name() string { return s.name }

func (s *stubSource) Fetch(_ context.Context, query, _ string, limit int) (*job.Postings, error) {
	s.calls++
	s.gotQuery = query
	s.gotLimit = limit
	if s.panics {
		panic("stub source exploded")
	}
	if s.err != nil {
		return nil, s.err
	}
	return &job.Postings{Items: s.items}, nil
}

func scoredPosting(src, id, title, company string, score int) *job.Posting {
	p := &job.Posting{
		ID:             id,
		Source:         src,
		Title:          title,
		Company:        company,
		URL:            "https://example.com/" + id,
		RelevanceScore: score,
	}
	p.MarkScored()
	return p
}

func toAdapters(sources []*stubSource) []source.Adapter {
	adapters := make([]source.Adapter, len(sources))
	for i, s := range sources {
		adapters[i] = s
	}
	return adapters
}

func mustEngine(t *testing.T, deps Deps) *Engine {
	t.Helper()
	e, err := New(deps)
	if err != nil {
		t.Fatalf("create engine: %v", err)
	}
	return e
}

func newTestEngine(t *testing.T, sources ...*stubSource) *Engine {
	t.Helper()
	return mustEngine(t, Deps{
		Sources: toAdapters(sources),
		Rubrics: rubric.NewStore(filepath.Join(t.TempDir(), "rubrics.json"), nil),
	})
}

func TestSearchRejectsInvalidLimit(t *testing.T) {
	e := newTestEngine(t, &stubSource{name: "remotive"})
	if _, err := e.Search(context.Background(), Request{Limit: 0}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestSearchUsesDefaultQueryWhenBlank(t *testing.T) {
	primary := &stubSource{name: "remotive"}
	e := newTestEngine(t, primary)

	if _, err := e.Search(context.Background(), Request{Query: "   ", Limit: 5}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if primary.gotQuery != defaultQuery {
		t.Fatalf("expected default query %q, got %q", defaultQuery, primary.gotQuery)
	}
}

func TestSearchDeduplicatesFirstSeen(t *testing.T) {
	primary := &stubSource{name: "remotive", items: []*job.Posting{
		scoredPosting("remotive", "remotive_1", "Data Engineer", "Acme", 20),
	}}
	aux := &stubSource{name: "dice", items: []*job.Posting{
		scoredPosting("dice", "dice_1", "  data engineer ", "ACME", 40),
		scoredPosting("dice", "dice_2", "MLOps Engineer", "Beta", 10),
	}}
	e := newTestEngine(t, primary, aux)

	got, err := e.Search(context.Background(), Request{Query: "data engineer", Limit: 10})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Len() != 2 {
		t.Fatalf("expected 2 postings after dedup, got %d", got.Len())
	}
	if got.FindByID("remotive_1") == nil {
		t.Fatalf("expected the primary-source posting to survive dedup")
	}
	if got.FindByID("dice_1") != nil {
		t.Fatalf("expected the later duplicate to be dropped")
	}
}

func TestSearchRanksAndTruncates(t *testing.T) {
	primary := &stubSource{name: "remotive", items: []*job.Posting{
		scoredPosting("remotive", "remotive_1", "Data Engineer", "Acme", 12),
		scoredPosting("remotive", "remotive_2", "Cloud Engineer", "Beta", 30),
		scoredPosting("remotive", "remotive_3", "MLOps Engineer", "Gamma", 21),
	}}
	e := newTestEngine(t, primary)

	got, err := e.Search(context.Background(), Request{Query: "engineer", Limit: 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Len() != 2 {
		t.Fatalf("expected truncation to 2, got %d", got.Len())
	}
	if got.Items[0].ID != "remotive_2" || got.Items[1].ID != "remotive_3" {
		t.Fatalf("expected descending relevance order, got %q then %q", got.Items[0].ID, got.Items[1].ID)
	}
}

func TestSearchScoresOnlyUnscoredPostings(t *testing.T) {
	unscored := &job.Posting{ID: "dice_1", Source: "dice", Title: "Data Engineer", Company: "Acme", URL: "https://example.com/1"}
	prescored := scoredPosting("remotive", "remotive_1", "Data Engineer", "Beta", 1)
	e := newTestEngine(t,
		&stubSource{name: "remotive", items: []*job.Posting{prescored}},
		&stubSource{name: "dice", items: []*job.Posting{unscored}},
	)

	got, err := e.Search(context.Background(), Request{Query: "data engineer", Limit: 10})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Len() != 2 {
		t.Fatalf("expected 2 postings, got %d", got.Len())
	}
	if unscored.RelevanceScore <= 0 {
		t.Fatalf("expected the unscored posting to be scored, got %d", unscored.RelevanceScore)
	}
	if prescored.RelevanceScore != 1 {
		t.Fatalf("expected the prescored posting to keep its score, got %d", prescored.RelevanceScore)
	}
}

func TestSearchToleratesSingleSourceFailure(t *testing.T) {
	primary := &stubSource{name: "remotive", items: []*job.Posting{
		scoredPosting("remotive", "remotive_1", "Data Engineer", "Acme", 20),
	}}
	aux := &stubSource{name: "dice", err: errors.New("boom")}
	e := newTestEngine(t, primary, aux)

	got, err := e.Search(context.Background(), Request{Query: "data engineer", Limit: 10})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Len() != 1 {
		t.Fatalf("expected the healthy source's posting, got %d postings", got.Len())
	}
}

func TestSearchIsolatesPanickingSource(t *testing.T) {
	primary := &stubSource{name: "remotive", items: []*job.Posting{
		scoredPosting("remotive", "remotive_1", "Data Engineer", "Acme", 20),
	}}
	aux := &stubSource{name: "linkedin", panics: true}
	e := newTestEngine(t, primary, aux)

	got, err := e.Search(context.Background(), Request{Query: "data engineer", Limit: 10})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Len() != 1 {
		t.Fatalf("expected the surviving source's posting, got %d postings", got.Len())
	}
}

func TestSearchAllSourcesFailedReturnsEmpty(t *testing.T) {
	e := newTestEngine(t,
		&stubSource{name: "remotive", err: errors.New("down")},
		&stubSource{name: "dice", err: errors.New("down too")},
	)

	got, err := e.Search(context.Background(), Request{Query: "data engineer", Limit: 10})
	if err != nil {
		t.Fatalf("expected degraded empty success, got error %v", err)
	}
	if got.Len() != 0 {
		t.Fatalf("expected no postings, got %d", got.Len())
	}
}

func TestSearchBudgetSplit(t *testing.T) {
	primary := &stubSource{name: "remotive"}
	aux1 := &stubSource{name: "dice"}
	aux2 := &stubSource{name: "linkedin"}
	e := newTestEngine(t, primary, aux1, aux2)

	if _, err := e.Search(context.Background(), Request{Query: "data engineer", Limit: 20}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if primary.gotLimit != 10 {
		t.Fatalf("expected primary budget 10, got %d", primary.gotLimit)
	}
	if aux1.gotLimit != 5 || aux2.gotLimit != 5 {
		t.Fatalf("expected auxiliary budgets 5 and 5, got %d and %d", aux1.gotLimit, aux2.gotLimit)
	}
}

func TestSearchResumeMatchScoring(t *testing.T) {
	p := scoredPosting("remotive", "remotive_1", "Data Engineer", "Acme", 20)
	p.Description = "We need python and sql experience."
	e := newTestEngine(t, &stubSource{name: "remotive", items: []*job.Posting{p}})

	got, err := e.Search(context.Background(), Request{
		Query:      "data engineer",
		Limit:      5,
		ResumeText: "Experienced with python and sql.",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Items[0].ResumeMatchScore != 10 {
		t.Fatalf("expected resume match 10 for two shared skills, got %d", got.Items[0].ResumeMatchScore)
	}
}

func TestSearchFallsBackToPrimaryOnBrokenRubrics(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rubrics.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("seed broken rubric file: %v", err)
	}

	primary := &stubSource{name: "remotive", items: []*job.Posting{
		scoredPosting("remotive", "remotive_1", "Data Engineer", "Acme", 20),
	}}
	aux := &stubSource{name: "dice"}
	e := mustEngine(t, Deps{
		Sources: toAdapters([]*stubSource{primary, aux}),
		Rubrics: rubric.NewStore(path, nil),
	})

	got, err := e.Search(context.Background(), Request{Query: "data engineer", Limit: 8})
	if err != nil {
		t.Fatalf("expected fallback success, got %v", err)
	}
	if got.Len() != 1 {
		t.Fatalf("expected the primary posting, got %d postings", got.Len())
	}
	if aux.calls != 0 {
		t.Fatalf("expected the auxiliary source to be skipped in fallback, got %d calls", aux.calls)
	}
	if primary.gotLimit != 8 {
		t.Fatalf("expected the primary to receive the full limit in fallback, got %d", primary.gotLimit)
	}
}

type recordingNotifier struct {
	sms   []string
	calls []string
}

func (n *recordingNotifier) SendSMS(_ context.Context, text string) error {
	n.sms = append(n.sms, text)
	return nil
}

func (n *recordingNotifier) MakeCall(_ context.Context, text string) error {
	n.calls = append(n.calls, text)
	return nil
}

func TestSearchNotifiesOnlyQualifyingMatches(t *testing.T) {
	high := scoredPosting("remotive", "remotive_1", "Data Engineer", "Acme", 35)
	mid := scoredPosting("remotive", "remotive_2", "Cloud Engineer", "Beta", 16)
	low := scoredPosting("remotive", "remotive_3", "Gardener", "Gamma", 3)
	notifier := &recordingNotifier{}

	e := mustEngine(t, Deps{
		Sources:       toAdapters([]*stubSource{{name: "remotive", items: []*job.Posting{high, mid, low}}}),
		Rubrics:       rubric.NewStore(filepath.Join(t.TempDir(), "rubrics.json"), nil),
		Notifications: notify.NewManager(notifier, nil),
	})

	if _, err := e.Search(context.Background(), Request{Query: "engineer", Limit: 10, Notify: true}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if high.Notification == nil {
		t.Fatalf("expected a notification for the high scorer")
	}
	if mid.Notification == nil {
		t.Fatalf("expected a notification for the sms-tier scorer")
	}
	if low.Notification != nil {
		t.Fatalf("expected no notification below both floors")
	}
	if len(notifier.calls) != 1 {
		t.Fatalf("expected 1 call delivery, got %d", len(notifier.calls))
	}
	if len(notifier.sms) != 1 {
		t.Fatalf("expected 1 sms delivery, got %d", len(notifier.sms))
	}
}

func TestSplitBudgetSingleSource(t *testing.T) {
	got := splitBudget(7, 1)
	if len(got) != 1 || got[0] != 7 {
		t.Fatalf("expected the lone source to get the full limit, got %v", got)
	}
}
