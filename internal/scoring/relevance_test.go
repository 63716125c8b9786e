package scoring

import (
	"testing"

	"github.com/gokulchand98/jobscout/internal/job"
	"github.com/gokulchand98/jobscout/internal/rubric"
)

func TestScoreTitleSubstringMatch(t *testing.T) {
	r := &rubric.Rubric{
		JobScoring: rubric.JobScoring{
			TitleKeywords:     map[string]int{"data engineer": 15},
			MinScoreThreshold: 8,
		},
	}
	p := &job.Posting{Title: "Senior Data Engineer", Description: ""}

	if got := Score(p, r); got != 15 {
		t.Fatalf("expected score 15, got %d", got)
	}
}

func TestScoreIsDeterministic(t *testing.T) {
	r := rubric.Default()
	p := &job.Posting{
		Title:       "Senior Data Engineer",
		Company:     "Netflix",
		Location:    "Remote",
		Description: "We run Apache Spark and Kafka pipelines on Kubernetes with Terraform.",
	}

	first := Score(p, r)
	second := Score(p, r)
	if first != second {
		t.Fatalf("score is not deterministic: %d vs %d", first, second)
	}
	if first <= 0 {
		t.Fatalf("expected a positive score, got %d", first)
	}
}

func TestScoreAdditiveAcrossKeywordHits(t *testing.T) {
	r := &rubric.Rubric{
		JobScoring: rubric.JobScoring{
			TitleKeywords: map[string]int{
				"data engineer":        15,
				"senior data engineer": 20,
			},
		},
	}
	p := &job.Posting{Title: "Senior Data Engineer"}

	if got := Score(p, r); got != 35 {
		t.Fatalf("expected both keyword weights to contribute (35), got %d", got)
	}
}

func TestScoreCompanyAndLocationBonuses(t *testing.T) {
	r := &rubric.Rubric{
		JobScoring: rubric.JobScoring{
			TitleKeywords:       map[string]int{"data engineer": 15},
			CompanyPreferences:  map[string]int{"netflix": 5},
			LocationPreferences: map[string]int{"remote": 8},
		},
	}
	p := &job.Posting{Title: "Data Engineer", Company: "Netflix Inc.", Location: "Remote, USA"}

	if got := Score(p, r); got != 28 {
		t.Fatalf("expected 28, got %d", got)
	}
}

func TestScoreFallbackAppliesWhenRubricUnderScores(t *testing.T) {
	// Empty rubric: the rubric pass yields 0, below the fallback floor.
	r := &rubric.Rubric{}
	p := &job.Posting{Title: "Data Engineer", Description: "Build kafka pipelines"}

	got := Score(p, r)
	// "data engineer" in title (+10), "kafka" in description (+3).
	if got != 13 {
		t.Fatalf("expected fallback score 13, got %d", got)
	}
}

func TestScoreFallbackSkippedWhenRubricScores(t *testing.T) {
	r := &rubric.Rubric{
		JobScoring: rubric.JobScoring{
			TitleKeywords: map[string]int{"data engineer": 15},
		},
	}
	p := &job.Posting{Title: "Data Engineer"}

	// Rubric pass already yields 15 so the priority pass must not fire.
	if got := Score(p, r); got != 15 {
		t.Fatalf("expected 15 without fallback bonuses, got %d", got)
	}
}
