package scoring

import (
	"strings"
	"testing"

	"github.com/gokulchand98/jobscout/internal/job"
)

func TestResumeMatchEmptyResume(t *testing.T) {
	p := &job.Posting{Description: "spark kafka airflow"}
	if got := ResumeMatch(p, ""); got != 0 {
		t.Fatalf("expected 0 for empty resume, got %d", got)
	}
	if got := ResumeMatch(p, "   "); got != 0 {
		t.Fatalf("expected 0 for whitespace resume, got %d", got)
	}
}

func TestResumeMatchSkillOverlap(t *testing.T) {
	p := &job.Posting{Description: "Looking for Spark and Kafka experience, plus Terraform."}
	resume := "I have production experience with spark, kafka and airflow."

	// spark and kafka overlap (+5 each); airflow and terraform appear on one
	// side only and must not count.
	if got := ResumeMatch(p, resume); got != 10 {
		t.Fatalf("expected 10, got %d", got)
	}
}

func TestResumeMatchSeniorityBonuses(t *testing.T) {
	p := &job.Posting{Description: "Senior staff role working with python."}
	resume := "Senior staff engineer, python."

	// python (+5), senior (+10), staff (+12).
	if got := ResumeMatch(p, resume); got != 27 {
		t.Fatalf("expected 27, got %d", got)
	}
}

func TestResumeMatchClampedAt100(t *testing.T) {
	allSkills := strings.Join(skillVocabulary, " ") + " senior lead staff"
	p := &job.Posting{Description: allSkills}

	if got := ResumeMatch(p, allSkills); got != 100 {
		t.Fatalf("expected clamp at 100, got %d", got)
	}
}
