package scoring

import (
	"strings"

	"github.com/gokulchand98/jobscout/internal/job"
)

const resumeMatchCap = 100

// skillVocabulary is the fixed set of technologies considered for resume
// overlap scoring.
var skillVocabulary = []string{
	"python", "java", "scala", "sql", "spark", "kafka", "airflow",
	"kubernetes", "docker", "aws", "azure", "gcp", "terraform",
	"databricks", "snowflake", "redshift", "bigquery", "dbt",
	"mlops", "machine learning", "data engineering", "devops",
}

var seniorityBonuses = []struct {
	term  string
	bonus int
}{
	{"senior", 10},
	{"lead", 8},
	{"staff", 12},
}

// ResumeMatch measures overlap between the posting description and the
// candidate's free-text resume: +5 per shared vocabulary skill, plus flat
// seniority bonuses when both texts carry the term. The result is clamped to
// [0, 100]. An empty resume scores 0.
func ResumeMatch(p *job.Posting, resumeText string) int {
	if strings.TrimSpace(resumeText) == "" {
		return 0
	}

	description := strings.ToLower(p.Description)
	resume := strings.ToLower(resumeText)

	score := 0
	for _, skill := range skillVocabulary {
		if strings.Contains(resume, skill) && strings.Contains(description, skill) {
			score += 5
		}
	}

	for _, s := range seniorityBonuses {
		if strings.Contains(resume, s.term) && strings.Contains(description, s.term) {
			score += s.bonus
		}
	}

	if score > resumeMatchCap {
		score = resumeMatchCap
	}
	return score
}
