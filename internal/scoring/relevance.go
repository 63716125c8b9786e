// Package scoring computes relevance and resume-match scores for postings.
// Both scorers are pure functions of their inputs.
package scoring

import (
	"strings"

	"github.com/gokulchand98/jobscout/internal/job"
	"github.com/gokulchand98/jobscout/internal/rubric"
)

// fallbackFloor is the bar below which the rubric pass is considered to have
// under-scored and the built-in priority pass kicks in.
const fallbackFloor = 3

// priorityKeywords is a fixed table distinct from the rubric. It guarantees
// reasonable ranking before any rubric customization has happened.
var priorityKeywords = map[string][]string{
	"data_engineering":  {"data engineer", "data engineering", "data pipeline", "etl", "apache spark", "kafka", "airflow", "databricks", "snowflake"},
	"mlops":             {"mlops", "ml engineer", "machine learning engineer", "ml platform", "kubeflow", "mlflow", "sagemaker", "model deployment"},
	"cloud_engineering": {"cloud engineer", "devops engineer", "aws engineer", "azure engineer", "gcp engineer", "kubernetes", "terraform", "infrastructure"},
}

// Score computes the additive relevance score for a posting under the given
// rubric. Every matching keyword contributes; there is no early exit, so a
// title like "senior data engineer" collects both the generic and the
// seniority-specific weights when both appear in the map.
func Score(p *job.Posting, r *rubric.Rubric) int {
	title := strings.ToLower(p.Title)
	description := strings.ToLower(p.Description)
	company := strings.ToLower(p.Company)
	location := strings.ToLower(p.Location)

	score := 0

	for keyword, weight := range r.JobScoring.TitleKeywords {
		if strings.Contains(title, strings.ToLower(keyword)) {
			score += weight
		}
	}
	for keyword, weight := range r.JobScoring.DescriptionKeywords {
		if strings.Contains(description, strings.ToLower(keyword)) {
			score += weight
		}
	}
	for substr, bonus := range r.JobScoring.CompanyPreferences {
		if strings.Contains(company, strings.ToLower(substr)) {
			score += bonus
		}
	}
	for substr, bonus := range r.JobScoring.LocationPreferences {
		if strings.Contains(location, strings.ToLower(substr)) {
			score += bonus
		}
	}

	if score < fallbackFloor {
		score += priorityPass(title, description)
	}

	return score
}

// priorityPass is the secondary heuristic applied only when the rubric pass
// under-scores: +10 per priority keyword in the title, else +3 for a
// description match.
func priorityPass(title, description string) int {
	score := 0
	for _, keywords := range priorityKeywords {
		for _, keyword := range keywords {
			switch {
			case strings.Contains(title, keyword):
				score += 10
			case strings.Contains(description, keyword):
				score += 3
			}
		}
	}
	return score
}
