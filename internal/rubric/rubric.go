// Package rubric holds the mutable configuration governing scoring and
// application decisions, together with its JSON document store.
package rubric

// Rubric is the process-wide tunable state. All keyword maps use
// case-insensitive substring matching against posting fields.
type Rubric struct {
	JobScoring  JobScoring  `json:"job_scoring"`
	CoverLetter CoverLetter `json:"cover_letter"`
	Application Application `json:"application"`
}

// JobScoring defines how postings are scored and prioritized.
type JobScoring struct {
	TitleKeywords       map[string]int `json:"title_keywords"`
	DescriptionKeywords map[string]int `json:"description_keywords"`
	CompanyPreferences  map[string]int `json:"company_preferences"`
	LocationPreferences map[string]int `json:"location_preferences"`
	MinScoreThreshold   int            `json:"min_score_threshold"`
}

// CoverLetter settings are consumed only by the letter writer.
type CoverLetter struct {
	Tone               string   `json:"tone"`
	Length             string   `json:"length"`
	FocusAreas         []string `json:"focus_areas"`
	CustomInstructions string   `json:"custom_instructions"`
	SignatureStyle     string   `json:"signature_style"`
}

// Application defines auto-apply decision criteria.
type Application struct {
	AutoApplyScoreThreshold int      `json:"auto_apply_score_threshold"`
	SkipCompanies           []string `json:"skip_companies"`
	RequiredKeywords        []string `json:"required_keywords"`
	BlacklistKeywords       []string `json:"blacklist_keywords"`
}

// Default returns the built-in rubric favoring Data Engineering, MLOps and
// Cloud Engineering roles. It is materialized and persisted on first load.
func Default() *Rubric {
	return &Rubric{
		JobScoring: JobScoring{
			TitleKeywords: map[string]int{
				"data engineer":           15,
				"data engineering":        15,
				"senior data engineer":    20,
				"lead data engineer":      18,
				"staff data engineer":     22,
				"principal data engineer": 25,

				"mlops":                     18,
				"ml engineer":               16,
				"machine learning engineer": 16,
				"ml platform":               14,
				"ai engineer":               14,

				"cloud engineer":            16,
				"devops engineer":           14,
				"platform engineer":         15,
				"infrastructure engineer":   13,
				"site reliability engineer": 14,
				"sre":                       14,
			},
			DescriptionKeywords: map[string]int{
				"apache spark": 8,
				"kafka":        7,
				"airflow":      7,
				"kubernetes":   8,
				"docker":       6,
				"terraform":    7,
				"aws":          6,
				"azure":        6,
				"gcp":          6,
				"databricks":   8,
				"snowflake":    7,
				"dbt":          6,

				"mlflow":     7,
				"kubeflow":   8,
				"sagemaker":  6,
				"pytorch":    5,
				"tensorflow": 5,

				"python": 4,
				"scala":  5,
				"java":   4,
				"sql":    3,

				"ci/cd":                  5,
				"iac":                    6,
				"infrastructure as code": 6,
				"data pipeline":          6,
				"etl":                    5,
				"streaming":              6,
			},
			CompanyPreferences: map[string]int{
				"netflix":   5,
				"spotify":   5,
				"uber":      4,
				"meta":      4,
				"google":    5,
				"microsoft": 4,
				"amazon":    3,
			},
			LocationPreferences: map[string]int{
				"remote":        8,
				"hybrid":        5,
				"san francisco": 3,
				"new york":      3,
				"seattle":       3,
				"austin":        4,
			},
			MinScoreThreshold: 8,
		},
		CoverLetter: CoverLetter{
			Tone:       "professional",
			Length:     "medium",
			FocusAreas: []string{"technical_skills", "achievements", "specific_experience"},
			CustomInstructions: "Emphasize hands-on experience with data pipelines, cloud platforms, and ML systems. " +
				"Mention specific technologies from the job description. Show quantifiable impact where possible.",
			SignatureStyle: "professional",
		},
		Application: Application{
			AutoApplyScoreThreshold: 25,
			SkipCompanies:           []string{},
			RequiredKeywords:        []string{"data", "engineering", "cloud", "ml"},
			BlacklistKeywords:       []string{"unpaid", "internship", "entry level"},
		},
	}
}
