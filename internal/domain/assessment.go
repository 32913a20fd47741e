package domain

// Assessment collects the heuristic judgements made on top of the scores
type Assessment struct {
	LanguageProfile     LanguageProfile  `json:"languageProfile"`
	Maturity            Maturity         `json:"maturity"`
	Quality             Quality          `json:"quality"`
	Recommendations     []Recommendation `json:"recommendations"`
	Risks               []Risk           `json:"risks"`
	CommitPatterns      CommitPatterns   `json:"commitPatterns"`
	LatestStableRelease string           `json:"latestStableRelease,omitempty"`
}

// LanguageProfile classifies the language mix
type LanguageProfile struct {
	Complexity    string `json:"complexity"`
	IsModern      bool   `json:"isModern"`
	IsWebProject  bool   `json:"isWebProject"`
	LanguageCount int    `json:"languageCount"`
}

// Maturity scores how established the project is
type Maturity struct {
	Score int    `json:"score"`
	Level string `json:"level"`
}

// Quality scores visible hygiene signals
type Quality struct {
	Score   int      `json:"score"`
	Level   string   `json:"level"`
	Factors []string `json:"factors"`
}

// Priority ranks recommendations
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Recommendation is an actionable suggestion
type Recommendation struct {
	Type        string   `json:"type"`
	Priority    Priority `json:"priority"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Action      string   `json:"action"`
}

// Risk is a detected project risk
type Risk struct {
	Type        string   `json:"type"`
	Level       Priority `json:"level"`
	Description string   `json:"description"`
	Impact      string   `json:"impact"`
}

// CommitPatterns summarizes commit message styles
type CommitPatterns struct {
	Patterns     []string       `json:"patterns"`
	Types        map[string]int `json:"types"`
	TotalCommits int            `json:"totalCommits"`
}
