package models

import "time"

// JobRecord is the normalized output of a source-type-specific scrape,
// emitted as pipeline_state["job_data"] on a JOB item.
type JobRecord struct {
	Title        string   `json:"title"`
	CompanyName  string   `json:"company_name"`
	CompanyURL   string   `json:"company_url,omitempty"`
	Location     string   `json:"location"`
	Remote       bool     `json:"remote"`
	SeniorityTag string   `json:"seniority_tag,omitempty"`
	RoleType     string   `json:"role_type,omitempty"`
	Description  string   `json:"description"`
	Skills       []string `json:"skills,omitempty"`
	CompanySize  int      `json:"company_size,omitempty"`
	URL          string   `json:"url"`
}

// StrikeHit records one triggered tier-2 filter rule.
type StrikeHit struct {
	Category string `json:"category"`
	Rule     string `json:"rule"`
	Weight   int    `json:"weight"`
}

// FilterResult is the emitted pipeline_state["filter_result"] payload.
type FilterResult struct {
	Rejected     bool        `json:"rejected"`
	HardReason   string      `json:"hard_reason,omitempty"`
	Strikes      []StrikeHit `json:"strikes,omitempty"`
	StrikeTotal  int         `json:"strike_total"`
	Threshold    int         `json:"threshold"`
}

// ResumeIntake is a small block of resume-tailoring hints produced by analysis.
type ResumeIntake struct {
	SuggestedSummary string   `json:"suggested_summary,omitempty"`
	HighlightSkills  []string `json:"highlight_skills,omitempty"`
}

// MatchResult is the emitted pipeline_state["match_result"] payload.
type MatchResult struct {
	Score          int          `json:"score"`
	Tier           string       `json:"tier"` // "cheap" | "medium" | "expensive" - which tier produced the final score
	MatchedSkills  []string     `json:"matched_skills,omitempty"`
	MissingSkills  []string     `json:"missing_skills,omitempty"`
	ResumeIntake   ResumeIntake `json:"resume_intake"`
	Rescored       bool         `json:"rescored"`
}

// JobMatch is the terminal, saved output of a successful job pipeline run.
type JobMatch struct {
	ID          string   `json:"id" badgerholdKey:"ID"`
	WorkItemID  string   `json:"work_item_id" badgerholdIndex:"WorkItemID"`
	CompanyRef  string   `json:"company_ref,omitempty" badgerholdIndex:"CompanyRef"`
	URL         string   `json:"url" badgerholdIndex:"URL"`
	URLHash     string   `json:"url_hash" badgerholdIndex:"URLHash"`
	Title       string   `json:"title"`
	CompanyName string   `json:"company_name"`
	Location    string   `json:"location"`
	Remote      bool     `json:"remote"`

	Score         int      `json:"score"`
	StrikeTotal   int      `json:"strike_total"`
	MatchedSkills []string `json:"matched_skills,omitempty"`
	MissingSkills []string `json:"missing_skills,omitempty"`

	ResumeIntake ResumeIntake `json:"resume_intake"`

	CreatedAt time.Time `json:"created_at" badgerholdIndex:"CreatedAt"`
}
