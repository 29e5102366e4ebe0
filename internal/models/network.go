package models

import "time"

// Network is a cluster of cases believed to be connected through shared
// identifying references (handles, profile URLs).
type Network struct {
	ID          int64     `db:"id" json:"id"`
	NetworkUID  string    `db:"network_uid" json:"network_uid"`
	Name        string    `db:"name" json:"name"`
	Description string    `db:"description" json:"description"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// CaseNetworkMembership links a case to a network. The (case_id, network_id)
// pair is the primary key; a case is linked to a network at most once.
type CaseNetworkMembership struct {
	CaseID    int64     `db:"case_id" json:"case_id"`
	NetworkID int64     `db:"network_id" json:"network_id"`
	LinkedAt  time.Time `db:"linked_at" json:"linked_at"`
}

// CaseToken is one row of the inverted index from extracted identity token
// to case. Rebuilt for a case on every correlation run.
type CaseToken struct {
	CaseID    int64     `db:"case_id" json:"case_id"`
	Token     string    `db:"token" json:"token"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// RelatedSet is the result of a correlation lookup for one case.
type RelatedSet struct {
	CaseID          int64    `json:"current_case_id"`
	ExtractedTokens []string `json:"extracted_tokens"`
	RelatedCases    []*Case  `json:"related_cases"` // Capped for display
	RelatedCount    int      `json:"related_cases_count"`
	NetworkUID      string   `json:"network_uid,omitempty"`

	// All stores the exhaustive result that feeds clustering; the capped
	// RelatedCases slice is presentation only.
	All []*Case `json:"-"`
}

// NetworkDetails aggregates a network's members for reporting.
type NetworkDetails struct {
	Network            *Network       `json:"network_info"`
	Cases              []*Case        `json:"cases"`
	TotalCases         int            `json:"total_cases"`
	ViolationTypes     map[string]int `json:"violation_types"`
	StatusDistribution map[string]int `json:"status_distribution"`
}

// CommonPatterns is the word/handle frequency report for a network.
// Reporting only; it feeds no further clustering.
type CommonPatterns struct {
	CommonWords        []WordCount `json:"common_words"`
	SharedUsernames    []string    `json:"shared_usernames"`
	TotalTextsAnalyzed int         `json:"total_texts_analyzed"`
}

type WordCount struct {
	Word  string `json:"word"`
	Count int    `json:"count"`
}
