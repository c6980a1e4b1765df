package domain

import "time"

// ArticleStatus tracks where an article sits in the review workflow.
type ArticleStatus string

const (
	StatusPendingModeration ArticleStatus = "pending_moderation"
	StatusPendingAnalysis   ArticleStatus = "pending_analysis"
	StatusApproved          ArticleStatus = "approved"
	StatusRejected          ArticleStatus = "rejected"
)

// Evidence categorizes how strongly an article supports a claim.
type Evidence string

const (
	EvidenceStrongSupport Evidence = "strong_support"
	EvidenceWeakSupport   Evidence = "weak_support"
	EvidenceStrongAgainst Evidence = "strong_against"
	EvidenceWeakAgainst   Evidence = "weak_against"
)

// SortOrder for submission-time ordered queries.
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// Article is a submitted bibliographic record under review.
// SeMethodID, Claim and Evidence are only populated once the article is approved.
type Article struct {
	ID          string        `json:"id"`
	Title       string        `json:"title"`
	Authors     string        `json:"authors"`
	Journal     string        `json:"journal"`
	Volume      int           `json:"volume,omitempty"`
	Pages       string        `json:"pages,omitempty"`
	PubYear     int           `json:"pubYear"`
	DOI         string        `json:"doi,omitempty"`
	Status      ArticleStatus `json:"status"`
	SubmittedAt time.Time     `json:"submittedAt"`
	Ratings     []float64     `json:"ratings"`
	SeMethodID  string        `json:"seMethod,omitempty"`
	Claim       string        `json:"claim,omitempty"`
	Evidence    Evidence      `json:"evidence,omitempty"`
}

// AverageRating is the arithmetic mean of all ratings, 0 when unrated.
// Computed on demand, never stored.
func (a Article) AverageRating() float64 {
	if len(a.Ratings) == 0 {
		return 0
	}
	var sum float64
	for _, r := range a.Ratings {
		sum += r
	}
	return sum / float64(len(a.Ratings))
}

// Claim is a single assertion under an SE method. The ID is stable across
// reordering; the public API still addresses claims by list index.
type Claim struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// SeMethod is a controlled-vocabulary software engineering practice with an
// ordered list of claims.
type SeMethod struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Claims []Claim `json:"claims"`
}

// ClaimByName returns the claim matching name, if any.
func (m SeMethod) ClaimByName(name string) (Claim, bool) {
	for _, c := range m.Claims {
		if c.Name == name {
			return c, true
		}
	}
	return Claim{}, false
}

// User roles consumed by the frontend for feature gating. Role is free text;
// anything outside these constants is treated as a plain reader.
const (
	RoleAdmin     = "admin"
	RoleModerator = "moderator"
	RoleAnalyst   = "analyst"
)

type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	Role         string    `json:"role"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}

// ParseStatus validates a status string against the workflow enum.
func ParseStatus(s string) (ArticleStatus, bool) {
	switch ArticleStatus(s) {
	case StatusPendingModeration, StatusPendingAnalysis, StatusApproved, StatusRejected:
		return ArticleStatus(s), true
	default:
		return "", false
	}
}

// ParseEvidence validates an evidence string.
func ParseEvidence(s string) (Evidence, bool) {
	switch Evidence(s) {
	case EvidenceStrongSupport, EvidenceWeakSupport, EvidenceStrongAgainst, EvidenceWeakAgainst:
		return Evidence(s), true
	default:
		return "", false
	}
}

// ParseSortOrder validates a sort order string, defaulting empty to ascending.
func ParseSortOrder(s string) (SortOrder, bool) {
	switch SortOrder(s) {
	case SortAsc, SortDesc:
		return SortOrder(s), true
	case "":
		return SortAsc, true
	default:
		return "", false
	}
}
