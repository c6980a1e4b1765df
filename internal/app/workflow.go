package app

import "speed/pkg/domain"

// transitions encodes the review workflow:
// pending_moderation -> {pending_analysis, rejected}
// pending_analysis   -> {approved, rejected}
// approved and rejected are terminal.
var transitions = map[domain.ArticleStatus][]domain.ArticleStatus{
	domain.StatusPendingModeration: {domain.StatusPendingAnalysis, domain.StatusRejected},
	domain.StatusPendingAnalysis:   {domain.StatusApproved, domain.StatusRejected},
}

// CanTransition reports whether the workflow allows moving from one status to
// another. Writing the current status back is always allowed.
func CanTransition(from, to domain.ArticleStatus) bool {
	if from == to {
		return true
	}
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
