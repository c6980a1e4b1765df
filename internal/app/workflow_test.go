package app

import (
	"testing"

	"speed/pkg/domain"
)

func TestCanTransition(t *testing.T) {
	cases := []struct {
		name string
		from domain.ArticleStatus
		to   domain.ArticleStatus
		want bool
	}{
		{"moderation pass", domain.StatusPendingModeration, domain.StatusPendingAnalysis, true},
		{"moderation reject", domain.StatusPendingModeration, domain.StatusRejected, true},
		{"moderation cannot approve directly", domain.StatusPendingModeration, domain.StatusApproved, false},
		{"analysis approve", domain.StatusPendingAnalysis, domain.StatusApproved, true},
		{"analysis reject", domain.StatusPendingAnalysis, domain.StatusRejected, true},
		{"analysis cannot go back", domain.StatusPendingAnalysis, domain.StatusPendingModeration, false},
		{"approved is terminal", domain.StatusApproved, domain.StatusRejected, false},
		{"rejected is terminal", domain.StatusRejected, domain.StatusPendingAnalysis, false},
		{"same status allowed", domain.StatusApproved, domain.StatusApproved, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := CanTransition(tc.from, tc.to); got != tc.want {
				t.Fatalf("CanTransition(%s, %s) = %v, want %v", tc.from, tc.to, got, tc.want)
			}
		})
	}
}
