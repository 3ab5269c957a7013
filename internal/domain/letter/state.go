package letter

import (
	"github.com/lettercounsel/lettercounsel/internal/types"
)

// allowedTransitions is the complete directed graph of letter status
// changes. Any pair not listed is rejected. The rejected -> generating edge
// is the resubmission path; failed -> draft is the retry path.
var allowedTransitions = map[types.LetterStatus][]types.LetterStatus{
	types.LetterStatusDraft: {
		types.LetterStatusGenerating,
	},
	types.LetterStatusGenerating: {
		types.LetterStatusPendingReview,
		types.LetterStatusFailed,
	},
	types.LetterStatusPendingReview: {
		types.LetterStatusUnderReview,
		types.LetterStatusApproved,
		types.LetterStatusRejected,
	},
	types.LetterStatusUnderReview: {
		types.LetterStatusApproved,
		types.LetterStatusRejected,
	},
	types.LetterStatusApproved: {
		types.LetterStatusCompleted,
	},
	types.LetterStatusRejected: {
		types.LetterStatusGenerating,
	},
	types.LetterStatusFailed: {
		types.LetterStatusDraft,
	},
	types.LetterStatusCompleted: {},
}

// CanTransition reports whether from -> to is an edge in the graph.
func CanTransition(from, to types.LetterStatus) bool {
	for _, next := range allowedTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// NextStatuses returns the statuses reachable from the given status.
func NextStatuses(from types.LetterStatus) []types.LetterStatus {
	next := allowedTransitions[from]
	out := make([]types.LetterStatus, len(next))
	copy(out, next)
	return out
}
