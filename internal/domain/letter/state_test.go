package letter

import (
	"testing"

	"github.com/lettercounsel/lettercounsel/internal/types"
	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	allowed := []struct {
		from types.LetterStatus
		to   types.LetterStatus
	}{
		{types.LetterStatusDraft, types.LetterStatusGenerating},
		{types.LetterStatusGenerating, types.LetterStatusPendingReview},
		{types.LetterStatusGenerating, types.LetterStatusFailed},
		{types.LetterStatusPendingReview, types.LetterStatusUnderReview},
		{types.LetterStatusPendingReview, types.LetterStatusApproved},
		{types.LetterStatusPendingReview, types.LetterStatusRejected},
		{types.LetterStatusUnderReview, types.LetterStatusApproved},
		{types.LetterStatusUnderReview, types.LetterStatusRejected},
		{types.LetterStatusApproved, types.LetterStatusCompleted},
		{types.LetterStatusRejected, types.LetterStatusGenerating},
		{types.LetterStatusFailed, types.LetterStatusDraft},
	}

	allowedSet := make(map[[2]types.LetterStatus]bool)
	for _, edge := range allowed {
		allowedSet[[2]types.LetterStatus{edge.from, edge.to}] = true
	}

	// Every pair not in the edge list must be rejected.
	for _, from := range types.LetterStatuses {
		for _, to := range types.LetterStatuses {
			expected := allowedSet[[2]types.LetterStatus{from, to}]
			assert.Equal(t, expected, CanTransition(from, to),
				"transition %s -> %s", from, to)
		}
	}
}

func TestCanTransitionUnknownStatus(t *testing.T) {
	assert.False(t, CanTransition("bogus", types.LetterStatusGenerating))
	assert.False(t, CanTransition(types.LetterStatusDraft, "bogus"))
}

func TestNextStatuses(t *testing.T) {
	assert.ElementsMatch(t,
		[]types.LetterStatus{types.LetterStatusPendingReview, types.LetterStatusFailed},
		NextStatuses(types.LetterStatusGenerating))
	assert.Empty(t, NextStatuses(types.LetterStatusCompleted))

	// Mutating the returned slice must not affect the graph.
	next := NextStatuses(types.LetterStatusGenerating)
	next[0] = types.LetterStatusCompleted
	assert.False(t, CanTransition(types.LetterStatusGenerating, types.LetterStatusCompleted))
}

func TestTerminalAndDeletable(t *testing.T) {
	assert.True(t, types.LetterStatusCompleted.IsTerminal())
	assert.False(t, types.LetterStatusFailed.IsTerminal())

	assert.True(t, types.LetterStatusDraft.IsDeletable())
	assert.True(t, types.LetterStatusRejected.IsDeletable())
	assert.True(t, types.LetterStatusFailed.IsDeletable())
	assert.False(t, types.LetterStatusUnderReview.IsDeletable())
	assert.False(t, types.LetterStatusCompleted.IsDeletable())
}
