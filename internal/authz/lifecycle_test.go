package authz

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vvvvvivekkk/health/internal/types"
)

func TestInitialStatus(t *testing.T) {
	assert.Equal(t, types.StatusPending, InitialStatus())
}

func TestCanTransition(t *testing.T) {
	// Pending can be decided either way.
	assert.True(t, CanTransition(types.StatusPending, types.StatusApproved))
	assert.True(t, CanTransition(types.StatusPending, types.StatusRejected))

	// Pending never jumps straight to a non-decision state.
	assert.False(t, CanTransition(types.StatusPending, types.StatusCompleted))
	assert.False(t, CanTransition(types.StatusPending, types.StatusCancelled))
	assert.False(t, CanTransition(types.StatusPending, types.StatusPending))

	// Terminal states accept no further role-driven transition —
	// re-approving an already-approved appointment is not a transition.
	for _, from := range []types.AppointmentStatus{
		types.StatusApproved,
		types.StatusRejected,
		types.StatusCompleted,
		types.StatusCancelled,
	} {
		assert.False(t, CanTransition(from, types.StatusApproved), "from %s", from)
		assert.False(t, CanTransition(from, types.StatusRejected), "from %s", from)
	}
}
