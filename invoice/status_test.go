package invoice

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/satheeshds/facturation/models"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to string
		want     bool
	}{
		{models.StatusDraft, models.StatusSent, true},
		{models.StatusSent, models.StatusPaid, true},
		{models.StatusPaid, models.StatusSent, true},
		{models.StatusDraft, models.StatusPaid, false},
		{models.StatusSent, models.StatusDraft, false},
		{models.StatusPaid, models.StatusDraft, false},
		{models.StatusPaid, models.StatusPaid, false},
		{models.StatusDraft, models.StatusDraft, false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, CanTransition(tt.from, tt.to), "%s → %s", tt.from, tt.to)
	}
}

func TestTransitionRoundTrip(t *testing.T) {
	inv := &models.Invoice{Status: models.StatusSent}

	require.NoError(t, Transition(inv, models.StatusPaid))
	assert.Equal(t, models.StatusPaid, inv.Status)

	// Toggling back is the manual correction path.
	require.NoError(t, Transition(inv, models.StatusSent))
	assert.Equal(t, models.StatusSent, inv.Status)
}

func TestTransitionRejectsDraftToPaid(t *testing.T) {
	inv := &models.Invoice{Status: models.StatusDraft}
	err := Transition(inv, models.StatusPaid)
	require.ErrorIs(t, err, ErrInvalidTransition)
	assert.Equal(t, models.StatusDraft, inv.Status, "a failed transition must not mutate the invoice")
}

func TestMutableAndDeletable(t *testing.T) {
	assert.True(t, Mutable(models.StatusDraft))
	assert.True(t, Deletable(models.StatusDraft))
	for _, s := range []string{models.StatusSent, models.StatusPaid} {
		assert.False(t, Mutable(s), s)
		assert.False(t, Deletable(s), s)
	}
}
