package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func visitor(b byte) VisitorHash {
	var h VisitorHash
	h[0] = b
	return h
}

func TestRecordProfileView(t *testing.T) {
	height := uint64(2)
	s := newStoreWithProfile(t, &height)

	assert.NoError(t, s.RecordProfileView(1, visitor(1)))
	assert.NoError(t, s.RecordProfileView(1, visitor(1)))
	assert.NoError(t, s.RecordProfileView(1, visitor(2)))

	totals := s.GetProfileTotals(1)
	assert.Equal(t, uint64(3), totals.Views)
	assert.Equal(t, uint64(2), totals.Visitors)

	err := s.RecordProfileView(42, visitor(1))
	assert.ErrorIs(t, err, ErrProfileNotFound)
}

func TestRecordLinkClick(t *testing.T) {
	height := uint64(2)
	s := newStoreWithProfile(t, &height)

	_, err := s.CreateLink(wallet1, CreateLinkParams{Title: "My Website", URL: "https://example.com", Style: testStyle()})
	assert.NoError(t, err)

	assert.NoError(t, s.RecordLinkClick(1, 1, visitor(1)))
	assert.NoError(t, s.RecordLinkClick(1, 1, visitor(2)))

	totals := s.GetProfileTotals(1)
	assert.Equal(t, uint64(2), totals.Clicks)
	assert.Equal(t, uint64(2), totals.Visitors)

	// Analytics clicks are separate from the link's own counter.
	l, _ := s.GetLink(1)
	assert.Equal(t, uint64(0), l.ClickCount)

	err = s.RecordLinkClick(1, 42, visitor(1))
	assert.ErrorIs(t, err, ErrLinkNotFound)

	// A link id on a different profile is rejected.
	err = s.RecordLinkClick(99, 1, visitor(1))
	assert.ErrorIs(t, err, ErrLinkNotFound)
}

func TestGetProfileTotalsEmpty(t *testing.T) {
	height := uint64(2)
	s := newTestStore(&height)

	totals := s.GetProfileTotals(7)
	assert.Equal(t, uint64(7), totals.ProfileID)
	assert.Zero(t, totals.Views)
	assert.Zero(t, totals.Clicks)
	assert.Zero(t, totals.Visitors)
}
