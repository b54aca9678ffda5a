package store

// VisitorHashSize is the length of the anonymized visitor fingerprint
// used for unique-visitor tracking.
const VisitorHashSize = 16

// VisitorHash anonymizes one visitor for analytics purposes.
type VisitorHash [VisitorHashSize]byte

// RecordProfileView counts one view of a profile. Open to any caller.
func (s *Store) RecordProfileView(profileID uint64, visitor VisitorHash) error {
	if _, ok := s.profiles[profileID]; !ok {
		return ErrProfileNotFound
	}
	t := s.profileTotals(profileID)
	t.Views++
	s.recordVisitor(profileID, visitor)
	return nil
}

// RecordLinkClick counts one analytics click for a link on a profile.
// Open to any caller. The link must exist and belong to the profile.
func (s *Store) RecordLinkClick(profileID, linkID uint64, visitor VisitorHash) error {
	l, ok := s.links[linkID]
	if !ok || l.ProfileID != profileID {
		return ErrLinkNotFound
	}
	t := s.profileTotals(profileID)
	t.Clicks++
	s.recordVisitor(profileID, visitor)
	return nil
}

// GetProfileTotals returns the aggregate analytics for a profile.
// Absent profiles report zero totals.
func (s *Store) GetProfileTotals(profileID uint64) ProfileTotals {
	t, ok := s.totals[profileID]
	if !ok {
		return ProfileTotals{ProfileID: profileID}
	}
	out := *t
	out.Visitors = uint64(len(s.visitors[profileID]))
	return out
}

func (s *Store) profileTotals(profileID uint64) *ProfileTotals {
	t, ok := s.totals[profileID]
	if !ok {
		t = &ProfileTotals{ProfileID: profileID}
		s.totals[profileID] = t
	}
	return t
}

func (s *Store) recordVisitor(profileID uint64, visitor VisitorHash) {
	set, ok := s.visitors[profileID]
	if !ok {
		set = make(map[VisitorHash]struct{})
		s.visitors[profileID] = set
	}
	set[visitor] = struct{}{}
}
