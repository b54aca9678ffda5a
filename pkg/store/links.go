package store

import "sort"

// CreateLinkParams carries the caller-supplied fields for a new link.
// The link is attached to the caller's own profile.
type CreateLinkParams struct {
	Title       string    `json:"title"`
	URL         string    `json:"url"`
	Description *string   `json:"description,omitempty"`
	Icon        *string   `json:"icon,omitempty"`
	Order       uint      `json:"order"`
	Style       LinkStyle `json:"style"`
}

// LinkUpdate is a merge patch: nil fields keep their prior values.
type LinkUpdate struct {
	Title       *string `json:"title,omitempty"`
	URL         *string `json:"url,omitempty"`
	Description *string `json:"description,omitempty"`
	Icon        *string `json:"icon,omitempty"`
	IsActive    *bool   `json:"is_active,omitempty"`
}

// CreateLink allocates the next link id for the caller's profile.
// Fails with ErrProfileNotFound if the caller has no profile, and with
// ErrCapacityExceeded once the profile holds the maximum link count.
func (s *Store) CreateLink(caller Principal, p CreateLinkParams) (uint64, error) {
	profile := s.ownProfile(caller)
	if profile == nil {
		return 0, ErrProfileNotFound
	}
	if len(s.linksByProfile[profile.ID]) >= s.maxLinks {
		return 0, ErrCapacityExceeded
	}

	s.nextLinkID++
	id := s.nextLinkID
	s.links[id] = &Link{
		ID:          id,
		ProfileID:   profile.ID,
		Owner:       caller,
		Title:       p.Title,
		URL:         p.URL,
		Description: p.Description,
		Icon:        p.Icon,
		IsActive:    true,
		ClickCount:  0,
		Order:       p.Order,
		Style:       p.Style,
		CreatedAt:   s.height(),
	}
	s.linksByProfile[profile.ID] = append(s.linksByProfile[profile.ID], id)
	return id, nil
}

// UpdateLink applies a merge patch to a link. Only the link's owner
// may call it.
func (s *Store) UpdateLink(caller Principal, linkID uint64, upd LinkUpdate) error {
	l, ok := s.links[linkID]
	if !ok {
		return ErrLinkNotFound
	}
	if l.Owner != caller {
		return ErrNotLinkOwner
	}
	if upd.Title != nil {
		l.Title = *upd.Title
	}
	if upd.URL != nil {
		l.URL = *upd.URL
	}
	if upd.Description != nil {
		l.Description = upd.Description
	}
	if upd.Icon != nil {
		l.Icon = upd.Icon
	}
	if upd.IsActive != nil {
		l.IsActive = *upd.IsActive
	}
	return nil
}

// UpdateLinkStyle replaces a link's style as a whole unit. Owner-gated.
func (s *Store) UpdateLinkStyle(caller Principal, linkID uint64, style LinkStyle) error {
	l, ok := s.links[linkID]
	if !ok {
		return ErrLinkNotFound
	}
	if l.Owner != caller {
		return ErrNotLinkOwner
	}
	l.Style = style
	return nil
}

// DeleteLink removes a link. The id is retired and never reassigned.
func (s *Store) DeleteLink(caller Principal, linkID uint64) error {
	l, ok := s.links[linkID]
	if !ok {
		return ErrLinkNotFound
	}
	if l.Owner != caller {
		return ErrNotLinkOwner
	}
	delete(s.links, linkID)
	ids := s.linksByProfile[l.ProfileID]
	for i, id := range ids {
		if id == linkID {
			s.linksByProfile[l.ProfileID] = append(ids[:i], ids[i+1:]...)
			break
		}
	}
	return nil
}

// IncrementClickCount bumps a link's click counter by one. The
// operation is deliberately open: any caller may record a click, so
// visitors don't need to be the owner.
func (s *Store) IncrementClickCount(linkID uint64) error {
	l, ok := s.links[linkID]
	if !ok {
		return ErrLinkNotFound
	}
	l.ClickCount++
	return nil
}

// GetLink returns a copy of the link with the given id.
func (s *Store) GetLink(id uint64) (Link, bool) {
	l, ok := s.links[id]
	if !ok {
		return Link{}, false
	}
	return l.clone(), true
}

// GetLinksByProfile returns copies of a profile's links sorted by
// display order, then id.
func (s *Store) GetLinksByProfile(profileID uint64) []Link {
	ids := s.linksByProfile[profileID]
	out := make([]Link, 0, len(ids))
	for _, id := range ids {
		out = append(out, s.links[id].clone())
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Order != out[j].Order {
			return out[i].Order < out[j].Order
		}
		return out[i].ID < out[j].ID
	})
	return out
}
