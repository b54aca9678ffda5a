package store

// CreateProfileParams carries the caller-supplied fields for a new
// profile. Optional fields are nil when absent.
type CreateProfileParams struct {
	Username    string  `json:"username"`
	DisplayName string  `json:"display_name"`
	Bio         *string `json:"bio,omitempty"`
	AvatarURL   *string `json:"avatar_url,omitempty"`
}

// ProfileUpdate is a merge patch: nil fields keep their prior values.
type ProfileUpdate struct {
	DisplayName *string `json:"display_name,omitempty"`
	Bio         *string `json:"bio,omitempty"`
	AvatarURL   *string `json:"avatar_url,omitempty"`
}

// CreateProfile allocates the next profile id for caller. It fails
// with ErrProfileExists if the username is taken or the caller already
// owns a profile; both checks happen before any mutation.
func (s *Store) CreateProfile(caller Principal, p CreateProfileParams) (uint64, error) {
	if _, taken := s.profileByName[p.Username]; taken {
		return 0, ErrProfileExists
	}
	if _, exists := s.profileByOwner[caller]; exists {
		return 0, ErrProfileExists
	}

	s.nextProfileID++
	id := s.nextProfileID
	now := s.height()
	s.profiles[id] = &Profile{
		ID:          id,
		Owner:       caller,
		Username:    p.Username,
		DisplayName: p.DisplayName,
		Bio:         p.Bio,
		AvatarURL:   p.AvatarURL,
		IsVerified:  false,
		Theme:       DefaultTheme(),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	s.profileByName[p.Username] = id
	s.profileByOwner[caller] = id
	return id, nil
}

// UpdateProfile applies a merge patch to the caller's own profile.
func (s *Store) UpdateProfile(caller Principal, upd ProfileUpdate) error {
	p := s.ownProfile(caller)
	if p == nil {
		return ErrProfileNotFound
	}
	if upd.DisplayName != nil {
		p.DisplayName = *upd.DisplayName
	}
	if upd.Bio != nil {
		p.Bio = upd.Bio
	}
	if upd.AvatarURL != nil {
		p.AvatarURL = upd.AvatarURL
	}
	p.UpdatedAt = s.height()
	return nil
}

// UpdateTheme replaces the caller's profile theme as a whole unit.
func (s *Store) UpdateTheme(caller Principal, theme Theme) error {
	p := s.ownProfile(caller)
	if p == nil {
		return ErrProfileNotFound
	}
	p.Theme = theme
	p.UpdatedAt = s.height()
	return nil
}

// VerifyProfile marks a profile verified. Only the admin identity may
// call it.
func (s *Store) VerifyProfile(caller Principal, profileID uint64) error {
	if caller != s.admin {
		return ErrNotAuthorized
	}
	p, ok := s.profiles[profileID]
	if !ok {
		return ErrProfileNotFound
	}
	p.IsVerified = true
	p.UpdatedAt = s.height()
	return nil
}

// GetProfile returns a copy of the profile with the given id.
func (s *Store) GetProfile(id uint64) (Profile, bool) {
	p, ok := s.profiles[id]
	if !ok {
		return Profile{}, false
	}
	return p.clone(), true
}

// GetProfileByUsername looks a profile up by its unique username.
// Comparison is case-sensitive.
func (s *Store) GetProfileByUsername(username string) (Profile, bool) {
	id, ok := s.profileByName[username]
	if !ok {
		return Profile{}, false
	}
	return s.profiles[id].clone(), true
}

// GetProfileByOwner looks a profile up by its owner identity.
func (s *Store) GetProfileByOwner(owner Principal) (Profile, bool) {
	id, ok := s.profileByOwner[owner]
	if !ok {
		return Profile{}, false
	}
	return s.profiles[id].clone(), true
}

// IsUsernameAvailable reports whether no profile currently holds the
// username.
func (s *Store) IsUsernameAvailable(username string) bool {
	_, taken := s.profileByName[username]
	return !taken
}

func (s *Store) ownProfile(caller Principal) *Profile {
	id, ok := s.profileByOwner[caller]
	if !ok {
		return nil
	}
	return s.profiles[id]
}
