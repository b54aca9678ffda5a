package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"linkbio/pkg/cache"
	"linkbio/pkg/ledger"
	"linkbio/pkg/logging"
	"linkbio/pkg/storage"
	"linkbio/pkg/store"

	"golang.org/x/crypto/blake2b"
)

// Journaled operation names. Stable values: the journal is replayed
// across releases.
const (
	OpCreateProfile       = "create-profile"
	OpUpdateProfile       = "update-profile"
	OpUpdateTheme         = "update-theme"
	OpVerifyProfile       = "verify-profile"
	OpCreateLink          = "create-link"
	OpUpdateLink          = "update-link"
	OpUpdateLinkStyle     = "update-link-style"
	OpDeleteLink          = "delete-link"
	OpIncrementClickCount = "increment-click-count"
	OpRecordProfileView   = "record-profile-view"
	OpRecordLinkClick     = "record-link-click"
)

const profileCacheTTL = 5 * time.Minute

// BioService fronts the record store: it serializes operations through
// the ledger, journals every applied mutation, and keeps the public
// profile cache coherent.
type BioService struct {
	ledger  *ledger.Ledger
	journal storage.EventStorage
	cache   cache.ProfileCacheInterface
	logger  *logging.Logger
}

func NewBioService(l *ledger.Ledger, journal storage.EventStorage, cache cache.ProfileCacheInterface, logger *logging.Logger) *BioService {
	return &BioService{
		ledger:  l,
		journal: journal,
		cache:   cache,
		logger:  logger,
	}
}

// submit applies one operation through the ledger and, on success,
// journals it. A journal failure after a successful apply is surfaced:
// the in-memory state is ahead of the journal and the caller must
// retry or alert.
func (s *BioService) submit(ctx context.Context, sender store.Principal, op string, payload any, call ledger.Call) (any, error) {
	r := s.ledger.Submit(sender, call)
	s.logOutcome(ctx, op, sender, r.Err)
	if r.Err != nil {
		return nil, r.Err
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", op, err)
	}
	event := &storage.Event{
		Height:  int64(r.Height),
		Sender:  string(sender),
		Op:      op,
		Payload: data,
	}
	if err := s.journal.Append(ctx, event); err != nil {
		s.logger.Error(ctx, "journal append failed", "op", op, "height", r.Height, "error", err)
		return nil, fmt.Errorf("journal %s: %w", op, err)
	}
	return r.Value, nil
}

func (s *BioService) logOutcome(ctx context.Context, op string, sender store.Principal, err error) {
	var code uint
	var storeErr *store.Error
	if errors.As(err, &storeErr) {
		code = storeErr.Code
	}
	s.logger.LogStoreOperation(ctx, op, string(sender), err == nil, code)
}

func (s *BioService) CreateProfile(ctx context.Context, caller store.Principal, params store.CreateProfileParams) (uint64, error) {
	v, err := s.submit(ctx, caller, OpCreateProfile, params, func(st *store.Store, sender store.Principal) (any, error) {
		return st.CreateProfile(sender, params)
	})
	if err != nil {
		return 0, err
	}
	s.invalidate(ctx, params.Username)
	return v.(uint64), nil
}

func (s *BioService) UpdateProfile(ctx context.Context, caller store.Principal, upd store.ProfileUpdate) error {
	_, err := s.submit(ctx, caller, OpUpdateProfile, upd, func(st *store.Store, sender store.Principal) (any, error) {
		return true, st.UpdateProfile(sender, upd)
	})
	if err != nil {
		return err
	}
	s.invalidateByOwner(ctx, caller)
	return nil
}

func (s *BioService) UpdateTheme(ctx context.Context, caller store.Principal, theme store.Theme) error {
	_, err := s.submit(ctx, caller, OpUpdateTheme, theme, func(st *store.Store, sender store.Principal) (any, error) {
		return true, st.UpdateTheme(sender, theme)
	})
	if err != nil {
		return err
	}
	s.invalidateByOwner(ctx, caller)
	return nil
}

func (s *BioService) VerifyProfile(ctx context.Context, caller store.Principal, profileID uint64) error {
	payload := verifyProfilePayload{ProfileID: profileID}
	_, err := s.submit(ctx, caller, OpVerifyProfile, payload, func(st *store.Store, sender store.Principal) (any, error) {
		return true, st.VerifyProfile(sender, profileID)
	})
	if err != nil {
		return err
	}
	s.invalidateByProfileID(ctx, profileID)
	return nil
}

func (s *BioService) CreateLink(ctx context.Context, caller store.Principal, params store.CreateLinkParams) (uint64, error) {
	v, err := s.submit(ctx, caller, OpCreateLink, params, func(st *store.Store, sender store.Principal) (any, error) {
		return st.CreateLink(sender, params)
	})
	if err != nil {
		return 0, err
	}
	s.invalidateByOwner(ctx, caller)
	return v.(uint64), nil
}

func (s *BioService) UpdateLink(ctx context.Context, caller store.Principal, linkID uint64, upd store.LinkUpdate) error {
	payload := linkUpdatePayload{LinkID: linkID, Update: upd}
	_, err := s.submit(ctx, caller, OpUpdateLink, payload, func(st *store.Store, sender store.Principal) (any, error) {
		return true, st.UpdateLink(sender, linkID, upd)
	})
	if err != nil {
		return err
	}
	s.invalidateByOwner(ctx, caller)
	return nil
}

func (s *BioService) UpdateLinkStyle(ctx context.Context, caller store.Principal, linkID uint64, style store.LinkStyle) error {
	payload := linkStylePayload{LinkID: linkID, Style: style}
	_, err := s.submit(ctx, caller, OpUpdateLinkStyle, payload, func(st *store.Store, sender store.Principal) (any, error) {
		return true, st.UpdateLinkStyle(sender, linkID, style)
	})
	if err != nil {
		return err
	}
	s.invalidateByOwner(ctx, caller)
	return nil
}

func (s *BioService) DeleteLink(ctx context.Context, caller store.Principal, linkID uint64) error {
	payload := linkIDPayload{LinkID: linkID}
	_, err := s.submit(ctx, caller, OpDeleteLink, payload, func(st *store.Store, sender store.Principal) (any, error) {
		return true, st.DeleteLink(sender, linkID)
	})
	if err != nil {
		return err
	}
	s.invalidateByOwner(ctx, caller)
	return nil
}

// IncrementClickCount is open to any caller, including anonymous
// visitors following a link.
func (s *BioService) IncrementClickCount(ctx context.Context, linkID uint64) error {
	payload := linkIDPayload{LinkID: linkID}
	_, err := s.submit(ctx, "", OpIncrementClickCount, payload, func(st *store.Store, _ store.Principal) (any, error) {
		return true, st.IncrementClickCount(linkID)
	})
	return err
}

// RecordProfileView counts a profile view for analytics. visitorID is
// any stable visitor identifier; it is hashed before it reaches the
// store.
func (s *BioService) RecordProfileView(ctx context.Context, profileID uint64, visitorID string) error {
	visitor := VisitorHash(visitorID)
	payload := profileViewPayload{ProfileID: profileID, Visitor: visitor[:]}
	_, err := s.submit(ctx, "", OpRecordProfileView, payload, func(st *store.Store, _ store.Principal) (any, error) {
		return true, st.RecordProfileView(profileID, visitor)
	})
	return err
}

// RecordLinkClick counts an analytics click for a link on a profile.
func (s *BioService) RecordLinkClick(ctx context.Context, profileID, linkID uint64, visitorID string) error {
	visitor := VisitorHash(visitorID)
	payload := linkClickPayload{ProfileID: profileID, LinkID: linkID, Visitor: visitor[:]}
	_, err := s.submit(ctx, "", OpRecordLinkClick, payload, func(st *store.Store, _ store.Principal) (any, error) {
		return true, st.RecordLinkClick(profileID, linkID, visitor)
	})
	return err
}

// GetPublicProfile serves the visitor-facing view of a profile,
// cache-first. Unknown usernames are cached negatively for a short
// period.
func (s *BioService) GetPublicProfile(ctx context.Context, username string) (*cache.CachedProfile, error) {
	cached, err := s.cache.Get(ctx, username)
	if err == nil && cached != nil {
		return cached, nil
	}

	var view cache.CachedProfile
	s.ledger.Read(func(st *store.Store) {
		p, ok := st.GetProfileByUsername(username)
		if !ok {
			view.Missing = true
			return
		}
		view.Profile = &p
		for _, l := range st.GetLinksByProfile(p.ID) {
			if l.IsActive {
				view.Links = append(view.Links, l)
			}
		}
	})

	if err := s.cache.Set(ctx, username, &view, profileCacheTTL); err != nil {
		s.logger.Warn(ctx, "cache set failed", "username", username, "error", err)
	}
	return &view, nil
}

func (s *BioService) GetLink(ctx context.Context, linkID uint64) (store.Link, bool) {
	var (
		link store.Link
		ok   bool
	)
	s.ledger.Read(func(st *store.Store) {
		link, ok = st.GetLink(linkID)
	})
	return link, ok
}

func (s *BioService) GetProfile(ctx context.Context, profileID uint64) (store.Profile, bool) {
	var (
		p  store.Profile
		ok bool
	)
	s.ledger.Read(func(st *store.Store) {
		p, ok = st.GetProfile(profileID)
	})
	return p, ok
}

func (s *BioService) GetProfileByOwner(ctx context.Context, owner store.Principal) (store.Profile, bool) {
	var (
		p  store.Profile
		ok bool
	)
	s.ledger.Read(func(st *store.Store) {
		p, ok = st.GetProfileByOwner(owner)
	})
	return p, ok
}

func (s *BioService) GetLinksByProfile(ctx context.Context, profileID uint64) []store.Link {
	var links []store.Link
	s.ledger.Read(func(st *store.Store) {
		links = st.GetLinksByProfile(profileID)
	})
	return links
}

func (s *BioService) IsUsernameAvailable(ctx context.Context, username string) bool {
	var available bool
	s.ledger.Read(func(st *store.Store) {
		available = st.IsUsernameAvailable(username)
	})
	return available
}

func (s *BioService) GetProfileTotals(ctx context.Context, profileID uint64) store.ProfileTotals {
	var totals store.ProfileTotals
	s.ledger.Read(func(st *store.Store) {
		totals = st.GetProfileTotals(profileID)
	})
	return totals
}

// VisitorHash anonymizes a visitor identifier for analytics. blake2b
// keyed with nothing, truncated to the store's fingerprint size.
func VisitorHash(visitorID string) store.VisitorHash {
	sum := blake2b.Sum256([]byte(visitorID))
	var h store.VisitorHash
	copy(h[:], sum[:store.VisitorHashSize])
	return h
}

func (s *BioService) invalidate(ctx context.Context, username string) {
	if err := s.cache.Delete(ctx, username); err != nil {
		s.logger.Warn(ctx, "cache invalidation failed", "username", username, "error", err)
	}
}

func (s *BioService) invalidateByOwner(ctx context.Context, owner store.Principal) {
	var username string
	s.ledger.Read(func(st *store.Store) {
		if p, ok := st.GetProfileByOwner(owner); ok {
			username = p.Username
		}
	})
	if username != "" {
		s.invalidate(ctx, username)
	}
}

func (s *BioService) invalidateByProfileID(ctx context.Context, profileID uint64) {
	var username string
	s.ledger.Read(func(st *store.Store) {
		if p, ok := st.GetProfile(profileID); ok {
			username = p.Username
		}
	})
	if username != "" {
		s.invalidate(ctx, username)
	}
}
