package service

import (
	"encoding/json"
	"errors"
	"fmt"

	"linkbio/pkg/ledger"
	"linkbio/pkg/storage"
	"linkbio/pkg/store"
)

// Journal payload shapes. These are part of the on-disk format; field
// names are stable.
type verifyProfilePayload struct {
	ProfileID uint64 `json:"profile_id"`
}

type linkIDPayload struct {
	LinkID uint64 `json:"link_id"`
}

type linkUpdatePayload struct {
	LinkID uint64           `json:"link_id"`
	Update store.LinkUpdate `json:"update"`
}

type linkStylePayload struct {
	LinkID uint64          `json:"link_id"`
	Style  store.LinkStyle `json:"style"`
}

type profileViewPayload struct {
	ProfileID uint64 `json:"profile_id"`
	Visitor   []byte `json:"visitor"`
}

type linkClickPayload struct {
	ProfileID uint64 `json:"profile_id"`
	LinkID    uint64 `json:"link_id"`
	Visitor   []byte `json:"visitor"`
}

// Replay rebuilds in-memory state from the journal. Each event is
// re-applied at its journaled height, so records keep the stamps they
// got live even across height gaps left by failed, unjournaled blocks.
// Events were only journaled after a successful apply, so a replayed
// event failing means the journal and the code disagree; that is
// surfaced, not skipped.
func Replay(l *ledger.Ledger, events []storage.Event) error {
	for _, e := range events {
		call, err := replayCall(e)
		if err != nil {
			return fmt.Errorf("event %d (%s): %w", e.Seq, e.Op, err)
		}
		r := l.ApplyAt(uint64(e.Height), []ledger.Tx{{Sender: store.Principal(e.Sender), Call: call}})[0]
		if r.Err != nil {
			return fmt.Errorf("replay event %d (%s): %w", e.Seq, e.Op, r.Err)
		}
	}
	return nil
}

func replayCall(e storage.Event) (ledger.Call, error) {
	switch e.Op {
	case OpCreateProfile:
		var p store.CreateProfileParams
		if err := json.Unmarshal(e.Payload, &p); err != nil {
			return nil, err
		}
		return func(st *store.Store, sender store.Principal) (any, error) {
			return st.CreateProfile(sender, p)
		}, nil
	case OpUpdateProfile:
		var upd store.ProfileUpdate
		if err := json.Unmarshal(e.Payload, &upd); err != nil {
			return nil, err
		}
		return func(st *store.Store, sender store.Principal) (any, error) {
			return true, st.UpdateProfile(sender, upd)
		}, nil
	case OpUpdateTheme:
		var theme store.Theme
		if err := json.Unmarshal(e.Payload, &theme); err != nil {
			return nil, err
		}
		return func(st *store.Store, sender store.Principal) (any, error) {
			return true, st.UpdateTheme(sender, theme)
		}, nil
	case OpVerifyProfile:
		var p verifyProfilePayload
		if err := json.Unmarshal(e.Payload, &p); err != nil {
			return nil, err
		}
		return func(st *store.Store, sender store.Principal) (any, error) {
			return true, st.VerifyProfile(sender, p.ProfileID)
		}, nil
	case OpCreateLink:
		var p store.CreateLinkParams
		if err := json.Unmarshal(e.Payload, &p); err != nil {
			return nil, err
		}
		return func(st *store.Store, sender store.Principal) (any, error) {
			return st.CreateLink(sender, p)
		}, nil
	case OpUpdateLink:
		var p linkUpdatePayload
		if err := json.Unmarshal(e.Payload, &p); err != nil {
			return nil, err
		}
		return func(st *store.Store, sender store.Principal) (any, error) {
			return true, st.UpdateLink(sender, p.LinkID, p.Update)
		}, nil
	case OpUpdateLinkStyle:
		var p linkStylePayload
		if err := json.Unmarshal(e.Payload, &p); err != nil {
			return nil, err
		}
		return func(st *store.Store, sender store.Principal) (any, error) {
			return true, st.UpdateLinkStyle(sender, p.LinkID, p.Style)
		}, nil
	case OpDeleteLink:
		var p linkIDPayload
		if err := json.Unmarshal(e.Payload, &p); err != nil {
			return nil, err
		}
		return func(st *store.Store, sender store.Principal) (any, error) {
			return true, st.DeleteLink(sender, p.LinkID)
		}, nil
	case OpIncrementClickCount:
		var p linkIDPayload
		if err := json.Unmarshal(e.Payload, &p); err != nil {
			return nil, err
		}
		return func(st *store.Store, _ store.Principal) (any, error) {
			return true, st.IncrementClickCount(p.LinkID)
		}, nil
	case OpRecordProfileView:
		var p profileViewPayload
		if err := json.Unmarshal(e.Payload, &p); err != nil {
			return nil, err
		}
		visitor, err := visitorFromBytes(p.Visitor)
		if err != nil {
			return nil, err
		}
		return func(st *store.Store, _ store.Principal) (any, error) {
			return true, st.RecordProfileView(p.ProfileID, visitor)
		}, nil
	case OpRecordLinkClick:
		var p linkClickPayload
		if err := json.Unmarshal(e.Payload, &p); err != nil {
			return nil, err
		}
		visitor, err := visitorFromBytes(p.Visitor)
		if err != nil {
			return nil, err
		}
		return func(st *store.Store, _ store.Principal) (any, error) {
			return true, st.RecordLinkClick(p.ProfileID, p.LinkID, visitor)
		}, nil
	default:
		return nil, errors.New("unknown operation")
	}
}

func visitorFromBytes(b []byte) (store.VisitorHash, error) {
	var h store.VisitorHash
	if len(b) != store.VisitorHashSize {
		return h, fmt.Errorf("visitor hash is %d bytes, want %d", len(b), store.VisitorHashSize)
	}
	copy(h[:], b)
	return h, nil
}
