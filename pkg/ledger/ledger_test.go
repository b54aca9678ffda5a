package ledger

import (
	"sync"
	"testing"

	"linkbio/pkg/store"

	"github.com/stretchr/testify/assert"
)

const (
	admin   = store.Principal("ST1ADMIN")
	wallet1 = store.Principal("ST1WALLET1")
	wallet2 = store.Principal("ST2WALLET2")
)

func createProfileCall(username, displayName string) Call {
	return func(s *store.Store, sender store.Principal) (any, error) {
		return s.CreateProfile(sender, store.CreateProfileParams{Username: username, DisplayName: displayName})
	}
}

func TestGenesisHeight(t *testing.T) {
	l := New(admin)
	assert.Equal(t, uint64(1), l.Height())
}

func TestFirstBlockHeight(t *testing.T) {
	l := New(admin)

	receipts := l.Apply([]Tx{{Sender: wallet1, Call: createProfileCall("testuser", "Test User")}})
	assert.Len(t, receipts, 1)
	assert.NoError(t, receipts[0].Err)
	assert.Equal(t, any(uint64(1)), receipts[0].Value)
	assert.Equal(t, uint64(2), l.Height())

	// Records are stamped with the block they were applied in.
	l.Read(func(s *store.Store) {
		p, ok := s.GetProfile(1)
		assert.True(t, ok)
		assert.Equal(t, uint64(2), p.CreatedAt)
	})
}

func TestBatchOrderFirstWins(t *testing.T) {
	l := New(admin)

	receipts := l.Apply([]Tx{
		{Sender: wallet1, Call: createProfileCall("alice", "Alice A")},
		{Sender: wallet2, Call: createProfileCall("alice", "Alice B")},
	})

	assert.NoError(t, receipts[0].Err)
	assert.Equal(t, any(uint64(1)), receipts[0].Value)
	assert.ErrorIs(t, receipts[1].Err, store.ErrProfileExists)

	l.Read(func(s *store.Store) {
		p, ok := s.GetProfileByUsername("alice")
		assert.True(t, ok)
		assert.Equal(t, "Alice A", p.DisplayName)
		assert.Equal(t, wallet1, p.Owner)
	})
}

func TestEachBlockAdvancesHeight(t *testing.T) {
	l := New(admin)

	l.Apply([]Tx{{Sender: wallet1, Call: createProfileCall("user1", "One")}})
	l.Apply([]Tx{{Sender: wallet2, Call: createProfileCall("user2", "Two")}})
	assert.Equal(t, uint64(3), l.Height())

	l.Read(func(s *store.Store) {
		p1, _ := s.GetProfileByUsername("user1")
		p2, _ := s.GetProfileByUsername("user2")
		assert.Equal(t, uint64(2), p1.CreatedAt)
		assert.Equal(t, uint64(3), p2.CreatedAt)
	})
}

func TestReceiptCarriesBlockHeight(t *testing.T) {
	l := New(admin)

	r := l.Submit(wallet1, createProfileCall("testuser", "Test User"))
	assert.NoError(t, r.Err)
	assert.Equal(t, uint64(2), r.Height)

	// A failed block still advances the height, and its receipts say so.
	receipts := l.Apply([]Tx{{Sender: wallet1, Call: createProfileCall("other", "Other")}})
	assert.ErrorIs(t, receipts[0].Err, store.ErrProfileExists)
	assert.Equal(t, uint64(3), receipts[0].Height)

	r = l.Submit(wallet2, createProfileCall("seconduser", "Second User"))
	assert.NoError(t, r.Err)
	assert.Equal(t, uint64(4), r.Height)
}

func TestApplyAtRestoresHeight(t *testing.T) {
	l := New(admin)

	// Replay a block at a height beyond the next contiguous one, as
	// happens when failed blocks left gaps in the journal.
	receipts := l.ApplyAt(5, []Tx{{Sender: wallet1, Call: createProfileCall("testuser", "Test User")}})
	assert.NoError(t, receipts[0].Err)
	assert.Equal(t, uint64(5), receipts[0].Height)
	assert.Equal(t, uint64(5), l.Height())

	l.Read(func(s *store.Store) {
		p, ok := s.GetProfile(1)
		assert.True(t, ok)
		assert.Equal(t, uint64(5), p.CreatedAt)
	})
}

func TestFailedTxLeavesNoState(t *testing.T) {
	l := New(admin)

	r := l.Submit(wallet2, func(s *store.Store, sender store.Principal) (any, error) {
		return true, s.VerifyProfile(sender, 1)
	})
	assert.ErrorIs(t, r.Err, store.ErrNotAuthorized)

	l.Read(func(s *store.Store) {
		_, ok := s.GetProfile(1)
		assert.False(t, ok)
	})
}

func TestConcurrentSubmits(t *testing.T) {
	l := New(admin)
	r := l.Submit(wallet1, createProfileCall("testuser", "Test User"))
	assert.NoError(t, r.Err)

	r = l.Submit(wallet1, func(s *store.Store, sender store.Principal) (any, error) {
		return s.CreateLink(sender, store.CreateLinkParams{Title: "Link", URL: "https://example.com"})
	})
	assert.NoError(t, r.Err)

	const n = 50
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			r := l.Submit("", func(s *store.Store, _ store.Principal) (any, error) {
				return true, s.IncrementClickCount(1)
			})
			assert.NoError(t, r.Err)
		}()
	}
	wg.Wait()

	l.Read(func(s *store.Store) {
		link, ok := s.GetLink(1)
		assert.True(t, ok)
		assert.Equal(t, uint64(n), link.ClickCount)
	})
}
