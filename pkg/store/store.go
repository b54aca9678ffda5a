package store

// HeightFunc reports the current ledger block height. The store reads
// it when stamping records and never advances it.
type HeightFunc func() uint64

// Store is the record store behind the profile and links contracts. It
// owns every record; callers hold only the integer ids returned at
// creation. The store itself is not safe for concurrent use — the
// ledger serializes all access to it.
type Store struct {
	height HeightFunc
	admin  Principal

	profiles       map[uint64]*Profile
	profileByName  map[string]uint64
	profileByOwner map[Principal]uint64
	nextProfileID  uint64

	links          map[uint64]*Link
	linksByProfile map[uint64][]uint64
	nextLinkID     uint64
	maxLinks       int

	totals   map[uint64]*ProfileTotals
	visitors map[uint64]map[VisitorHash]struct{}
}

// Option configures a Store at construction time.
type Option func(*Store)

// WithMaxLinksPerProfile overrides the per-profile link cap.
func WithMaxLinksPerProfile(n int) Option {
	return func(s *Store) { s.maxLinks = n }
}

// DefaultMaxLinksPerProfile bounds how many links one profile may hold.
const DefaultMaxLinksPerProfile = 50

// New builds an empty store. admin is the single identity allowed to
// verify profiles.
func New(height HeightFunc, admin Principal, opts ...Option) *Store {
	s := &Store{
		height:         height,
		admin:          admin,
		profiles:       make(map[uint64]*Profile),
		profileByName:  make(map[string]uint64),
		profileByOwner: make(map[Principal]uint64),
		links:          make(map[uint64]*Link),
		linksByProfile: make(map[uint64][]uint64),
		totals:         make(map[uint64]*ProfileTotals),
		visitors:       make(map[uint64]map[VisitorHash]struct{}),
		maxLinks:       DefaultMaxLinksPerProfile,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Admin returns the configured admin identity.
func (s *Store) Admin() Principal { return s.admin }
