// Package memory is an in-process entitlement.Store. Transactions are
// serialized by a single mutex and their writes become visible only when fn
// returns nil.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"examplehub_backend/internal/entitlement"
	"examplehub_backend/pkg/plan"
)

type favoriteKey struct {
	userID    uint
	exampleID uint
}

type state struct {
	accounts  map[uint]entitlement.Account
	favorites map[favoriteKey]entitlement.Favorite
	comments  []entitlement.Comment
	downloads []entitlement.Download
	nextID    uint
}

func (s *state) clone() *state {
	c := &state{
		accounts:  make(map[uint]entitlement.Account, len(s.accounts)),
		favorites: make(map[favoriteKey]entitlement.Favorite, len(s.favorites)),
		comments:  append([]entitlement.Comment(nil), s.comments...),
		downloads: append([]entitlement.Download(nil), s.downloads...),
		nextID:    s.nextID,
	}
	for id, acc := range s.accounts {
		if acc.LastResetDate != nil {
			t := *acc.LastResetDate
			acc.LastResetDate = &t
		}
		c.accounts[id] = acc
	}
	for k, v := range s.favorites {
		c.favorites[k] = v
	}
	return c
}

type Store struct {
	mu sync.Mutex
	st *state

	conflictMu sync.Mutex
	conflicts  int
}

func New() *Store {
	return &Store{st: &state{
		accounts:  make(map[uint]entitlement.Account),
		favorites: make(map[favoriteKey]entitlement.Favorite),
	}}
}

// PutAccount inserts or replaces an account outside any transaction.
func (s *Store) PutAccount(acc entitlement.Account) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.accounts[acc.UserID] = acc
}

// Account returns the committed state of an account.
func (s *Store) Account(userID uint) (entitlement.Account, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	acc, ok := s.st.accounts[userID]
	return acc, ok
}

// SetPlan changes a user's plan, as a completed checkout would.
func (s *Store) SetPlan(userID uint, p plan.Plan) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if acc, ok := s.st.accounts[userID]; ok {
		acc.Plan = p
		s.st.accounts[userID] = acc
	}
}

func (s *Store) Favorites(userID uint) []entitlement.Favorite {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []entitlement.Favorite
	for k, f := range s.st.favorites {
		if k.userID == userID {
			out = append(out, f)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ExampleID < out[j].ExampleID })
	return out
}

func (s *Store) Comments(userID uint) []entitlement.Comment {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []entitlement.Comment
	for _, c := range s.st.comments {
		if c.UserID == userID {
			out = append(out, c)
		}
	}
	return out
}

// AddComment seeds a committed comment, e.g. one posted in the past.
func (s *Store) AddComment(c entitlement.Comment) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.nextID++
	c.ID = s.st.nextID
	s.st.comments = append(s.st.comments, c)
}

func (s *Store) Downloads(userID uint) []entitlement.Download {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []entitlement.Download
	for _, d := range s.st.downloads {
		if d.UserID == userID {
			out = append(out, d)
		}
	}
	return out
}

// FailNextCommits makes the next n transactions fail with
// entitlement.ErrConflict at commit time.
func (s *Store) FailNextCommits(n int) {
	s.conflictMu.Lock()
	defer s.conflictMu.Unlock()
	s.conflicts = n
}

func (s *Store) takeConflict() bool {
	s.conflictMu.Lock()
	defer s.conflictMu.Unlock()
	if s.conflicts > 0 {
		s.conflicts--
		return true
	}
	return false
}

func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, tx entitlement.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	work := s.st.clone()
	if err := fn(ctx, &tx{st: work}); err != nil {
		return err
	}
	if s.takeConflict() {
		return entitlement.ErrConflict
	}
	s.st = work
	return nil
}

type tx struct {
	st *state
}

func (t *tx) LockAccount(_ context.Context, userID uint) (entitlement.Account, error) {
	acc, ok := t.st.accounts[userID]
	if !ok {
		return entitlement.Account{}, entitlement.ErrAccountNotFound
	}
	return acc, nil
}

func (t *tx) SaveCounters(_ context.Context, acc entitlement.Account) error {
	cur, ok := t.st.accounts[acc.UserID]
	if !ok {
		return entitlement.ErrAccountNotFound
	}
	cur.DownloadsThisMonth = acc.DownloadsThisMonth
	cur.CommentsThisMonth = acc.CommentsThisMonth
	cur.DownloadCount = acc.DownloadCount
	cur.LastResetDate = acc.LastResetDate
	t.st.accounts[acc.UserID] = cur
	return nil
}

func (t *tx) CountFavorites(_ context.Context, userID uint) (int64, error) {
	var n int64
	for k := range t.st.favorites {
		if k.userID == userID {
			n++
		}
	}
	return n, nil
}

func (t *tx) HasFavorite(_ context.Context, userID, exampleID uint) (bool, error) {
	_, ok := t.st.favorites[favoriteKey{userID, exampleID}]
	return ok, nil
}

func (t *tx) CreateFavorite(_ context.Context, fav entitlement.Favorite) error {
	k := favoriteKey{fav.UserID, fav.ExampleID}
	if _, ok := t.st.favorites[k]; ok {
		return entitlement.ErrDuplicate
	}
	t.st.favorites[k] = fav
	return nil
}

func (t *tx) CountCommentsSince(_ context.Context, userID uint, since time.Time) (int64, error) {
	var n int64
	for _, c := range t.st.comments {
		if c.UserID == userID && !c.CreatedAt.Before(since) {
			n++
		}
	}
	return n, nil
}

func (t *tx) CreateComment(_ context.Context, c *entitlement.Comment) error {
	t.st.nextID++
	c.ID = t.st.nextID
	t.st.comments = append(t.st.comments, *c)
	return nil
}

func (t *tx) RecordDownload(_ context.Context, d entitlement.Download) error {
	t.st.downloads = append(t.st.downloads, d)
	return nil
}
