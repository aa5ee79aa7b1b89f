package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/falcontrade/internal/common"
	"github.com/dmitrijs2005/falcontrade/internal/dbx"
	"github.com/dmitrijs2005/falcontrade/internal/server/models"
	"github.com/dmitrijs2005/falcontrade/internal/server/repositories/accounts"
	"github.com/dmitrijs2005/falcontrade/internal/server/repositories/attachments"
	"github.com/dmitrijs2005/falcontrade/internal/server/repositories/listings"
	"github.com/dmitrijs2005/falcontrade/internal/server/repositories/messages"
	"github.com/dmitrijs2005/falcontrade/internal/server/repositories/revocations"
)

type errBoom struct{}

func (errBoom) Error() string { return "boom" }

// memStore mimics the PostgreSQL schema: unique emails, database-assigned
// timestamps, a global insertion sequence and cascading listing deletes.
type memStore struct {
	mu sync.Mutex

	clock time.Time
	tick  time.Duration
	seq   int64

	accounts    map[string]*models.Account
	listings    map[string]*listingRow
	messages    []*messageRow
	attachments []*attachmentRow
	revoked     map[string]time.Time

	// errs injects a failure for the named operation, e.g. "listings.Search".
	errs map[string]error

	// beforeCreateAccount runs under the lock ahead of the uniqueness check.
	beforeCreateAccount func(s *memStore)
}

type listingRow struct {
	l   models.Listing
	seq int64
}

type messageRow struct {
	m   models.Message
	seq int64
}

type attachmentRow struct {
	a   models.Attachment
	seq int64
}

func newMemStore() *memStore {
	return &memStore{
		clock:    time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		accounts: map[string]*models.Account{},
		listings: map[string]*listingRow{},
		revoked:  map[string]time.Time{},
		errs:     map[string]error{},
	}
}

func (s *memStore) fail(op string) error {
	return s.errs[op]
}

func (s *memStore) stamp() (time.Time, int64) {
	s.clock = s.clock.Add(s.tick)
	s.seq++
	return s.clock, s.seq
}

func (s *memStore) emailByID(id string) string {
	for _, a := range s.accounts {
		if a.ID == id {
			return a.Email
		}
	}
	return ""
}

type fakeRepoManager struct {
	s *memStore
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeRepoManager) Accounts(dbx.DBTX) accounts.Repository        { return &memAccounts{m.s} }
func (m *fakeRepoManager) Listings(dbx.DBTX) listings.Repository        { return &memListings{m.s} }
func (m *fakeRepoManager) Messages(dbx.DBTX) messages.Repository        { return &memMessages{m.s} }
func (m *fakeRepoManager) Attachments(dbx.DBTX) attachments.Repository  { return &memAttachments{m.s} }
func (m *fakeRepoManager) Revocations(dbx.DBTX) revocations.Repository  { return &memRevocations{m.s} }

type memAccounts struct{ s *memStore }

func (r *memAccounts) Create(ctx context.Context, a *models.Account) (*models.Account, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("accounts.Create"); err != nil {
		return nil, err
	}
	if hook := r.s.beforeCreateAccount; hook != nil {
		r.s.beforeCreateAccount = nil
		hook(r.s)
	}
	if _, ok := r.s.accounts[a.Email]; ok {
		return nil, common.ErrConflict
	}
	a.CreatedAt, _ = r.s.stamp()
	cp := *a
	r.s.accounts[a.Email] = &cp
	return a, nil
}

func (r *memAccounts) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("accounts.GetByEmail"); err != nil {
		return nil, err
	}
	a, ok := r.s.accounts[email]
	if !ok {
		return nil, common.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (r *memAccounts) SetAdmin(ctx context.Context, email string, isAdmin bool) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("accounts.SetAdmin"); err != nil {
		return err
	}
	a, ok := r.s.accounts[email]
	if !ok {
		return common.ErrNotFound
	}
	a.IsAdmin = isAdmin
	return nil
}

type memListings struct{ s *memStore }

func (r *memListings) Create(ctx context.Context, l *models.Listing) (*models.Listing, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("listings.Create"); err != nil {
		return nil, err
	}
	var seq int64
	l.CreatedAt, seq = r.s.stamp()
	r.s.listings[l.ID] = &listingRow{l: *l, seq: seq}
	return l, nil
}

func (r *memListings) GetByID(ctx context.Context, id string) (*models.Listing, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("listings.GetByID"); err != nil {
		return nil, err
	}
	row, ok := r.s.listings[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	cp := row.l
	cp.OwnerEmail = r.s.emailByID(cp.OwnerID)
	return &cp, nil
}

func (r *memListings) SetStatus(ctx context.Context, id string, status models.ListingStatus) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("listings.SetStatus"); err != nil {
		return err
	}
	row, ok := r.s.listings[id]
	if !ok {
		return common.ErrNotFound
	}
	row.l.Status = status
	return nil
}

func (r *memListings) Search(ctx context.Context, f models.ListingFilter) ([]*models.Listing, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("listings.Search"); err != nil {
		return nil, err
	}

	var rows []*listingRow
	for _, row := range r.s.listings {
		l := row.l
		if l.Status != models.ListingStatusPublished {
			continue
		}
		if f.Type != nil && l.Type != *f.Type {
			continue
		}
		if f.Category != "" && l.Category != f.Category {
			continue
		}
		if f.Text != "" {
			details, _ := json.Marshal(l.Details)
			needle := strings.ToLower(f.Text)
			if !strings.Contains(strings.ToLower(l.Title), needle) &&
				!strings.Contains(strings.ToLower(l.Category), needle) &&
				!strings.Contains(strings.ToLower(string(details)), needle) {
				continue
			}
		}
		rows = append(rows, row)
	}

	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].l.CreatedAt.Equal(rows[j].l.CreatedAt) {
			return rows[i].l.CreatedAt.After(rows[j].l.CreatedAt)
		}
		return rows[i].seq > rows[j].seq
	})

	result := make([]*models.Listing, 0)
	for i := f.Offset; i < len(rows) && len(result) < f.Limit; i++ {
		cp := rows[i].l
		cp.OwnerEmail = r.s.emailByID(cp.OwnerID)
		result = append(result, &cp)
	}
	return result, nil
}

func (r *memListings) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("listings.Delete"); err != nil {
		return err
	}
	if _, ok := r.s.listings[id]; !ok {
		return common.ErrNotFound
	}
	delete(r.s.listings, id)

	kept := r.s.messages[:0]
	for _, m := range r.s.messages {
		if m.m.ListingID != id {
			kept = append(kept, m)
		}
	}
	r.s.messages = kept

	keptA := r.s.attachments[:0]
	for _, a := range r.s.attachments {
		if a.a.ListingID != id {
			keptA = append(keptA, a)
		}
	}
	r.s.attachments = keptA
	return nil
}

type memMessages struct{ s *memStore }

func (r *memMessages) Create(ctx context.Context, m *models.Message) (*models.Message, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("messages.Create"); err != nil {
		return nil, err
	}
	if _, ok := r.s.listings[m.ListingID]; !ok {
		return nil, common.ErrNotFound
	}
	var seq int64
	m.CreatedAt, seq = r.s.stamp()
	r.s.messages = append(r.s.messages, &messageRow{m: *m, seq: seq})
	return m, nil
}

func (r *memMessages) ListByListing(ctx context.Context, listingID string) ([]*models.Message, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("messages.ListByListing"); err != nil {
		return nil, err
	}
	var rows []*messageRow
	for _, m := range r.s.messages {
		if m.m.ListingID == listingID {
			rows = append(rows, m)
		}
	}
	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].m.CreatedAt.Equal(rows[j].m.CreatedAt) {
			return rows[i].m.CreatedAt.Before(rows[j].m.CreatedAt)
		}
		return rows[i].seq < rows[j].seq
	})
	result := make([]*models.Message, 0, len(rows))
	for _, row := range rows {
		cp := row.m
		cp.SenderEmail = r.s.emailByID(cp.SenderID)
		result = append(result, &cp)
	}
	return result, nil
}

type memAttachments struct{ s *memStore }

func (r *memAttachments) Create(ctx context.Context, a *models.Attachment) (*models.Attachment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("attachments.Create"); err != nil {
		return nil, err
	}
	if _, ok := r.s.listings[a.ListingID]; !ok {
		return nil, common.ErrNotFound
	}
	var seq int64
	a.CreatedAt, seq = r.s.stamp()
	r.s.attachments = append(r.s.attachments, &attachmentRow{a: *a, seq: seq})
	return a, nil
}

func (r *memAttachments) ListByListing(ctx context.Context, listingID string) ([]*models.Attachment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("attachments.ListByListing"); err != nil {
		return nil, err
	}
	result := make([]*models.Attachment, 0)
	for _, row := range r.s.attachments {
		if row.a.ListingID == listingID {
			cp := row.a
			cp.UploaderEmail = r.s.emailByID(cp.UploaderID)
			result = append(result, &cp)
		}
	}
	return result, nil
}

type memRevocations struct{ s *memStore }

func (r *memRevocations) Revoke(ctx context.Context, tokenHash string, expiresAt time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("revocations.Revoke"); err != nil {
		return err
	}
	if _, ok := r.s.revoked[tokenHash]; !ok {
		r.s.revoked[tokenHash] = expiresAt
	}
	return nil
}

func (r *memRevocations) IsRevoked(ctx context.Context, tokenHash string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("revocations.IsRevoked"); err != nil {
		return false, err
	}
	_, ok := r.s.revoked[tokenHash]
	return ok, nil
}

func (r *memRevocations) PurgeExpired(ctx context.Context, before time.Time) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for k, exp := range r.s.revoked {
		if exp.Before(before) {
			delete(r.s.revoked, k)
			n++
		}
	}
	return n, nil
}
