package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dmitrijs2005/falcontrade/internal/common"
	"github.com/dmitrijs2005/falcontrade/internal/logging"
	"github.com/dmitrijs2005/falcontrade/internal/server/metrics"
	"github.com/dmitrijs2005/falcontrade/internal/server/models"
	"github.com/dmitrijs2005/falcontrade/internal/server/services"
	"github.com/stretchr/testify/require"
)

var createdAt = time.Date(2025, 3, 4, 5, 6, 7, 0, time.UTC)

type fakeGate struct {
	sessions map[string]*models.Account
}

func (g *fakeGate) RequireAuthenticated(_ context.Context, token string) (*models.Account, error) {
	if token == "" {
		return nil, common.ErrUnauthenticated
	}
	a, ok := g.sessions[token]
	if !ok {
		return nil, common.ErrInvalidToken
	}
	return a, nil
}

func (g *fakeGate) RequireAdmin(ctx context.Context, token string) (*models.Account, error) {
	a, err := g.RequireAuthenticated(ctx, token)
	if err != nil {
		return nil, err
	}
	if !a.IsAdmin {
		return nil, common.ErrForbidden
	}
	return a, nil
}

type fakeAccounts struct {
	registerErr error
	loginToken  string
	loginErr    error
	logoutErr   error

	gotEmail    string
	gotPassword string
	loggedOut   []string
}

func (f *fakeAccounts) Register(_ context.Context, email, password string) (*models.Account, error) {
	f.gotEmail, f.gotPassword = email, password
	if f.registerErr != nil {
		return nil, f.registerErr
	}
	return &models.Account{ID: "acc-new", Email: email}, nil
}

func (f *fakeAccounts) Login(_ context.Context, email, password string) (string, error) {
	f.gotEmail, f.gotPassword = email, password
	return f.loginToken, f.loginErr
}

func (f *fakeAccounts) Logout(_ context.Context, token string) error {
	f.loggedOut = append(f.loggedOut, token)
	return f.logoutErr
}

type fakeListings struct {
	created    *services.NewListing
	getErr     error
	get        *models.Listing
	publishErr error
	published  []string
	deleted    []string
	panicOnGet bool
}

func (f *fakeListings) Create(_ context.Context, owner *models.Account, in services.NewListing) (*models.Listing, error) {
	lt, ok := models.ParseListingType(in.Type)
	if !ok {
		return nil, common.Validationf("type must be RFQ or OFFER")
	}
	f.created = &in
	return &models.Listing{
		ID:         "lst-1",
		Type:       lt,
		Category:   in.Category,
		Title:      in.Title,
		Details:    in.Details,
		Quantity:   in.Quantity,
		Incoterm:   in.Incoterm,
		Country:    in.Country,
		City:       in.City,
		Status:     models.ListingStatusDraft,
		OwnerID:    owner.ID,
		OwnerEmail: owner.Email,
		CreatedAt:  createdAt,
	}, nil
}

func (f *fakeListings) Publish(_ context.Context, _ *models.Account, id string) error {
	f.published = append(f.published, id)
	return f.publishErr
}

func (f *fakeListings) GetPublished(_ context.Context, id string) (*models.Listing, error) {
	if f.panicOnGet {
		panic("boom")
	}
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.get, nil
}

func (f *fakeListings) Delete(_ context.Context, _ *models.Account, id string) error {
	f.deleted = append(f.deleted, id)
	return nil
}

type fakeDiscovery struct {
	got    services.SearchQuery
	result []*models.Listing
	err    error
}

func (f *fakeDiscovery) Search(_ context.Context, q services.SearchQuery) ([]*models.Listing, error) {
	f.got = q
	return f.result, f.err
}

type fakeMessages struct {
	threads map[string][]*models.Message
}

func (f *fakeMessages) Add(_ context.Context, sender *models.Account, listingID, body string) (*models.Message, error) {
	thread, ok := f.threads[listingID]
	if !ok {
		return nil, common.ErrNotFound
	}
	m := &models.Message{
		ID:          "msg-" + body,
		ListingID:   listingID,
		SenderID:    sender.ID,
		SenderEmail: sender.Email,
		Body:        body,
		CreatedAt:   createdAt.Add(time.Duration(len(thread)) * time.Second),
	}
	f.threads[listingID] = append(thread, m)
	return m, nil
}

func (f *fakeMessages) List(_ context.Context, listingID string) ([]*models.Message, error) {
	thread, ok := f.threads[listingID]
	if !ok {
		return nil, common.ErrNotFound
	}
	return thread, nil
}

type fakeAttachments struct {
	items map[string][]*models.Attachment
}

func (f *fakeAttachments) RequestUpload(_ context.Context, uploader *models.Account, listingID, fileName string) (*models.Attachment, error) {
	items, ok := f.items[listingID]
	if !ok {
		return nil, common.ErrNotFound
	}
	if fileName == "" {
		return nil, common.Validationf("file name is required")
	}
	a := &models.Attachment{
		ID:            "att-1",
		ListingID:     listingID,
		UploaderID:    uploader.ID,
		UploaderEmail: uploader.Email,
		FileName:      fileName,
		StorageKey:    "listings/" + listingID + "/k1",
		CreatedAt:     createdAt,
		URL:           "https://s3.local/put/k1",
	}
	f.items[listingID] = append(items, a)
	return a, nil
}

func (f *fakeAttachments) List(_ context.Context, listingID string) ([]*models.Attachment, error) {
	items, ok := f.items[listingID]
	if !ok {
		return nil, common.ErrNotFound
	}
	return items, nil
}

const (
	traderToken = "trader-token"
	adminToken  = "admin-token"
)

type testAPI struct {
	accounts    *fakeAccounts
	listings    *fakeListings
	discovery   *fakeDiscovery
	messages    *fakeMessages
	attachments *fakeAttachments
	router      http.Handler
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()

	api := &testAPI{
		accounts:    &fakeAccounts{},
		listings:    &fakeListings{},
		discovery:   &fakeDiscovery{},
		messages:    &fakeMessages{threads: map[string][]*models.Message{"lst-1": nil}},
		attachments: &fakeAttachments{items: map[string][]*models.Attachment{"lst-1": nil}},
	}
	gate := &fakeGate{sessions: map[string]*models.Account{
		traderToken: {ID: "acc-trader", Email: "trader@example.com"},
		adminToken:  {ID: "acc-admin", Email: "admin@example.com", IsAdmin: true},
	}}

	h := NewHandler(Deps{
		Accounts:    api.accounts,
		Gate:        gate,
		Listings:    api.listings,
		Discovery:   api.discovery,
		Messages:    api.messages,
		Attachments: api.attachments,
		Metrics:     metrics.New(),
		Logger:      logging.Nop(),
		Version:     "v1.0",
	})
	api.router = h.Routes()
	return api
}

// do sends a request through the router. body is JSON encoded unless it is
// already an io.Reader.
func (a *testAPI) do(t *testing.T, method, target, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var r io.Reader
	switch b := body.(type) {
	case nil:
	case io.Reader:
		r = b
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		r = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, target, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), "body: %s", rec.Body.String())
	return v
}
