package services

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/falcontrade/internal/logging"
	"github.com/dmitrijs2005/falcontrade/internal/server/auth"
	"github.com/dmitrijs2005/falcontrade/internal/server/models"
	"github.com/dmitrijs2005/falcontrade/internal/server/revocation"
	"golang.org/x/crypto/bcrypt"
)

const testPassword = "Strong1!"

type fixture struct {
	store     *memStore
	rm        *fakeRepoManager
	txmock    sqlmock.Sqlmock
	signer    *auth.TokenSigner
	tokens    *TokenService
	accounts  *AccountService
	gate      *Gate
	listings  *ListingService
	discovery *DiscoveryService
	messages  *MessageService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	store := newMemStore()
	rm := &fakeRepoManager{s: store}

	// Only transactions reach the database; repositories are in memory.
	db, txmock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	signer := auth.NewTokenSigner([]byte("test-secret"), 2*time.Hour)
	tokens := NewTokenService(nil, rm, signer, revocation.NewPostgresRegistry(nil, rm))

	return &fixture{
		store:     store,
		rm:        rm,
		txmock:    txmock,
		signer:    signer,
		tokens:    tokens,
		accounts:  NewAccountService(db, rm, auth.NewPasswordHasher(bcrypt.MinCost), tokens, logging.Nop()),
		gate:      NewGate(tokens),
		listings:  NewListingService(nil, rm),
		discovery: NewDiscoveryService(nil, rm),
		messages:  NewMessageService(nil, rm),
	}
}

func (f *fixture) account(t *testing.T, email string, admin bool) *models.Account {
	t.Helper()
	a, err := f.accounts.Register(context.Background(), email, testPassword)
	if err != nil {
		t.Fatalf("Register(%q) error: %v", email, err)
	}
	if admin {
		if err := f.rm.Accounts(nil).SetAdmin(context.Background(), email, true); err != nil {
			t.Fatalf("SetAdmin error: %v", err)
		}
		a.IsAdmin = true
	}
	return a
}

func (f *fixture) login(t *testing.T, email string) string {
	t.Helper()
	tok, err := f.accounts.Login(context.Background(), email, testPassword)
	if err != nil {
		t.Fatalf("Login(%q) error: %v", email, err)
	}
	return tok
}

func (f *fixture) listing(t *testing.T, owner *models.Account, in NewListing) *models.Listing {
	t.Helper()
	l, err := f.listings.Create(context.Background(), owner, in)
	if err != nil {
		t.Fatalf("Create listing error: %v", err)
	}
	return l
}

func (f *fixture) publish(t *testing.T, admin *models.Account, id string) {
	t.Helper()
	if err := f.listings.Publish(context.Background(), admin, id); err != nil {
		t.Fatalf("Publish error: %v", err)
	}
}
