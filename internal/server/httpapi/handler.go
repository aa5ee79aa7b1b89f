// Package httpapi is the JSON request layer of the marketplace. It maps routes
// to service operations, extracts bearer tokens and translates the error
// taxonomy from internal/common into HTTP status codes.
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/dmitrijs2005/falcontrade/internal/logging"
	"github.com/dmitrijs2005/falcontrade/internal/server/models"
	"github.com/dmitrijs2005/falcontrade/internal/server/services"
)

type Accounts interface {
	Register(ctx context.Context, email, password string) (*models.Account, error)
	Login(ctx context.Context, email, password string) (string, error)
	Logout(ctx context.Context, token string) error
}

type Gate interface {
	RequireAuthenticated(ctx context.Context, token string) (*models.Account, error)
	RequireAdmin(ctx context.Context, token string) (*models.Account, error)
}

type Listings interface {
	Create(ctx context.Context, owner *models.Account, in services.NewListing) (*models.Listing, error)
	Publish(ctx context.Context, caller *models.Account, id string) error
	GetPublished(ctx context.Context, id string) (*models.Listing, error)
	Delete(ctx context.Context, caller *models.Account, id string) error
}

type Discovery interface {
	Search(ctx context.Context, q services.SearchQuery) ([]*models.Listing, error)
}

type Messages interface {
	Add(ctx context.Context, sender *models.Account, listingID, body string) (*models.Message, error)
	List(ctx context.Context, listingID string) ([]*models.Message, error)
}

type Attachments interface {
	RequestUpload(ctx context.Context, uploader *models.Account, listingID, fileName string) (*models.Attachment, error)
	List(ctx context.Context, listingID string) ([]*models.Attachment, error)
}

// Recorder receives request and domain event observations.
type Recorder interface {
	ObserveRequest(method, route string, code int, elapsed time.Duration)
	AuthEvent(event string, ok bool)
	ListingEvent(event string)
	Handler() http.Handler
}

// Deps lists the collaborators of Handler. All fields are required.
type Deps struct {
	Accounts    Accounts
	Gate        Gate
	Listings    Listings
	Discovery   Discovery
	Messages    Messages
	Attachments Attachments
	Metrics     Recorder
	Logger      logging.Logger
	Version     string
}

// Handler serves the HTTP API. Build it with NewHandler and mount Routes().
type Handler struct {
	accounts    Accounts
	gate        Gate
	listings    Listings
	discovery   Discovery
	messages    Messages
	attachments Attachments
	metrics     Recorder
	logger      logging.Logger
	version     string
	startedAt   time.Time
}

func NewHandler(d Deps) *Handler {
	return &Handler{
		accounts:    d.Accounts,
		gate:        d.Gate,
		listings:    d.Listings,
		discovery:   d.Discovery,
		messages:    d.Messages,
		attachments: d.Attachments,
		metrics:     d.Metrics,
		logger:      d.Logger.With("module", "http_api"),
		version:     d.Version,
		startedAt:   time.Now().UTC(),
	}
}

// authenticated resolves the bearer token of r. On failure the error response
// has already been written and ok is false.
func (h *Handler) authenticated(w http.ResponseWriter, r *http.Request) (*models.Account, bool) {
	account, err := h.gate.RequireAuthenticated(r.Context(), bearerToken(r))
	if err != nil {
		h.fail(w, r, err)
		return nil, false
	}
	return account, true
}

func (h *Handler) admin(w http.ResponseWriter, r *http.Request) (*models.Account, bool) {
	account, err := h.gate.RequireAdmin(r.Context(), bearerToken(r))
	if err != nil {
		h.fail(w, r, err)
		return nil, false
	}
	return account, true
}
