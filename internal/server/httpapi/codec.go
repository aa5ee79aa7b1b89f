package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/falcontrade/internal/common"
	"github.com/dmitrijs2005/falcontrade/internal/server/models"
)

const maxBodyBytes = 1 << 20

type okResponse struct {
	OK bool `json:"ok"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

type meResponse struct {
	Email   string `json:"email"`
	IsAdmin bool   `json:"is_admin"`
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type listingRequest struct {
	Type     string         `json:"type"`
	Category string         `json:"category"`
	Title    string         `json:"title"`
	Details  models.Details `json:"details"`
	Quantity string         `json:"quantity"`
	Incoterm string         `json:"incoterm"`
	Country  string         `json:"country"`
	City     string         `json:"city"`
}

type listingResponse struct {
	ID         string         `json:"id"`
	Type       string         `json:"type"`
	Category   string         `json:"category"`
	Title      string         `json:"title"`
	Details    models.Details `json:"details"`
	Quantity   string         `json:"quantity"`
	Incoterm   string         `json:"incoterm"`
	Country    string         `json:"country"`
	City       string         `json:"city"`
	Status     string         `json:"status"`
	CreatedAt  time.Time      `json:"created_at"`
	OwnerEmail string         `json:"owner_email"`
}

type messageRequest struct {
	Body string `json:"body"`
}

type messageResponse struct {
	ID          string    `json:"id"`
	Body        string    `json:"body"`
	CreatedAt   time.Time `json:"created_at"`
	SenderEmail string    `json:"sender_email"`
}

type attachmentRequest struct {
	FileName string `json:"file_name"`
}

type attachmentResponse struct {
	ID            string    `json:"id"`
	FileName      string    `json:"file_name"`
	StorageKey    string    `json:"storage_key"`
	URL           string    `json:"url"`
	CreatedAt     time.Time `json:"created_at"`
	UploaderEmail string    `json:"uploader_email"`
}

func toListingResponse(l *models.Listing) listingResponse {
	details := l.Details
	if details == nil {
		details = models.Details{}
	}
	return listingResponse{
		ID:         l.ID,
		Type:       l.Type.String(),
		Category:   l.Category,
		Title:      l.Title,
		Details:    details,
		Quantity:   l.Quantity,
		Incoterm:   l.Incoterm,
		Country:    l.Country,
		City:       l.City,
		Status:     l.Status.String(),
		CreatedAt:  l.CreatedAt.UTC(),
		OwnerEmail: l.OwnerEmail,
	}
}

func toListingResponses(items []*models.Listing) []listingResponse {
	out := make([]listingResponse, 0, len(items))
	for _, l := range items {
		out = append(out, toListingResponse(l))
	}
	return out
}

func toMessageResponse(m *models.Message) messageResponse {
	return messageResponse{
		ID:          m.ID,
		Body:        m.Body,
		CreatedAt:   m.CreatedAt.UTC(),
		SenderEmail: m.SenderEmail,
	}
}

func toAttachmentResponse(a *models.Attachment) attachmentResponse {
	return attachmentResponse{
		ID:            a.ID,
		FileName:      a.FileName,
		StorageKey:    a.StorageKey,
		URL:           a.URL,
		CreatedAt:     a.CreatedAt.UTC(),
		UploaderEmail: a.UploaderEmail,
	}
}

// decodeJSON reads a single JSON object from the body. Numbers are kept as
// json.Number so listing details round trip verbatim.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			return common.Validationf("request body must be at most %d bytes", tooLarge.Limit)
		case errors.Is(err, io.EOF):
			return common.Validationf("request body is required")
		default:
			return common.Validationf("malformed JSON body")
		}
	}
	return nil
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// bearerToken returns the token of an "Authorization: Bearer <token>" header,
// or "" when the header is absent or uses another scheme.
func bearerToken(r *http.Request) string {
	scheme, token, ok := strings.Cut(r.Header.Get(common.AuthorizationHeaderName), " ")
	if !ok || !strings.EqualFold(scheme, common.BearerScheme) {
		return ""
	}
	return strings.TrimSpace(token)
}
