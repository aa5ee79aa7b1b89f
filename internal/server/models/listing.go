package models

import (
	"fmt"
	"time"
)

// ListingType is the closed RFQ/OFFER discriminator.
type ListingType int

const (
	ListingTypeRFQ ListingType = iota + 1
	ListingTypeOffer
)

// String returns the wire form of t.
func (t ListingType) String() string {
	switch t {
	case ListingTypeRFQ:
		return "RFQ"
	case ListingTypeOffer:
		return "OFFER"
	default:
		return fmt.Sprintf("ListingType(%d)", int(t))
	}
}

// Valid reports whether t is one of the declared variants.
func (t ListingType) Valid() bool {
	return t == ListingTypeRFQ || t == ListingTypeOffer
}

// ParseListingType maps the wire form to a ListingType. Matching is exact.
func ParseListingType(s string) (ListingType, bool) {
	switch s {
	case "RFQ":
		return ListingTypeRFQ, true
	case "OFFER":
		return ListingTypeOffer, true
	default:
		return 0, false
	}
}

// ListingStatus is the listing lifecycle state. Draft is initial, Published terminal.
type ListingStatus int

const (
	ListingStatusDraft ListingStatus = iota + 1
	ListingStatusPublished
)

func (s ListingStatus) String() string {
	switch s {
	case ListingStatusDraft:
		return "draft"
	case ListingStatusPublished:
		return "published"
	default:
		return fmt.Sprintf("ListingStatus(%d)", int(s))
	}
}

// ParseListingStatus maps the stored form to a ListingStatus.
func ParseListingStatus(s string) (ListingStatus, bool) {
	switch s {
	case "draft":
		return ListingStatusDraft, true
	case "published":
		return ListingStatusPublished, true
	default:
		return 0, false
	}
}

// Details is the open attribute bag attached to a listing. Values are kept
// exactly as decoded from JSON (strings, json.Number, booleans, nested values).
type Details map[string]any

// Listing is a trade intent owned by the account that created it.
type Listing struct {
	ID         string
	Type       ListingType
	Category   string
	Title      string
	Details    Details
	Quantity   string
	Incoterm   string
	Country    string
	City       string
	Status     ListingStatus
	OwnerID    string
	OwnerEmail string
	CreatedAt  time.Time
}

// Published reports whether the listing is visible through public read paths.
func (l *Listing) Published() bool {
	return l.Status == ListingStatusPublished
}

// ListingFilter narrows a discovery query. Nil/empty fields do not filter.
type ListingFilter struct {
	Type     *ListingType
	Category string
	Text     string
	Limit    int
	Offset   int
}
