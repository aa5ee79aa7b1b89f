package auth

import (
	"net/mail"
	"strings"

	"github.com/dmitrijs2005/falcontrade/internal/common"
)

const maxEmailLength = 254

// ValidateEmail accepts a bare address with a dotted domain. Display names,
// angle brackets and surrounding whitespace are rejected; case is preserved.
func ValidateEmail(email string) error {
	if email == "" || len(email) > maxEmailLength {
		return common.Validationf("invalid email address")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email || addr.Name != "" {
		return common.Validationf("invalid email address")
	}
	at := strings.LastIndexByte(email, '@')
	domain := email[at+1:]
	if !strings.Contains(domain, ".") || strings.HasPrefix(domain, ".") || strings.HasSuffix(domain, ".") {
		return common.Validationf("invalid email address")
	}
	return nil
}
