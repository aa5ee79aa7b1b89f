package services

import (
	"github.com/dmitrijs2005/falcontrade/internal/common"
	"github.com/google/uuid"
)

// parseID normalizes a caller supplied listing id. Anything that is not a
// UUID cannot name a stored row and is reported as common.ErrNotFound.
func parseID(id string) (string, error) {
	u, err := uuid.Parse(id)
	if err != nil {
		return "", common.ErrNotFound
	}
	return u.String(), nil
}
