package services

import (
	"strings"
	"unicode/utf8"

	"github.com/dmitrijs2005/falcontrade/internal/common"
	"github.com/dmitrijs2005/falcontrade/internal/server/models"
)

// checkText rejects values PostgreSQL text columns cannot hold: invalid
// UTF-8 and NUL characters.
func checkText(field, value string) error {
	if !utf8.ValidString(value) {
		return common.Validationf("%s must be valid UTF-8", field)
	}
	if strings.IndexByte(value, 0) >= 0 {
		return common.Validationf("%s must not contain NUL characters", field)
	}
	return nil
}

// checkDetails applies checkText to every key and string value of the bag,
// including nested objects and arrays.
func checkDetails(d models.Details) error {
	for k, v := range d {
		if err := checkText("details key", k); err != nil {
			return err
		}
		if err := checkDetailValue(k, v); err != nil {
			return err
		}
	}
	return nil
}

func checkDetailValue(key string, v any) error {
	switch x := v.(type) {
	case string:
		return checkText("details."+key, x)
	case map[string]any:
		return checkDetails(x)
	case models.Details:
		return checkDetails(x)
	case []any:
		for _, item := range x {
			if err := checkDetailValue(key, item); err != nil {
				return err
			}
		}
	}
	return nil
}
