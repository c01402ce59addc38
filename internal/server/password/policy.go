package password

import (
	"fmt"
	"regexp"

	"github.com/dmitrijs2005/gophauth/internal/common"
)

var (
	passwordPattern = regexp.MustCompile(`^[a-zA-Z0-9_]{6,20}$`)
	usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_]{4,15}$`)
)

// ValidatePassword enforces 6-20 characters of letters, digits and '_'.
func ValidatePassword(p string) error {
	if !passwordPattern.MatchString(p) {
		return fmt.Errorf("%w: password must be 6-20 characters of letters, digits or '_'", common.ErrorValidation)
	}
	return nil
}

// ValidateUsername enforces 4-15 characters of letters, digits and '_'.
func ValidateUsername(u string) error {
	if !usernamePattern.MatchString(u) {
		return fmt.Errorf("%w: username must be 4-15 characters of letters, digits or '_'", common.ErrorValidation)
	}
	return nil
}
