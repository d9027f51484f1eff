// Package validation provides validation for site identifiers.
// Site names become part of generated S3 bucket names, so the rules follow
// the strictest common subset of DNS labels and S3 bucket naming.
package validation

// MaxSiteNameLength keeps generated bucket names under the S3 63-char limit
// after the engine appends its random suffix.
const MaxSiteNameLength = 40

// isLower returns true if the byte is a lowercase ASCII letter.
func isLower(b byte) bool {
	return b >= 'a' && b <= 'z'
}

// isNum returns true if the byte is an ASCII digit.
func isNum(b byte) bool {
	return b >= '0' && b <= '9'
}

// ValidateSiteName validates a site identifier.
// Names must start with a lowercase letter and contain only lowercase
// letters, digits, or hyphens, with no trailing hyphen.
func ValidateSiteName(name string) error {
	if name == "" {
		return NewValidationError("id", name, "site name must not be empty")
	}
	if len(name) > MaxSiteNameLength {
		return NewValidationError("id", name, "site name is too long")
	}
	if !isLower(name[0]) {
		return NewValidationError("id", name, "site name must start with a lowercase letter")
	}
	if name[len(name)-1] == '-' {
		return NewValidationError("id", name, "site name must not end with a hyphen")
	}
	for _, b := range []byte(name) {
		if !isLower(b) && !isNum(b) && b != '-' {
			return NewValidationError("id", name, "site names can only contain lowercase letters, digits, or hyphens")
		}
	}
	return nil
}
