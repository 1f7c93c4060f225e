package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// namespaceRegex matches class names usable as a selector prefix.
var namespaceRegex = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_-]*$`)

// ValidateNamespace validates the stylesheet class prefix.
//
// The namespace becomes the leading part of every selector, so it must be a
// plain CSS identifier: a letter or underscore followed by letters, digits,
// underscores or hyphens.
func ValidateNamespace(ns string) error {
	if ns == "" {
		return New(ErrCodeInvalidConfig, "namespace cannot be empty")
	}
	if len(ns) > 64 {
		return New(ErrCodeInvalidConfig, "namespace too long (max 64 characters)")
	}
	if !namespaceRegex.MatchString(ns) {
		return New(ErrCodeInvalidConfig, "invalid namespace: %q", ns)
	}
	return nil
}

// ValidateImageURL validates the sprite URL written into the stylesheet.
// It rejects characters that would terminate the unquoted url() token.
func ValidateImageURL(u string) error {
	if u == "" {
		return New(ErrCodeInvalidConfig, "image url cannot be empty")
	}
	for _, r := range u {
		if unicode.IsControl(r) || unicode.IsSpace(r) {
			return New(ErrCodeInvalidConfig, "image url contains whitespace or control characters")
		}
	}
	if strings.ContainsAny(u, `"'()\`) {
		return New(ErrCodeInvalidConfig, "image url contains invalid characters: %q", u)
	}
	return nil
}

// ValidateExtension validates an extension reported by a registry.
// Extensions must start with "." and contain no path separators.
func ValidateExtension(ext string) error {
	if len(ext) < 2 || ext[0] != '.' {
		return New(ErrCodeInvalidInput, "extension must start with '.': %q", ext)
	}
	if strings.ContainsAny(ext, "/\\\x00") {
		return New(ErrCodeInvalidInput, "extension contains invalid characters: %q", ext)
	}
	for _, r := range ext {
		if unicode.IsControl(r) || unicode.IsSpace(r) {
			return New(ErrCodeInvalidInput, "extension contains whitespace or control characters: %q", ext)
		}
	}
	return nil
}
