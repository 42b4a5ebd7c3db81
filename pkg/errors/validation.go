package errors

import (
	"strings"
	"unicode"
)

const (
	maxNodeIDLength = 256
	maxPathLength   = 500
)

// ValidateNodeID checks a node id supplied by a client. Ids follow arbitrary
// biological naming schemes, so only emptiness, length and control
// characters are rejected.
func ValidateNodeID(id string) error {
	switch {
	case id == "":
		return New(ErrCodeInvalidInput, "node id cannot be empty")
	case len(id) > maxNodeIDLength:
		return New(ErrCodeInvalidInput, "node id too long (max %d characters)", maxNodeIDLength)
	case strings.IndexFunc(id, unicode.IsControl) >= 0:
		return New(ErrCodeInvalidInput, "node id contains control characters")
	}
	return nil
}

// ValidateEdgeKey checks an edge key "source;target".
func ValidateEdgeKey(key string) error {
	src, tgt, ok := strings.Cut(key, ";")
	if !ok {
		return New(ErrCodeInvalidInput, "edge key %q must have the form source;target", key)
	}
	if err := ValidateNodeID(src); err != nil {
		return err
	}
	return ValidateNodeID(tgt)
}

// ValidateTarget checks a focus target: an edge key when it contains ';',
// a node id otherwise.
func ValidateTarget(s string) error {
	if strings.Contains(s, ";") {
		return ValidateEdgeKey(s)
	}
	return ValidateNodeID(s)
}

// ValidatePath checks an artifact name. Names are relative slash paths that
// stay inside their destination.
func ValidatePath(path string) error {
	switch {
	case path == "":
		return New(ErrCodeInvalidPath, "path cannot be empty")
	case len(path) > maxPathLength:
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	case strings.IndexFunc(path, unicode.IsControl) >= 0:
		return New(ErrCodeInvalidPath, "path contains invalid characters")
	case strings.HasPrefix(path, "/"):
		return New(ErrCodeInvalidPath, "path must be relative")
	case strings.Contains(path, ".."):
		return New(ErrCodeInvalidPath, "path cannot contain ..")
	case strings.Contains(path, "\\"):
		return New(ErrCodeInvalidPath, "path cannot contain backslashes")
	}
	return nil
}

// ValidateURL checks that rawURL uses one of schemes (http and https when
// none are given).
func ValidateURL(rawURL string, schemes ...string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}
	if len(schemes) == 0 {
		schemes = []string{"http", "https"}
	}
	for _, s := range schemes {
		if strings.HasPrefix(rawURL, s+"://") {
			return nil
		}
	}
	return New(ErrCodeInvalidInput, "URL %q must use one of the schemes: %s", rawURL, strings.Join(schemes, ", "))
}
