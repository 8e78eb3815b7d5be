package chat

import (
	"encoding/base64"
	"errors"
	"strings"
	"unicode"
)

var errInvalidBase64 = errors.New("invalid base64")

// EncodeBase64 encodes the UTF-8 bytes of s with the standard padded alphabet.
func EncodeBase64(s string) string {
	return base64.StdEncoding.EncodeToString([]byte(s))
}

// DecodeBase64 accepts the standard and URL-safe alphabets, with or without
// padding, ignoring whitespace. Bytes that are not valid UTF-8 come back as
// U+FFFD.
func DecodeBase64(s string) (string, error) {
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		switch r {
		case '-':
			return '+'
		case '_':
			return '/'
		}
		return r
	}, s)

	trimmed := strings.TrimRight(cleaned, "=")
	if len(cleaned)-len(trimmed) > 2 {
		return "", errInvalidBase64
	}
	for _, r := range trimmed {
		if !isStdBase64(r) {
			return "", errInvalidBase64
		}
	}
	if len(trimmed)%4 == 1 {
		return "", errInvalidBase64
	}

	raw, err := base64.RawStdEncoding.DecodeString(trimmed)
	if err != nil {
		return "", errInvalidBase64
	}
	return strings.ToValidUTF8(string(raw), "\uFFFD"), nil
}

func isStdBase64(r rune) bool {
	return (r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '+' || r == '/'
}
