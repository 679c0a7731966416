package checkout

import (
	"strings"

	"shopbot/internal/store"
)

// ParseClientName splits a free-form full name into its parts. It accepts
// "Last First" and "Last First Patronymic".
func ParseClientName(text string) (store.Client, bool) {
	parts := strings.Fields(text)
	switch len(parts) {
	case 2:
		return store.Client{LastName: parts[0], FirstName: parts[1]}, true
	case 3:
		return store.Client{LastName: parts[0], FirstName: parts[1], Patronymic: parts[2]}, true
	default:
		return store.Client{}, false
	}
}

// ValidPhone accepts digits with an optional leading plus, 10 to 15 digits
// long, ignoring spaces, dashes and parentheses.
func ValidPhone(text string) bool {
	cleaned := strings.Map(func(r rune) rune {
		switch r {
		case ' ', '-', '(', ')':
			return -1
		}
		return r
	}, strings.TrimSpace(text))

	cleaned = strings.TrimPrefix(cleaned, "+")
	if len(cleaned) < 10 || len(cleaned) > 15 {
		return false
	}
	for _, r := range cleaned {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
