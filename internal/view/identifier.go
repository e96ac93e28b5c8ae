package view

import (
	"net/url"
	"strings"
)

// IdentifierFromURL extracts the client identifier from a page URL
// ("https://host/consumption?id=abc"), a bare query string ("id=abc" or
// "?id=abc"), or returns raw unchanged when it is already an identifier.
// It returns "" when no identifier can be found.
func IdentifierFromURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}

	switch {
	case strings.Contains(raw, "://"), strings.HasPrefix(raw, "/"):
		u, err := url.Parse(raw)
		if err != nil {
			return ""
		}
		return strings.TrimSpace(u.Query().Get("id"))
	case strings.Contains(raw, "?"):
		_, query, _ := strings.Cut(raw, "?")
		return fromQuery(query)
	case strings.Contains(raw, "="):
		return fromQuery(raw)
	}
	return raw
}

func fromQuery(query string) string {
	values, err := url.ParseQuery(query)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(values.Get("id"))
}
