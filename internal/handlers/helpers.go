package handlers

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/billsplit/backend/internal/apperr"
)

func parseUUID(value string) (uuid.UUID, error) {
	return uuid.Parse(value)
}

// pathID parses a route parameter. A malformed id cannot name an existing
// row, so it is reported as not found with the given message.
func pathID(value, notFound string) (uuid.UUID, error) {
	id, err := parseUUID(value)
	if err != nil {
		return uuid.Nil, apperr.NotFound(notFound)
	}
	return id, nil
}

var dateLayouts = []string{"2006-01-02", time.RFC3339}

func parseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	var lastErr error
	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, value)
		if err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}
