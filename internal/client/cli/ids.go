package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/jobkeeper/internal/client/services"
)

const shortIDLen = 8

var errAmbiguousID = errors.New("id prefix matches more than one record")

// shortID trims a uuid to the prefix shown in listings.
func shortID(id string) string {
	if len(id) <= shortIDLen {
		return id
	}
	return id[:shortIDLen]
}

// matchID resolves an exact id or a unique prefix of one.
func matchID(ids []string, prefix string) (string, error) {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		return "", fmt.Errorf("%w: empty id", services.ErrValidation)
	}
	var found []string
	for _, id := range ids {
		if id == prefix {
			return id, nil
		}
		if strings.HasPrefix(id, prefix) {
			found = append(found, id)
		}
	}
	switch len(found) {
	case 0:
		return "", fmt.Errorf("%w: %s", services.ErrNotFound, prefix)
	case 1:
		return found[0], nil
	default:
		return "", fmt.Errorf("%w: %s", errAmbiguousID, prefix)
	}
}
