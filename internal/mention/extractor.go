package mention

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"blogsite-backend/internal/model"
)

// mentionPattern matches an @ followed by one or more word characters.
// "@alice," yields "alice"; a bare "@" or "@!" yields nothing.
var mentionPattern = regexp.MustCompile(`@(\w+)`)

// Directory resolves usernames to users. Implemented by the user repository.
type Directory interface {
	GetByUsername(ctx context.Context, username string) (*model.User, error)
}

// Extractor scans comment text for @username tokens and resolves them
// against the user directory. It has no side effects.
type Extractor struct {
	directory Directory
}

func NewExtractor(directory Directory) *Extractor {
	return &Extractor{directory: directory}
}

// Extract returns the set of users referenced via @username in content.
// Duplicate tokens collapse to one entry. Tokens that do not resolve to an
// existing user are silently dropped; only infrastructure errors propagate.
func (e *Extractor) Extract(ctx context.Context, content string) ([]*model.User, error) {
	matches := mentionPattern.FindAllStringSubmatch(content, -1)
	if len(matches) == 0 {
		return nil, nil
	}

	seen := make(map[string]bool, len(matches))
	var users []*model.User
	for _, m := range matches {
		username := m[1]
		if seen[username] {
			continue
		}
		seen[username] = true

		user, err := e.directory.GetByUsername(ctx, username)
		if err != nil {
			if errors.Is(err, model.ErrUserNotFound) {
				continue // unmatched token, not an error
			}
			return nil, fmt.Errorf("resolve mention %q: %w", username, err)
		}
		users = append(users, user)
	}

	return users, nil
}
