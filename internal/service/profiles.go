package service

import (
	"context"

	"github.com/classdesk/classdesk-api/internal/models"
)

// profileDirectory is the batch profile lookup every attaching service needs.
type profileDirectory interface {
	ProfilesByIDs(ctx context.Context, ids []string) (map[string]models.Profile, error)
}

// attachProfiles resolves the profiles referenced by rows with a single batch
// fetch and merges them back in place. The primary row order is untouched; a
// row whose key has no matching profile keeps a nil reference. Running the
// merge again against unchanged rows produces the same result.
func attachProfiles[T any](ctx context.Context, dir profileDirectory, rows []T, key func(*T) string, assign func(*T, *models.Profile)) error {
	ids := make([]string, 0, len(rows))
	seen := make(map[string]struct{}, len(rows))
	for i := range rows {
		id := key(&rows[i])
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		return nil
	}

	profiles, err := dir.ProfilesByIDs(ctx, ids)
	if err != nil {
		return err
	}

	for i := range rows {
		if profile, ok := profiles[key(&rows[i])]; ok {
			p := profile
			assign(&rows[i], &p)
		}
	}
	return nil
}
