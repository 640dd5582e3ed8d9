package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/classdesk/classdesk-api/internal/models"
)

func TestAttachProfilesDeduplicatesKeys(t *testing.T) {
	dir := &mockProfileDir{profiles: map[string]models.Profile{
		"u1": {ID: "u1", FullName: "Alice"},
	}}
	posts := []models.Post{
		{ID: "p1", AuthorID: "u1"},
		{ID: "p2", AuthorID: "u1"},
		{ID: "p3", AuthorID: "missing"},
	}

	err := attachProfiles(context.Background(), dir, posts,
		func(p *models.Post) string { return p.AuthorID },
		func(p *models.Post, profile *models.Profile) { p.Author = profile },
	)
	require.NoError(t, err)

	assert.Equal(t, 1, dir.calls)
	assert.ElementsMatch(t, []string{"u1", "missing"}, dir.lastIDs)

	require.NotNil(t, posts[0].Author)
	require.NotNil(t, posts[1].Author)
	assert.Equal(t, "Alice", posts[0].Author.FullName)
	assert.Nil(t, posts[2].Author, "rows without a matching profile keep a nil reference")
}

func TestAttachProfilesEmptyRowsSkipsLookup(t *testing.T) {
	dir := &mockProfileDir{}

	err := attachProfiles(context.Background(), dir, []models.Post{},
		func(p *models.Post) string { return p.AuthorID },
		func(p *models.Post, profile *models.Profile) { p.Author = profile },
	)
	require.NoError(t, err)
	assert.Zero(t, dir.calls, "no profile lookup for an empty primary result")
}
