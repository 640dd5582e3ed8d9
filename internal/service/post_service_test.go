package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/classdesk/classdesk-api/internal/models"
	appErrors "github.com/classdesk/classdesk-api/pkg/errors"
)

type mockPostRepo struct {
	posts     map[string]models.Post
	byClass   map[string][]models.Post
	listCalls int
	created   *models.Post
	deleted   []string
}

func (m *mockPostRepo) ListByClass(ctx context.Context, classID string) ([]models.Post, error) {
	m.listCalls++
	return m.byClass[classID], nil
}

func (m *mockPostRepo) FindByID(ctx context.Context, id string) (*models.Post, error) {
	p, ok := m.posts[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &p, nil
}

func (m *mockPostRepo) Create(ctx context.Context, post *models.Post) error {
	post.ID = "new-post"
	m.created = post
	return nil
}

func (m *mockPostRepo) Delete(ctx context.Context, id string) error {
	m.deleted = append(m.deleted, id)
	return nil
}

type mockStreamCache struct {
	store       map[string][]byte
	invalidated []string
	sets        int
}

func (m *mockStreamCache) Get(ctx context.Context, key string, dest interface{}) error {
	raw, ok := m.store[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (m *mockStreamCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	if m.store == nil {
		m.store = make(map[string][]byte)
	}
	m.store[key] = raw
	m.sets++
	return nil
}

func (m *mockStreamCache) DeleteByPattern(ctx context.Context, pattern string) error {
	m.invalidated = append(m.invalidated, pattern)
	for key := range m.store {
		delete(m.store, key)
	}
	return nil
}

type mockTeacherChecker struct {
	teachers map[string]bool
}

func (m *mockTeacherChecker) IsTeacher(ctx context.Context, classID, userID string) (bool, error) {
	return m.teachers[classID+":"+userID], nil
}

func TestListPopulatesCacheOnMiss(t *testing.T) {
	posts := &mockPostRepo{byClass: map[string][]models.Post{
		"c1": {{ID: "p2", ClassID: "c1", AuthorID: "u1", Content: "newer"}, {ID: "p1", ClassID: "c1", AuthorID: "u2", Content: "older"}},
	}}
	profiles := &mockProfileDir{profiles: map[string]models.Profile{
		"u1": {ID: "u1", FullName: "Alice"},
		"u2": {ID: "u2", FullName: "Bob"},
	}}
	cache := &mockStreamCache{}
	svc := NewPostService(posts, profiles, &mockTeacherChecker{}, cache, time.Minute, nil, nil)

	listed, err := svc.List(context.Background(), "c1")
	require.NoError(t, err)
	require.Len(t, listed, 2)

	// Order from the repository is preserved and authors are merged in.
	assert.Equal(t, "p2", listed[0].ID)
	require.NotNil(t, listed[0].Author)
	assert.Equal(t, "Alice", listed[0].Author.FullName)
	assert.Equal(t, "Bob", listed[1].Author.FullName)

	assert.Equal(t, 1, posts.listCalls)
	assert.Equal(t, 1, cache.sets)

	// One profile lookup for the whole page, no per-row queries.
	assert.Equal(t, 1, profiles.calls)
	assert.ElementsMatch(t, []string{"u1", "u2"}, profiles.lastIDs)
}

func TestListServesFromCache(t *testing.T) {
	posts := &mockPostRepo{byClass: map[string][]models.Post{
		"c1": {{ID: "p1", ClassID: "c1", AuthorID: "u1"}},
	}}
	profiles := &mockProfileDir{profiles: map[string]models.Profile{"u1": {ID: "u1", FullName: "Alice"}}}
	cache := &mockStreamCache{}
	svc := NewPostService(posts, profiles, &mockTeacherChecker{}, cache, time.Minute, nil, nil)

	first, err := svc.List(context.Background(), "c1")
	require.NoError(t, err)
	second, err := svc.List(context.Background(), "c1")
	require.NoError(t, err)

	assert.Equal(t, 1, posts.listCalls, "second read must come from cache")
	require.Len(t, second, 1)
	assert.Equal(t, first[0].ID, second[0].ID)
	require.NotNil(t, second[0].Author)
	assert.Equal(t, "Alice", second[0].Author.FullName)
}

func TestCreateInvalidatesStreamCache(t *testing.T) {
	posts := &mockPostRepo{}
	cache := &mockStreamCache{store: map[string][]byte{"stream:c1:posts": []byte("[]")}}
	svc := NewPostService(posts, &mockProfileDir{}, &mockTeacherChecker{}, cache, time.Minute, nil, nil)

	_, err := svc.Create(context.Background(), "c1", "u1", CreatePostRequest{Content: "hello"})
	require.NoError(t, err)

	assert.Contains(t, cache.invalidated, "stream:c1:posts")
	assert.Empty(t, cache.store)
}

func TestDeleteAllowsTeacher(t *testing.T) {
	posts := &mockPostRepo{posts: map[string]models.Post{"p1": {ID: "p1", ClassID: "c1", AuthorID: "u1"}}}
	teachers := &mockTeacherChecker{teachers: map[string]bool{"c1:teacher-1": true}}
	svc := NewPostService(posts, &mockProfileDir{}, teachers, nil, time.Minute, nil, nil)

	err := svc.Delete(context.Background(), "p1", "teacher-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"p1"}, posts.deleted)
}

func TestDeleteRejectsOtherStudents(t *testing.T) {
	posts := &mockPostRepo{posts: map[string]models.Post{"p1": {ID: "p1", ClassID: "c1", AuthorID: "u1"}}}
	svc := NewPostService(posts, &mockProfileDir{}, &mockTeacherChecker{}, nil, time.Minute, nil, nil)

	err := svc.Delete(context.Background(), "p1", "someone-else")
	require.Error(t, err)
	assert.Empty(t, posts.deleted)
}
