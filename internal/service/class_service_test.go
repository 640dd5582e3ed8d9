package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/classdesk/classdesk-api/internal/models"
)

type mockClassRepo struct {
	classes    map[string]models.Class
	byCode     map[string]models.Class
	takenCodes map[string]bool
	created    *models.Class
	updated    *models.Class
	deleted    []string
}

func (m *mockClassRepo) ListForUser(ctx context.Context, userID string) ([]models.Class, error) {
	var list []models.Class
	for _, c := range m.classes {
		list = append(list, c)
	}
	return list, nil
}

func (m *mockClassRepo) FindByID(ctx context.Context, id string) (*models.Class, error) {
	if c, ok := m.classes[id]; ok {
		return &c, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockClassRepo) FindByCode(ctx context.Context, code string) (*models.Class, error) {
	if c, ok := m.byCode[code]; ok {
		return &c, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockClassRepo) Create(ctx context.Context, class *models.Class) error {
	if class.ID == "" {
		class.ID = "new-class"
	}
	if m.classes == nil {
		m.classes = make(map[string]models.Class)
	}
	m.classes[class.ID] = *class
	m.created = class
	return nil
}

func (m *mockClassRepo) Update(ctx context.Context, class *models.Class) error {
	m.classes[class.ID] = *class
	m.updated = class
	return nil
}

func (m *mockClassRepo) Delete(ctx context.Context, id string) error {
	delete(m.classes, id)
	m.deleted = append(m.deleted, id)
	return nil
}

func (m *mockClassRepo) CodeExists(ctx context.Context, code string) (bool, error) {
	return m.takenCodes[code], nil
}

type mockMembershipRepo struct {
	members  map[string]bool
	teachers map[string]bool
	created  *models.ClassMembership
}

func (m *mockMembershipRepo) Exists(ctx context.Context, classID, userID string) (bool, error) {
	return m.members[classID+":"+userID], nil
}

func (m *mockMembershipRepo) HasTeacherRole(ctx context.Context, classID, userID string) (bool, error) {
	return m.teachers[classID+":"+userID], nil
}

func (m *mockMembershipRepo) Create(ctx context.Context, membership *models.ClassMembership) error {
	if m.members == nil {
		m.members = make(map[string]bool)
	}
	m.members[membership.ClassID+":"+membership.UserID] = true
	m.created = membership
	return nil
}

type mockProfileDir struct {
	profiles map[string]models.Profile
	calls    int
	lastIDs  []string
}

func (m *mockProfileDir) ProfilesByIDs(ctx context.Context, ids []string) (map[string]models.Profile, error) {
	m.calls++
	m.lastIDs = ids
	result := make(map[string]models.Profile, len(ids))
	for _, id := range ids {
		if p, ok := m.profiles[id]; ok {
			result[id] = p
		}
	}
	return result, nil
}

func TestJoinByCodeRejectsUnknownCode(t *testing.T) {
	classes := &mockClassRepo{byCode: map[string]models.Class{}}
	memberships := &mockMembershipRepo{}
	svc := NewClassService(classes, memberships, &mockProfileDir{}, nil, nil)

	_, err := svc.JoinByCode(context.Background(), "student-1", "nope123")

	require.ErrorIs(t, err, ErrClassCodeNotFound)
	assert.Equal(t, "Class not found. Check the code and try again.", ErrClassCodeNotFound.Message)
	assert.Nil(t, memberships.created)
}

func TestJoinByCodeRejectsExistingMember(t *testing.T) {
	class := models.Class{ID: "c1", OwnerID: "teacher-1", ClassCode: "abc1234"}
	classes := &mockClassRepo{byCode: map[string]models.Class{"abc1234": class}}
	memberships := &mockMembershipRepo{members: map[string]bool{"c1:student-1": true}}
	svc := NewClassService(classes, memberships, &mockProfileDir{}, nil, nil)

	_, err := svc.JoinByCode(context.Background(), "student-1", "abc1234")

	require.ErrorIs(t, err, ErrAlreadyEnrolled)
	assert.Equal(t, "You are already enrolled in this class.", ErrAlreadyEnrolled.Message)
	assert.Nil(t, memberships.created)
}

func TestJoinByCodeRejectsOwner(t *testing.T) {
	class := models.Class{ID: "c1", OwnerID: "teacher-1", ClassCode: "abc1234"}
	classes := &mockClassRepo{byCode: map[string]models.Class{"abc1234": class}}
	memberships := &mockMembershipRepo{}
	svc := NewClassService(classes, memberships, &mockProfileDir{}, nil, nil)

	_, err := svc.JoinByCode(context.Background(), "teacher-1", "abc1234")

	require.ErrorIs(t, err, ErrOwnerCannotJoin)
	assert.Equal(t, "You are the teacher of this class.", ErrOwnerCannotJoin.Message)
	assert.Nil(t, memberships.created)
}

func TestJoinByCodeEnrollsStudent(t *testing.T) {
	class := models.Class{ID: "c1", OwnerID: "teacher-1", ClassCode: "abc1234"}
	classes := &mockClassRepo{byCode: map[string]models.Class{"abc1234": class}}
	memberships := &mockMembershipRepo{}
	svc := NewClassService(classes, memberships, &mockProfileDir{}, nil, nil)

	joined, err := svc.JoinByCode(context.Background(), "student-1", "  ABC1234 ")

	require.NoError(t, err)
	assert.Equal(t, "c1", joined.ID)
	require.NotNil(t, memberships.created)
	assert.Equal(t, models.ClassRoleStudent, memberships.created.Role)
	assert.Equal(t, "student-1", memberships.created.UserID)
}

func TestCreateGeneratesLowercaseCode(t *testing.T) {
	classes := &mockClassRepo{}
	svc := NewClassService(classes, &mockMembershipRepo{}, &mockProfileDir{}, nil, nil)

	class, err := svc.Create(context.Background(), "teacher-1", CreateClassRequest{Title: "Biology"})

	require.NoError(t, err)
	assert.Len(t, class.ClassCode, models.ClassCodeLength)
	for _, r := range class.ClassCode {
		assert.True(t, (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'), "code must be lowercase alphanumeric")
	}
	assert.Equal(t, models.DefaultBannerColor, class.BannerColor)
	assert.Equal(t, "teacher-1", class.OwnerID)
}

func TestCreateRetriesOnCodeCollision(t *testing.T) {
	// Every code is reported taken, so generation must give up with an error
	// instead of looping forever.
	svc := NewClassService(alwaysTakenRepo{&mockClassRepo{}}, &mockMembershipRepo{}, &mockProfileDir{}, nil, nil)

	_, err := svc.Create(context.Background(), "teacher-1", CreateClassRequest{Title: "Biology"})
	require.Error(t, err)
}

type alwaysTakenRepo struct {
	*mockClassRepo
}

func (alwaysTakenRepo) CodeExists(ctx context.Context, code string) (bool, error) {
	return true, nil
}

func TestIsTeacherForOwner(t *testing.T) {
	classes := &mockClassRepo{classes: map[string]models.Class{"c1": {ID: "c1", OwnerID: "teacher-1"}}}
	svc := NewClassService(classes, &mockMembershipRepo{}, &mockProfileDir{}, nil, nil)

	isTeacher, err := svc.IsTeacher(context.Background(), "c1", "teacher-1")
	require.NoError(t, err)
	assert.True(t, isTeacher)

	isTeacher, err = svc.IsTeacher(context.Background(), "c1", "student-1")
	require.NoError(t, err)
	assert.False(t, isTeacher)
}

func TestIsTeacherForCoTeacherMembership(t *testing.T) {
	classes := &mockClassRepo{classes: map[string]models.Class{"c1": {ID: "c1", OwnerID: "teacher-1"}}}
	memberships := &mockMembershipRepo{teachers: map[string]bool{"c1:teacher-2": true}}
	svc := NewClassService(classes, memberships, &mockProfileDir{}, nil, nil)

	isTeacher, err := svc.IsTeacher(context.Background(), "c1", "teacher-2")
	require.NoError(t, err)
	assert.True(t, isTeacher)
}

func TestUpdateRejectsNonOwner(t *testing.T) {
	classes := &mockClassRepo{classes: map[string]models.Class{"c1": {ID: "c1", OwnerID: "teacher-1", Title: "Old"}}}
	svc := NewClassService(classes, &mockMembershipRepo{}, &mockProfileDir{}, nil, nil)

	_, err := svc.Update(context.Background(), "c1", "intruder", UpdateClassRequest{Title: "New"})
	require.Error(t, err)
	assert.Nil(t, classes.updated)
}
