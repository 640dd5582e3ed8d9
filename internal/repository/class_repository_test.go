package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func classRows() *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{"id", "title", "section", "subject", "room", "description", "banner_color", "class_code", "owner_id", "created_at", "updated_at"}).
		AddRow("c1", "Biology", nil, nil, nil, nil, "#1a73e8", "abc1234", "teacher-1", now, now)
}

func TestFindByCodeLowercasesLookup(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewClassRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM classes WHERE class_code = $1")).
		WithArgs("abc1234").
		WillReturnRows(classRows())

	class, err := repo.FindByCode(context.Background(), "ABC1234")
	require.NoError(t, err)
	assert.Equal(t, "c1", class.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCodeExists(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewClassRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM classes WHERE class_code = $1")).
		WithArgs("abc1234").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	exists, err := repo.CodeExists(context.Background(), "abc1234")
	require.NoError(t, err)
	assert.True(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListForUserIncludesMemberships(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewClassRepository(db)

	mock.ExpectQuery("FROM classes c").
		WithArgs("u1").
		WillReturnRows(classRows())

	classes, err := repo.ListForUser(context.Background(), "u1")
	require.NoError(t, err)
	assert.Len(t, classes, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}
