package mysql

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gormMysql "gorm.io/driver/mysql"
	"gorm.io/gorm"

	"cryptoinsight/domain"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	gdb, err := gorm.Open(gormMysql.New(gormMysql.Config{
		Conn:                      db,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return gdb, mock
}

func TestStore(t *testing.T) {
	gdb, mock := newMockDB(t)
	repo := NewCommentRepository(gdb)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO `comments`")).
		WillReturnResult(sqlmock.NewResult(7, 1))

	c := &domain.Comment{
		ArticleID: 42,
		Username:  "alice",
		Content:   "hello",
	}
	err := repo.Store(context.Background(), c)
	require.NoError(t, err)
	assert.Equal(t, int64(7), c.ID)
	assert.False(t, c.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByID(t *testing.T) {
	gdb, mock := newMockDB(t)
	repo := NewCommentRepository(gdb)

	created := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	parentID := int64(3)
	rows := sqlmock.NewRows([]string{"id", "article_id", "username", "content", "parent_id", "created_at", "updated_at", "is_deleted"}).
		AddRow(7, 42, "alice", "hello", parentID, created, nil, true)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `comments` WHERE id = ?")).
		WithArgs(int64(7), 1).
		WillReturnRows(rows)

	c, err := repo.GetByID(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, int64(7), c.ID)
	assert.Equal(t, int64(42), c.ArticleID)
	require.NotNil(t, c.ParentID)
	assert.Equal(t, parentID, *c.ParentID)
	// soft-deleted rows are still returned here
	assert.True(t, c.IsDeleted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByIDNotFound(t *testing.T) {
	gdb, mock := newMockDB(t)
	repo := NewCommentRepository(gdb)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `comments` WHERE id = ?")).
		WithArgs(int64(404), 1).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.GetByID(context.Background(), 404)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFetchByArticle(t *testing.T) {
	gdb, mock := newMockDB(t)
	repo := NewCommentRepository(gdb)

	created := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"id", "article_id", "username", "content", "parent_id", "created_at", "updated_at", "is_deleted"}).
		AddRow(1, 42, "alice", "first", nil, created, nil, false).
		AddRow(2, 42, "bob", "second", 1, created.Add(time.Second), nil, false)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `comments` WHERE article_id = ? AND is_deleted = ? ORDER BY created_at ASC, id ASC")).
		WithArgs(int64(42), false).
		WillReturnRows(rows)

	comments, err := repo.FetchByArticle(context.Background(), 42)
	require.NoError(t, err)
	require.Len(t, comments, 2)
	assert.Equal(t, int64(1), comments[0].ID)
	assert.Nil(t, comments[0].ParentID)
	require.NotNil(t, comments[1].ParentID)
	assert.Equal(t, int64(1), *comments[1].ParentID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCountByArticle(t *testing.T) {
	gdb, mock := newMockDB(t)
	repo := NewCommentRepository(gdb)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT count(*) FROM `comments` WHERE article_id = ? AND is_deleted = ?")).
		WithArgs(int64(42), false).
		WillReturnRows(sqlmock.NewRows([]string{"count(*)"}).AddRow(5))

	count, err := repo.CountByArticle(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, int64(5), count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateContent(t *testing.T) {
	gdb, mock := newMockDB(t)
	repo := NewCommentRepository(gdb)

	now := time.Now()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE `comments` SET")).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.UpdateContent(context.Background(), 7, "edited", now)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateContentNotFound(t *testing.T) {
	gdb, mock := newMockDB(t)
	repo := NewCommentRepository(gdb)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE `comments` SET")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdateContent(context.Background(), 404, "edited", time.Now())
	assert.True(t, errors.Is(err, domain.ErrNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMarkDeleted(t *testing.T) {
	gdb, mock := newMockDB(t)
	repo := NewCommentRepository(gdb)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE `comments` SET")).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.MarkDeleted(context.Background(), 7)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMarkDeletedAlreadyDeleted(t *testing.T) {
	gdb, mock := newMockDB(t)
	repo := NewCommentRepository(gdb)

	// MySQL reports zero affected rows when the flag is already set;
	// that must not surface as an error.
	mock.ExpectExec(regexp.QuoteMeta("UPDATE `comments` SET")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.MarkDeleted(context.Background(), 7)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
