package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/canteen-central/canteen-api/internal/models"
)

func newNotificationMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestNotificationRepositoryCreateAssignsID(t *testing.T) {
	db, mock, cleanup := newNotificationMock(t)
	defer cleanup()
	repo := NewNotificationRepository(db)

	mock.ExpectExec("INSERT INTO notifications").
		WithArgs(sqlmock.AnyArg(), "user-1", "Report Approved", sqlmock.AnyArg(), models.NotificationSuccess, true, false, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	n := &models.Notification{
		OwnerID:   "user-1",
		Title:     "Report Approved",
		Content:   "Great news! Your Monthly Report for 2025-01 has been approved.",
		Type:      models.NotificationSuccess,
		Important: true,
	}
	err := repo.Create(context.Background(), n)
	require.NoError(t, err)
	assert.NotEmpty(t, n.ID)
	assert.False(t, n.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNotificationRepositoryListExcludesArchivedByDefault(t *testing.T) {
	db, mock, cleanup := newNotificationMock(t)
	defer cleanup()
	repo := NewNotificationRepository(db)

	rows := sqlmock.NewRows([]string{"id", "owner_id", "title", "content", "type", "important", "archived", "created_at"}).
		AddRow("n-1", "user-1", "Report Submitted", "body", models.NotificationInfo, false, false, time.Now())
	mock.ExpectQuery("SELECT .* FROM notifications WHERE owner_id = \\$1 AND archived = FALSE ORDER BY created_at DESC LIMIT \\$2").
		WithArgs("user-1", 50).
		WillReturnRows(rows)

	notifications, err := repo.List(context.Background(), models.NotificationFilter{OwnerID: "user-1", Limit: 50})
	require.NoError(t, err)
	require.Len(t, notifications, 1)
	assert.Equal(t, "Report Submitted", notifications[0].Title)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNotificationRepositoryArchiveWrongOwner(t *testing.T) {
	db, mock, cleanup := newNotificationMock(t)
	defer cleanup()
	repo := NewNotificationRepository(db)

	mock.ExpectExec("UPDATE notifications SET archived = TRUE").
		WithArgs("n-1", "intruder").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Archive(context.Background(), "n-1", "intruder")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNotificationRepositoryUnreadCount(t *testing.T) {
	db, mock, cleanup := newNotificationMock(t)
	defer cleanup()
	repo := NewNotificationRepository(db)

	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM notifications").
		WithArgs("user-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	count, err := repo.UnreadCount(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, 3, count)
	assert.NoError(t, mock.ExpectationsWereMet())
}
