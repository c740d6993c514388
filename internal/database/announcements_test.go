package database

import (
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kent0710/classroom-announcement-app/internal/models"
)

func TestCreateAnnouncement_Success(t *testing.T) {
	db, mock := setupMockDB(t)
	defer db.Close()

	now := time.Now()
	rows := sqlmock.NewRows([]string{
		"id", "room_id", "author_id", "title", "content", "created_at", "updated_at", "username",
	}).AddRow("ann-1", "room-1", "user-1", "Exam moved", "Now on Friday.", now, now, "alice")

	mock.ExpectQuery(`WITH inserted AS`).
		WithArgs("room-1", "user-1", "Exam moved", "Now on Friday.").
		WillReturnRows(rows)

	ann, err := CreateAnnouncement(db, "room-1", "user-1", "Exam moved", "Now on Friday.")

	require.NoError(t, err)
	assert.Equal(t, "ann-1", ann.ID)
	assert.Equal(t, "alice", ann.AuthorUsername)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetAnnouncementByID_NotFound(t *testing.T) {
	db, mock := setupMockDB(t)
	defer db.Close()

	mock.ExpectQuery(`FROM announcements a`).
		WithArgs("ann-404").
		WillReturnError(sql.ErrNoRows)

	ann, err := GetAnnouncementByID(db, "ann-404")

	require.NoError(t, err)
	assert.Nil(t, ann)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetAnnouncements_AssemblesReactions(t *testing.T) {
	db, mock := setupMockDB(t)
	defer db.Close()

	now := time.Now()
	annRows := sqlmock.NewRows([]string{
		"id", "room_id", "author_id", "title", "content", "created_at", "updated_at", "username",
	}).
		AddRow("ann-2", "room-1", "user-1", "Second", "b", now, now, "alice").
		AddRow("ann-1", "room-1", "user-2", "First", "a", now.Add(-time.Hour), now.Add(-time.Hour), "bob")

	mock.ExpectQuery(`FROM announcements a`).
		WillReturnRows(annRows)

	countRows := sqlmock.NewRows([]string{"announcement_id", "reaction", "count"}).
		AddRow("ann-1", "like", 2).
		AddRow("ann-1", "sad", 1).
		AddRow("ann-2", "love", 5)
	mock.ExpectQuery(`GROUP BY announcement_id, reaction`).
		WillReturnRows(countRows)

	viewerRows := sqlmock.NewRows([]string{"announcement_id", "reaction"}).
		AddRow("ann-1", "like")
	mock.ExpectQuery(`AND user_id`).
		WillReturnRows(viewerRows)

	anns, err := GetAnnouncements(db, "room-1", "viewer-1", time.Now(), 50)

	require.NoError(t, err)
	require.Len(t, anns, 2)

	assert.Equal(t, "ann-2", anns[0].ID)
	require.Len(t, anns[0].Reactions, len(models.ReactionTypes))
	assert.Equal(t, 5, anns[0].Reactions[1].Count)
	assert.False(t, anns[0].Reactions[1].Reacted)

	assert.Equal(t, "ann-1", anns[1].ID)
	assert.Equal(t, 2, anns[1].Reactions[0].Count)
	assert.True(t, anns[1].Reactions[0].Reacted)
	assert.Equal(t, 1, anns[1].Reactions[4].Count)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetAnnouncements_EmptyRoom(t *testing.T) {
	db, mock := setupMockDB(t)
	defer db.Close()

	mock.ExpectQuery(`FROM announcements a`).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "room_id", "author_id", "title", "content", "created_at", "updated_at", "username",
		}))

	anns, err := GetAnnouncements(db, "room-1", "viewer-1", time.Now(), 50)

	require.NoError(t, err)
	assert.NotNil(t, anns)
	assert.Empty(t, anns)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestToggleReaction_AddsWhenNone(t *testing.T) {
	db, mock := setupMockDB(t)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT reaction FROM announcement_reactions`).
		WithArgs("ann-1", "user-1").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectExec(`INSERT INTO announcement_reactions`).
		WithArgs("ann-1", "user-1", "like").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	result, err := ToggleReaction(db, "ann-1", "user-1", "like")

	require.NoError(t, err)
	assert.Equal(t, "like", result)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestToggleReaction_RemovesWhenSame(t *testing.T) {
	db, mock := setupMockDB(t)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT reaction FROM announcement_reactions`).
		WithArgs("ann-1", "user-1").
		WillReturnRows(sqlmock.NewRows([]string{"reaction"}).AddRow("like"))
	mock.ExpectExec(`DELETE FROM announcement_reactions`).
		WithArgs("ann-1", "user-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	result, err := ToggleReaction(db, "ann-1", "user-1", "like")

	require.NoError(t, err)
	assert.Empty(t, result)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestToggleReaction_ReplacesWhenDifferent(t *testing.T) {
	db, mock := setupMockDB(t)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT reaction FROM announcement_reactions`).
		WithArgs("ann-1", "user-1").
		WillReturnRows(sqlmock.NewRows([]string{"reaction"}).AddRow("like"))
	mock.ExpectExec(`UPDATE announcement_reactions SET reaction`).
		WithArgs("ann-1", "user-1", "love").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	result, err := ToggleReaction(db, "ann-1", "user-1", "love")

	require.NoError(t, err)
	assert.Equal(t, "love", result)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetReactionCounts(t *testing.T) {
	db, mock := setupMockDB(t)
	defer db.Close()

	rows := sqlmock.NewRows([]string{"reaction", "count"}).
		AddRow("like", 3).
		AddRow("wow", 1)

	mock.ExpectQuery(`GROUP BY reaction`).
		WithArgs("ann-1").
		WillReturnRows(rows)

	counts, err := GetReactionCounts(db, "ann-1")

	require.NoError(t, err)
	assert.Equal(t, map[string]int{"like": 3, "wow": 1}, counts)

	require.NoError(t, mock.ExpectationsWereMet())
}
