package database

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetAccountStats(t *testing.T) {
	db, mock := setupMockDB(t)
	defer db.Close()

	rows := sqlmock.NewRows([]string{"owned", "joined", "announcements", "reactions"}).
		AddRow(2, 3, 14, 9)

	mock.ExpectQuery(`SELECT`).
		WithArgs("user-1").
		WillReturnRows(rows)

	stats, err := GetAccountStats(db, "user-1")

	require.NoError(t, err)
	assert.Equal(t, 2, stats.OwnedRooms)
	assert.Equal(t, 3, stats.JoinedRooms)
	assert.Equal(t, 14, stats.Announcements)
	assert.Equal(t, 9, stats.Reactions)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetRecentActivity_MergesAndSorts(t *testing.T) {
	db, mock := setupMockDB(t)
	defer db.Close()

	base := time.Now()

	mock.ExpectQuery(`FROM announcements a`).
		WithArgs("user-1").
		WillReturnRows(sqlmock.NewRows([]string{"title", "name", "created_at"}).
			AddRow("Exam moved", "Math 101", base.Add(-1*time.Hour)))

	mock.ExpectQuery(`FROM announcement_reactions ar`).
		WithArgs("user-1").
		WillReturnRows(sqlmock.NewRows([]string{"reaction", "title", "created_at"}).
			AddRow("love", "Field trip", base.Add(-30*time.Minute)))

	mock.ExpectQuery(`FROM room_members rm`).
		WithArgs("user-1").
		WillReturnRows(sqlmock.NewRows([]string{"name", "joined_at"}).
			AddRow("History 9B", base.Add(-2*time.Hour)))

	mock.ExpectQuery(`SELECT name, created_at FROM rooms`).
		WithArgs("user-1").
		WillReturnRows(sqlmock.NewRows([]string{"name", "created_at"}).
			AddRow("Math 101", base.Add(-3*time.Hour)))

	items, err := GetRecentActivity(db, "user-1")

	require.NoError(t, err)
	require.Len(t, items, 4)

	assert.Equal(t, "Reacted to announcement", items[0].Title)
	assert.Equal(t, "Posted announcement", items[1].Title)
	assert.Equal(t, "Joined room", items[2].Title)
	assert.Equal(t, "Created room", items[3].Title)

	assert.Equal(t, "❤️", items[0].Icon)
	assert.Equal(t, `"Field trip"`, items[0].Description)
	assert.Equal(t, `"Exam moved" in Math 101`, items[1].Description)
	assert.Equal(t, "History 9B", items[2].Description)

	for i := 1; i < len(items); i++ {
		assert.False(t, items[i].Time.After(items[i-1].Time))
	}

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetRecentActivity_CapsAtLimit(t *testing.T) {
	db, mock := setupMockDB(t)
	defer db.Close()

	base := time.Now()

	annRows := sqlmock.NewRows([]string{"title", "name", "created_at"})
	for i := 0; i < 3; i++ {
		annRows.AddRow("A", "Room", base.Add(-time.Duration(i)*time.Minute))
	}
	mock.ExpectQuery(`FROM announcements a`).WillReturnRows(annRows)

	reactionRows := sqlmock.NewRows([]string{"reaction", "title", "created_at"})
	for i := 0; i < 3; i++ {
		reactionRows.AddRow("like", "A", base.Add(-time.Duration(i+3)*time.Minute))
	}
	mock.ExpectQuery(`FROM announcement_reactions ar`).WillReturnRows(reactionRows)

	joinRows := sqlmock.NewRows([]string{"name", "joined_at"})
	for i := 0; i < 3; i++ {
		joinRows.AddRow("Room", base.Add(-time.Duration(i+6)*time.Minute))
	}
	mock.ExpectQuery(`FROM room_members rm`).WillReturnRows(joinRows)

	roomRows := sqlmock.NewRows([]string{"name", "created_at"})
	for i := 0; i < 2; i++ {
		roomRows.AddRow("Room", base.Add(-time.Duration(i+9)*time.Minute))
	}
	mock.ExpectQuery(`SELECT name, created_at FROM rooms`).WillReturnRows(roomRows)

	items, err := GetRecentActivity(db, "user-1")

	require.NoError(t, err)
	assert.Len(t, items, activityLimit)

	require.NoError(t, mock.ExpectationsWereMet())
}
