package dao

import (
	"strings"
	"testing"
	"time"

	"github.com/bricksandmortarstudio/sms-dispatch/model"
	"github.com/stretchr/testify/require"
)

func TestHistoryDao_Record(t *testing.T) {
	db, cleanup := createDB(t)
	defer cleanup()
	histDao := NewHistoryDao(db)

	err := histDao.Record(7, 42, "Sent an alphanumeric SMS message from Acme.", "short caption", COMM_ID1)
	require.NoError(t, err)

	records, err := histDao.GetAllByRelatedId(COMM_ID1)
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Equal(t, uint32(7), records[0].CreatedById)
	require.Equal(t, uint32(42), records[0].EntityId)
	require.Equal(t, "short caption", records[0].Caption)
}

func TestHistoryDao_RecordTruncatesCaption(t *testing.T) {
	db, cleanup := createDB(t)
	defer cleanup()
	histDao := NewHistoryDao(db)

	longCaption := strings.Repeat("x", 500)
	err := histDao.Record(7, 42, "Sent SMS", longCaption, COMM_ID1)
	require.NoError(t, err)

	records, err := histDao.GetAllByRelatedId(COMM_ID1)
	require.NoError(t, err)
	require.Len(t, records[0].Caption, CaptionMaxLen)
}

func TestHistoryDao_RemoveOlderThanDays(t *testing.T) {
	db, cleanup := createDB(t)
	defer cleanup()
	histDao := NewHistoryDao(db)

	old := &model.History{Summary: "old", CreatedAt: time.Now().Add(-25 * time.Hour), RelatedId: COMM_ID1}
	require.NoError(t, db.Save(old))
	require.NoError(t, histDao.Record(7, 42, "fresh", "caption", COMM_ID1))

	err := histDao.RemoveOlderThanDays(1)
	require.NoError(t, err)

	records, err := histDao.GetAllByRelatedId(COMM_ID1)
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Equal(t, "fresh", records[0].Summary)
}
