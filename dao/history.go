package dao

import (
	"time"

	"github.com/asdine/storm/v3/q"
	"github.com/bricksandmortarstudio/sms-dispatch/model"
	"github.com/bricksandmortarstudio/sms-dispatch/util"
)

// CaptionMaxLen is the length audit captions are truncated to
const CaptionMaxLen = 200

type HistoryDao interface {
	//Record stores an audit record, truncating the caption to CaptionMaxLen
	Record(createdById, entityId uint32, summary, caption string, relatedId uint32) error
	//GetAllByRelatedId returns audit records related to the given communication
	GetAllByRelatedId(relatedId uint32) ([]model.History, error)
	//RemoveOlderThanDays removes all records older than {days}
	RemoveOlderThanDays(days int) error
}

func NewHistoryDao(db Db) HistoryDao {
	return &historyDao{db: db}
}

type historyDao struct {
	db Db
}

func (h historyDao) Record(createdById, entityId uint32, summary, caption string, relatedId uint32) error {
	record := &model.History{
		CreatedById: createdById,
		EntityId:    entityId,
		Summary:     summary,
		Caption:     util.Truncate(caption, CaptionMaxLen),
		RelatedId:   relatedId,
		CreatedAt:   time.Now(),
	}
	return h.db.Save(record)
}

func (h historyDao) GetAllByRelatedId(relatedId uint32) (records []model.History, err error) {
	err = h.db.Find("RelatedId", relatedId, &records)
	return
}

func (h historyDao) RemoveOlderThanDays(days int) error {
	err := h.db.Select(q.Lt("CreatedAt", time.Now().Add(-24*time.Duration(days)*time.Hour))).Delete(&model.History{})
	if err != nil && err.Error() != "not found" {
		return err
	}
	return nil
}
