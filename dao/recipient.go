package dao

import (
	"errors"
	"sync"
	"time"

	"github.com/asdine/storm/v3/q"
	"github.com/bricksandmortarstudio/sms-dispatch/model"
)

// ErrNotPending is returned when a status write-back targets a recipient
// that already reached a terminal status
var ErrNotPending = errors.New("recipient is not pending")

type RecipientDao interface {
	//Create creates recipient record in PENDING status and returns its id
	Create(communicationId, personId uint32, phones []model.Phone, mergeFields map[string]string) (uint32, error)
	//ClaimNextPending claims the next pending recipient of the communication.
	//A claimed recipient is handed to at most one caller until a terminal status
	//is written back. Returns nil when no unclaimed pending recipients remain.
	ClaimNextPending(communicationId uint32) (*model.Recipient, error)
	//MarkDelivered moves a claimed recipient to DELIVERED and releases the claim
	MarkDelivered(id uint32, uniqueMessageId, transportName string) error
	//MarkFailed moves a claimed recipient to FAILED and releases the claim
	MarkFailed(id uint32, statusNote string) error
	//HasPending reports whether the communication still has pending recipients
	HasPending(communicationId uint32) (bool, error)
	//UpdateReceiptStatus stores the gateway-reported receipt status for the
	//recipient owning the provider message id
	UpdateReceiptStatus(uniqueMessageId, status string) (model.Recipient, error)
	//GetAllByCommunicationId returns all recipients of the communication
	GetAllByCommunicationId(communicationId uint32) ([]model.Recipient, error)
	//GetAll returns all recipients
	GetAll() ([]model.Recipient, error)
	//RemoveOlderThanDays removes all recipients older than {days}
	RemoveOlderThanDays(days int) error
}

func NewRecipientDao(db Db) RecipientDao {
	return &recipientDao{db: db, claimed: make(map[uint32]struct{})}
}

type recipientDao struct {
	db Db

	//in-process claim table: recipient ids handed out but not yet written back.
	//A crash drops the table and unterminated recipients re-enter the pending pool.
	mu      sync.Mutex
	claimed map[uint32]struct{}
}

func (r *recipientDao) Create(communicationId, personId uint32, phones []model.Phone, mergeFields map[string]string) (uint32, error) {
	recipient := &model.Recipient{
		CommunicationId: communicationId,
		PersonId:        personId,
		Phones:          phones,
		MergeFields:     mergeFields,
		Status:          model.PENDING,
		CreatedAt:       time.Now(),
	}
	err := r.db.Save(recipient)
	return recipient.Id, err
}

func (r *recipientDao) ClaimNextPending(communicationId uint32) (*model.Recipient, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var recipients []model.Recipient
	err := r.db.Select(q.Eq("CommunicationId", communicationId), q.Eq("Status", model.PENDING)).Find(&recipients)
	if err != nil {
		if err.Error() == "not found" {
			return nil, nil
		}
		return nil, err
	}

	for i := range recipients {
		if _, taken := r.claimed[recipients[i].Id]; taken {
			continue
		}
		r.claimed[recipients[i].Id] = struct{}{}
		return &recipients[i], nil
	}

	return nil, nil
}

func (r *recipientDao) release(id uint32) {
	r.mu.Lock()
	delete(r.claimed, id)
	r.mu.Unlock()
}

func (r *recipientDao) MarkDelivered(id uint32, uniqueMessageId, transportName string) error {
	defer r.release(id)

	var recipient model.Recipient
	err := r.db.One("Id", id, &recipient)
	if err != nil {
		return err
	}
	if recipient.Status != model.PENDING {
		return ErrNotPending
	}
	recipient.Status = model.DELIVERED
	recipient.UniqueMessageId = uniqueMessageId
	recipient.TransportName = transportName
	return r.db.Update(&recipient)
}

func (r *recipientDao) MarkFailed(id uint32, statusNote string) error {
	defer r.release(id)

	var recipient model.Recipient
	err := r.db.One("Id", id, &recipient)
	if err != nil {
		return err
	}
	if recipient.Status != model.PENDING {
		return ErrNotPending
	}
	recipient.Status = model.FAILED
	recipient.StatusNote = statusNote
	return r.db.Update(&recipient)
}

func (r *recipientDao) HasPending(communicationId uint32) (bool, error) {
	var recipients []model.Recipient
	err := r.db.Select(q.Eq("CommunicationId", communicationId), q.Eq("Status", model.PENDING)).Limit(1).Find(&recipients)
	if err != nil {
		if err.Error() == "not found" {
			return false, nil
		}
		return false, err
	}
	return len(recipients) > 0, nil
}

func (r *recipientDao) UpdateReceiptStatus(uniqueMessageId, status string) (model.Recipient, error) {
	var recipient model.Recipient
	err := r.db.One("UniqueMessageId", uniqueMessageId, &recipient)
	if err != nil {
		return recipient, err
	}
	recipient.ReceiptStatus = status
	err = r.db.Update(&recipient)
	return recipient, err
}

func (r *recipientDao) GetAllByCommunicationId(communicationId uint32) (recipients []model.Recipient, err error) {
	err = r.db.Find("CommunicationId", communicationId, &recipients)
	return
}

func (r *recipientDao) GetAll() (recipients []model.Recipient, err error) {
	err = r.db.All(&recipients)
	return
}

func (r *recipientDao) RemoveOlderThanDays(days int) error {
	err := r.db.Select(q.Lt("CreatedAt", time.Now().Add(-24*time.Duration(days)*time.Hour))).Delete(&model.Recipient{})
	if err != nil && err.Error() != "not found" {
		return err
	}
	return nil
}
