package dao

import (
	"time"

	"github.com/asdine/storm/v3/q"
	"github.com/bricksandmortarstudio/sms-dispatch/model"
	"github.com/dchest/uniuri"
)

const callbackTokenLen = 32

type CommunicationDao interface {
	//Create creates a communication record in DRAFT status and returns it
	Create(mediumData map[string]string, senderId uint32, futureSendTime time.Time) (model.Communication, error)
	//GetOneById returns communication by id
	GetOneById(id uint32) (model.Communication, error)
	//GetOneByCallbackToken returns the communication owning the gateway callback token
	GetOneByCallbackToken(token string) (model.Communication, error)
	//UpdateStatus updates the status of communication with the given id
	UpdateStatus(id uint32, status string) error
	//GetApproved returns all communications in APPROVED status
	GetApproved() ([]model.Communication, error)
	//GetAll returns all communications
	GetAll() ([]model.Communication, error)
	//RemoveOlderThanDays removes all communications older than {days}
	RemoveOlderThanDays(days int) error
}

func NewCommunicationDao(db Db) CommunicationDao {
	return &communicationDao{db: db}
}

type communicationDao struct {
	db Db
}

func (d communicationDao) Create(mediumData map[string]string, senderId uint32, futureSendTime time.Time) (model.Communication, error) {
	comm := &model.Communication{
		Status:         model.DRAFT,
		MediumData:     mediumData,
		SenderId:       senderId,
		FutureSendTime: futureSendTime,
		CallbackToken:  uniuri.NewLen(callbackTokenLen),
		CreatedAt:      time.Now(),
	}
	err := d.db.Save(comm)
	return *comm, err
}

func (d communicationDao) GetOneById(id uint32) (comm model.Communication, err error) {
	err = d.db.One("Id", id, &comm)
	return
}

func (d communicationDao) GetOneByCallbackToken(token string) (comm model.Communication, err error) {
	err = d.db.One("CallbackToken", token, &comm)
	return
}

func (d communicationDao) UpdateStatus(id uint32, status string) error {
	var comm model.Communication
	err := d.db.One("Id", id, &comm)
	if err != nil {
		return err
	}
	comm.Status = status
	return d.db.Update(&comm)
}

func (d communicationDao) GetApproved() (comms []model.Communication, err error) {
	err = d.db.Find("Status", model.APPROVED, &comms)
	if err != nil && err.Error() == "not found" {
		return nil, nil
	}
	return
}

func (d communicationDao) GetAll() (comms []model.Communication, err error) {
	err = d.db.All(&comms)
	return
}

func (d communicationDao) RemoveOlderThanDays(days int) error {
	err := d.db.Select(q.Lt("CreatedAt", time.Now().Add(-24*time.Duration(days)*time.Hour))).Delete(&model.Communication{})
	if err != nil && err.Error() != "not found" {
		return err
	}
	return nil
}
