package service

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/bricksandmortarstudio/sms-dispatch/dao"
	"github.com/bricksandmortarstudio/sms-dispatch/model"
	"github.com/bricksandmortarstudio/sms-dispatch/service/dto"
	"github.com/bricksandmortarstudio/sms-dispatch/sms"
	"github.com/bricksandmortarstudio/sms-dispatch/util"
	"github.com/cskr/pubsub"
	"go.uber.org/zap"
)

type InvalidPayloadErr struct {
	message string
}

func (e *InvalidPayloadErr) Error() string {
	return e.message
}

func NewInvalidPayloadError(msg string) *InvalidPayloadErr {
	return &InvalidPayloadErr{message: msg}
}

type Service interface {
	CreateCommunication(comm dto.Communication) (dto.Id, error)
	ApproveCommunication(id uint32) error
	SendCommunication(ctx context.Context, id uint32) (dto.RunReport, error)
	CheckStatusOfCommunication(id uint32) (dto.CommunicationStatus, error)
	SendAdHoc(ctx context.Context, message dto.AdHocMessage) error
	HandleGatewayCallback(token, uniqueMessageId, status string) error
}

type service struct {
	dispatcher      *Dispatcher
	commDao         dao.CommunicationDao
	recipientDao    dao.RecipientDao
	historyDao      dao.HistoryDao
	receipts        *pubsub.PubSub
	httpClient      *http.Client
	statusStoreDays int
	messageMaxLen   int
	webhook         string
}

func NewService(dispatcher *Dispatcher, commDao dao.CommunicationDao, recipientDao dao.RecipientDao, historyDao dao.HistoryDao, receipts *pubsub.PubSub, statusStoreDays, messageMaxLen int, webhook string, dispatchInterval time.Duration) Service {
	service := &service{
		dispatcher:      dispatcher,
		commDao:         commDao,
		recipientDao:    recipientDao,
		historyDao:      historyDao,
		receipts:        receipts,
		statusStoreDays: statusStoreDays,
		messageMaxLen:   messageMaxLen,
		webhook:         webhook,
		httpClient:      &http.Client{Timeout: 10 * time.Second},
	}

	if receipts != nil {
		go service.consumeReceipts()
	}

	if dispatchInterval > 0 {
		go service.DispatchDue(context.Background(), dispatchInterval)
	}

	go service.CleanupDb()

	return service
}

func (s *service) CleanupDb() {
	for {
		err := s.commDao.RemoveOlderThanDays(s.statusStoreDays)
		if err != nil {
			zap.L().Warn("Error cleaning up communications", zap.Error(err))
		}
		err = s.recipientDao.RemoveOlderThanDays(s.statusStoreDays)
		if err != nil {
			zap.L().Warn("Error cleaning up recipients", zap.Error(err))
		}
		err = s.historyDao.RemoveOlderThanDays(s.statusStoreDays)
		if err != nil {
			zap.L().Warn("Error cleaning up history", zap.Error(err))
		}
		time.Sleep(time.Hour)
	}
}

// DispatchDue runs due approved communications on the given interval until the
// context is cancelled
func (s *service) DispatchDue(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		comms, err := s.commDao.GetApproved()
		if err != nil {
			zap.L().Warn("Error fetching approved communications", zap.Error(err))
			continue
		}

		for _, comm := range comms {
			if !comm.IsDue(time.Now()) {
				continue
			}
			_, err := s.dispatcher.Run(ctx, comm.Id)
			if err != nil {
				zap.L().Error("Error dispatching communication", zap.Uint32("communicationId", comm.Id), zap.Error(err))
			}
		}
	}
}

func (s *service) consumeReceipts() {
	ch := s.receipts.Sub(sms.RECEIPTS)
	for msg := range ch {
		receipt, ok := msg.(sms.Receipt)
		if !ok {
			continue
		}
		s.handleReceipt(receipt.MessageId, receipt.Status)
	}
}

func (s *service) handleReceipt(uniqueMessageId, status string) {
	recipient, err := s.recipientDao.UpdateReceiptStatus(uniqueMessageId, status)
	if err != nil {
		zap.L().Error("Error updating receipt status", zap.Error(err))
		return
	}

	if util.IsBlank(s.webhook) {
		return
	}

	notification := dto.ReceiptNotification{
		CommunicationId: recipient.CommunicationId,
		PersonId:        recipient.PersonId,
		UniqueMessageId: uniqueMessageId,
		ReceiptStatus:   status,
	}

	body, err := json.Marshal(notification)
	if err != nil {
		zap.L().Error("Error marshalling receipt notification", zap.Error(err))
		return
	}

	req, err := http.NewRequest("POST", s.webhook, bytes.NewBuffer(body))
	if err != nil {
		zap.L().Error("Error calling web hook", zap.Error(err))
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		zap.L().Error("Error calling web hook", zap.Error(err))
		return
	}
	defer resp.Body.Close()

	if !(resp.StatusCode >= 200 && resp.StatusCode <= 202) {
		zap.L().Warn("Webhook returned unexpected status", zap.String("status", resp.Status))
	}
}

// HandleGatewayCallback records a provider-pushed delivery status, the token
// identifying the communication the status belongs to
func (s *service) HandleGatewayCallback(token, uniqueMessageId, status string) error {
	_, err := s.commDao.GetOneByCallbackToken(token)
	if err != nil {
		return err
	}
	if util.IsBlank(uniqueMessageId) || util.IsBlank(status) {
		return NewInvalidPayloadError("Invalid callback payload")
	}

	s.handleReceipt(uniqueMessageId, strings.ToUpper(status))
	return nil
}

func (s *service) CreateCommunication(comm dto.Communication) (dto.Id, error) {

	//overall communication validation
	if strings.TrimSpace(comm.Message) == "" {
		return dto.Id{}, NewInvalidPayloadError("Message must not be blank")
	}
	if len(comm.Recipients) == 0 {
		return dto.Id{}, NewInvalidPayloadError("At least one recipient is required")
	}

	//check max length of sms
	if len([]rune(comm.Message)) > s.messageMaxLen {
		return dto.Id{}, NewInvalidPayloadError("Message too long. Must be <= " + strconv.Itoa(s.messageMaxLen) + " symbols in length")
	}

	mediumData := map[string]string{
		model.FROM_VALUE:          comm.From,
		model.MESSAGE:             comm.Message,
		model.SENDER_NAME:         comm.SenderName,
		model.SENDER_PHONE:        comm.SenderPhone,
		model.SENDER_COUNTRY_CODE: comm.SenderCountryCode,
		model.APPEND_SENDER_INFO:  strconv.FormatBool(comm.AppendSenderInfo),
	}

	var futureSendTime time.Time
	if comm.FutureSendTime != nil {
		futureSendTime = *comm.FutureSendTime
	}

	created, err := s.commDao.Create(mediumData, comm.SenderId, futureSendTime)
	if err != nil {
		return dto.Id{}, err
	}

	for _, recipient := range comm.Recipients {
		phones := make([]model.Phone, 0, len(recipient.Phones))
		for _, phone := range recipient.Phones {
			phones = append(phones, model.Phone{
				CountryCode:      phone.CountryCode,
				Number:           phone.Number,
				MessagingEnabled: phone.MessagingEnabled,
			})
		}
		_, err = s.recipientDao.Create(created.Id, recipient.PersonId, phones, recipient.MergeFields)
		if err != nil {
			return dto.Id{}, err
		}
	}

	return dto.Id{Id: created.Id}, nil
}

func (s *service) ApproveCommunication(id uint32) error {
	comm, err := s.commDao.GetOneById(id)
	if err != nil {
		return err
	}
	if comm.Status != model.DRAFT {
		return NewInvalidPayloadError("Communication is not in draft status")
	}
	return s.commDao.UpdateStatus(id, model.APPROVED)
}

func (s *service) SendCommunication(ctx context.Context, id uint32) (dto.RunReport, error) {
	return s.dispatcher.Run(ctx, id)
}

func (s *service) CheckStatusOfCommunication(id uint32) (dto.CommunicationStatus, error) {
	comm, err := s.commDao.GetOneById(id)
	if err != nil {
		return dto.CommunicationStatus{}, err
	}
	recipients, err := s.recipientDao.GetAllByCommunicationId(comm.Id)
	if err != nil {
		return dto.CommunicationStatus{}, err
	}

	status := dto.CommunicationStatus{
		Id:      comm.Id,
		Status:  comm.Status,
		From:    comm.MediumDataValue(model.FROM_VALUE),
		Message: comm.MediumDataValue(model.MESSAGE),
	}
	recipientStatuses := []dto.RecipientStatus{}
	for _, rs := range recipients {
		recipientStatuses = append(recipientStatuses, dto.RecipientStatus{
			PersonId:        rs.PersonId,
			Status:          rs.Status,
			StatusNote:      rs.StatusNote,
			UniqueMessageId: rs.UniqueMessageId,
			ReceiptStatus:   rs.ReceiptStatus,
		})
	}
	status.Recipients = recipientStatuses

	return status, nil
}

func (s *service) SendAdHoc(ctx context.Context, message dto.AdHocMessage) error {
	if strings.TrimSpace(message.Text) == "" || len(message.Phones) == 0 {
		return NewInvalidPayloadError("Invalid message")
	}
	if len([]rune(message.Text)) > s.messageMaxLen {
		return NewInvalidPayloadError("Message too long. Must be <= " + strconv.Itoa(s.messageMaxLen) + " symbols in length")
	}

	s.dispatcher.SendAdHoc(ctx, message.From, message.Phones, message.Text)
	return nil
}
