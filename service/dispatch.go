package service

import (
	"context"
	"strings"
	"time"

	"github.com/bricksandmortarstudio/sms-dispatch/dao"
	"github.com/bricksandmortarstudio/sms-dispatch/model"
	"github.com/bricksandmortarstudio/sms-dispatch/render"
	"github.com/bricksandmortarstudio/sms-dispatch/service/dto"
	"github.com/bricksandmortarstudio/sms-dispatch/sms"
	"github.com/bricksandmortarstudio/sms-dispatch/util"
	"go.uber.org/zap"
)

const noUsableDestinationNote = "No phone number with messaging enabled"

const (
	footerWithSenderPhone = "This message was sent by {{Sender}} on behalf of {{OrganizationName}} from a no reply number. To reply to this message send your response to {{SenderPhone}}."
	footerContactSender   = "This message was sent by {{Sender}} on behalf of {{OrganizationName}} from a no reply number. To reply to this message contact {{Sender}} directly."
	footerAdHoc           = "This message was sent by {{OrganizationName}} from a no reply number."
)

type SenderMode int

const (
	//SenderAlphanumeric declares the sender as an alphanumeric id (11 char gateway limit)
	SenderAlphanumeric SenderMode = iota
	//SenderNumeric declares the sender as a phone number composed from the
	//stored country code and national number
	SenderNumeric
)

// Policy is the per-medium configuration that distinguishes the transport
// variants: how the declared sender is normalized, the optional custom footer,
// and whether a gateway-reported failure abandons the rest of the batch.
type Policy struct {
	SenderMode SenderMode
	//Footer is rendered and appended instead of the default attribution line
	//when the communication asks for sender info
	Footer string
	//StopOnGatewayFailure stops the run on the first gateway-reported failure,
	//leaving the remaining recipients pending
	StopOnGatewayFailure bool
}

// Config is the configuration surface the dispatcher consumes
type Config struct {
	OrganizationName         string
	OrganizationAbbreviation string
	PublicCallbackRoot       string
	GlobalFields             map[string]string
}

// Dispatcher drains the pending recipients of an approved communication through
// the gateway, one at a time, writing each outcome back before moving on
type Dispatcher struct {
	gateway      sms.Gateway
	commDao      dao.CommunicationDao
	recipientDao dao.RecipientDao
	historyDao   dao.HistoryDao
	cfg          Config
	policy       Policy
}

func NewDispatcher(gateway sms.Gateway, commDao dao.CommunicationDao, recipientDao dao.RecipientDao, historyDao dao.HistoryDao, cfg Config, policy Policy) *Dispatcher {
	return &Dispatcher{
		gateway:      gateway,
		commDao:      commDao,
		recipientDao: recipientDao,
		historyDao:   historyDao,
		cfg:          cfg,
		policy:       policy,
	}
}

type outcome int

const (
	outcomeDelivered outcome = iota
	outcomeSkipped
	outcomeRejected
	outcomeFailed
)

// Run dispatches the communication's pending recipients until none remain.
// Safe to re-invoke: recipients already in a terminal state are never
// reprocessed. Only a failure before the loop starts is returned as an error;
// per-recipient failures are recorded on the recipient and the loop continues.
func (d *Dispatcher) Run(ctx context.Context, communicationId uint32) (dto.RunReport, error) {
	var report dto.RunReport

	comm, err := d.commDao.GetOneById(communicationId)
	if err != nil {
		return report, err
	}

	hasPending, err := d.recipientDao.HasPending(comm.Id)
	if err != nil {
		return report, err
	}

	if comm.Status != model.APPROVED || !hasPending || !comm.IsDue(time.Now()) {
		//guard failed, an empty run is not an error
		return report, nil
	}

	from := d.fromValue(comm)
	if util.IsBlank(from) {
		zap.L().Warn("Communication has no usable sender, skipping run", zap.Uint32("communicationId", comm.Id))
		return report, nil
	}

	callbackUrl := d.callbackUrl(comm)
	footer := d.footerTemplate(comm)
	exhausted := false

	for {
		select {
		case <-ctx.Done():
			return report, ctx.Err()
		default:
		}

		recipient, err := d.recipientDao.ClaimNextPending(comm.Id)
		if err != nil {
			return report, err
		}
		if recipient == nil {
			exhausted = true
			break
		}

		report.Processed++

		result, err := d.processRecipient(ctx, comm, *recipient, from, footer, callbackUrl)
		if err != nil {
			//a failed status write-back is the one mid-loop condition that must
			//stop the run: proceeding could break the at-most-once guarantee
			return report, err
		}

		switch result {
		case outcomeDelivered:
			report.Delivered++
		case outcomeSkipped:
			report.Skipped++
		case outcomeRejected, outcomeFailed:
			report.Failed++
		}

		if result == outcomeRejected && d.policy.StopOnGatewayFailure {
			zap.L().Warn("Stopping batch on gateway failure",
				zap.Uint32("communicationId", comm.Id), zap.Uint32("recipientId", recipient.Id))
			break
		}
	}

	if exhausted {
		err = d.commDao.UpdateStatus(comm.Id, model.SENT)
		if err != nil {
			zap.L().Error("Error marking communication sent", zap.Error(err))
		}
	}

	return report, nil
}

func (d *Dispatcher) processRecipient(ctx context.Context, comm model.Communication, recipient model.Recipient, from, footer, callbackUrl string) (outcome, error) {
	phone, ok := recipient.MessagingPhone()
	if !ok {
		//no gateway call is made for an unreachable recipient
		return outcomeSkipped, d.recipientDao.MarkFailed(recipient.Id, noUsableDestinationNote)
	}

	message := d.renderMessage(comm, recipient, footer)

	ack, err := d.gateway.Send(ctx, sms.Request{
		From:        from,
		To:          sms.E164(phone.CountryCode, phone.Number),
		Body:        message,
		CallbackUrl: callbackUrl,
	})
	if err != nil {
		if rejected, ok := err.(*sms.RejectedError); ok {
			return outcomeRejected, d.recipientDao.MarkFailed(recipient.Id, "Gateway rejected: "+rejected.Reason)
		}
		return outcomeFailed, d.recipientDao.MarkFailed(recipient.Id, "Gateway exception: "+err.Error())
	}

	err = d.recipientDao.MarkDelivered(recipient.Id, ack.MessageId, d.gateway.Name())
	if err != nil {
		return outcomeDelivered, err
	}

	//audit failures are logged and swallowed, they never affect recipient state
	err = d.historyDao.Record(comm.SenderId, recipient.PersonId, d.auditSummary(from), message, comm.Id)
	if err != nil {
		zap.L().Warn("Error recording send history", zap.Error(err), zap.Uint32("recipientId", recipient.Id))
	}

	return outcomeDelivered, nil
}

// renderMessage resolves the message template plus exactly one footer variant
// against the layered merge fields, recipient fields winning ties
func (d *Dispatcher) renderMessage(comm model.Communication, recipient model.Recipient, footer string) string {
	fields := render.MergeFields(
		d.cfg.GlobalFields,
		comm.MediumData,
		map[string]string{
			"Sender":           comm.MediumDataValue(model.SENDER_NAME),
			"SenderPhone":      comm.MediumDataValue(model.SENDER_PHONE),
			"OrganizationName": d.cfg.OrganizationName,
		},
		recipient.MergeFields,
	)

	return render.Resolve(comm.MediumDataValue(model.MESSAGE)+"\n"+footer, fields)
}

// footerTemplate picks the single footer appended to every message of the run
func (d *Dispatcher) footerTemplate(comm model.Communication) string {
	appendInfo := util.AsBool(comm.MediumDataValue(model.APPEND_SENDER_INFO), false)
	if appendInfo && !util.IsBlank(d.policy.Footer) {
		return d.policy.Footer
	}
	if !util.IsBlank(comm.MediumDataValue(model.SENDER_PHONE)) {
		return footerWithSenderPhone
	}
	return footerContactSender
}

// fromValue normalizes the declared sender per the medium policy
func (d *Dispatcher) fromValue(comm model.Communication) string {
	if d.policy.SenderMode == SenderNumeric {
		return sms.E164(comm.MediumDataValue(model.SENDER_COUNTRY_CODE), comm.MediumDataValue(model.SENDER_PHONE))
	}

	from := sms.CleanAlphanumeric(comm.MediumDataValue(model.FROM_VALUE))
	if util.IsBlank(from) {
		from = sms.FallbackSenderId(d.cfg.OrganizationName, d.cfg.OrganizationAbbreviation)
	}
	return from
}

func (d *Dispatcher) callbackUrl(comm model.Communication) string {
	if util.IsBlank(d.cfg.PublicCallbackRoot) {
		return ""
	}
	return strings.TrimRight(d.cfg.PublicCallbackRoot, "/") + "/webhooks/sms/" + comm.CallbackToken
}

func (d *Dispatcher) auditSummary(from string) string {
	if d.policy.SenderMode == SenderAlphanumeric {
		return "Sent an alphanumeric SMS message from " + from + "."
	}
	return "Sent no reply SMS message."
}

// SendAdHoc sends an already rendered message to the given phones, outside any
// communication. Failures are per-phone and logged, not returned.
func (d *Dispatcher) SendAdHoc(ctx context.Context, from string, phones []string, body string) {
	if d.policy.SenderMode == SenderAlphanumeric {
		from = sms.CleanAlphanumeric(from)
	}
	if util.IsBlank(from) {
		from = sms.FallbackSenderId(d.cfg.OrganizationName, d.cfg.OrganizationAbbreviation)
	}

	message := render.Resolve(body+"\n"+footerAdHoc, render.MergeFields(
		d.cfg.GlobalFields,
		map[string]string{"OrganizationName": d.cfg.OrganizationName},
	))

	//remove duplicates
	uniquePhones := make(map[string]bool)
	for _, phone := range phones {
		uniquePhones[phone] = true
	}

	for phone := range uniquePhones {
		_, err := d.gateway.Send(ctx, sms.Request{From: from, To: phone, Body: message})
		if err != nil {
			zap.L().Warn("Error sending ad hoc sms", zap.String("phone", phone), zap.Error(err))
		}
	}
}
