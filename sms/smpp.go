package sms

import (
	"context"
	"errors"
	"regexp"
	"strconv"
	"sync"
	"sync/atomic"
	"time"
	"unicode/utf16"

	smpp "github.com/CodeMonkeyKevin/smpp34"
	"github.com/bricksandmortarstudio/sms-dispatch/log"
	"github.com/bricksandmortarstudio/sms-dispatch/util"
	"github.com/cskr/pubsub"
	"golang.org/x/time/rate"
)

// RECEIPTS is the pubsub topic delivery receipts are published on
const RECEIPTS = "receipts"

const submitTimeout = 30 * time.Second

const (
	dataCodingDefault = 0
	dataCodingUcs2    = 8
)

var dlvRctRx = regexp.MustCompile(`(?s)id:(\S+) .* stat:([A-Z]+)`)

// Receipt is a gateway-reported delivery status update for a sent message
type Receipt struct {
	MessageId string
	Status    string
}

type TransceiverWrapper interface {
	Unbind() error
	Close()
	Read() (smpp.Pdu, error)
	SubmitSm(sourceAddr, destinationAddr, shortMessage string, params *smpp.Params) (seq uint32, err error)
	DeliverSmResp(seq uint32, status smpp.CMDStatus) error
}

type TransceiverWrapperFactory interface {
	GetTransceiver(host string, port int, eli int, bindParams smpp.Params) (TransceiverWrapper, error)
}

type transceiverWrapperFactory struct {
}

type transceiverWrapper struct {
	tr *smpp.Transceiver
}

func (t *transceiverWrapper) Unbind() error {
	return t.tr.Unbind()
}

func (t *transceiverWrapper) Close() {
	t.tr.Close()
}

func (t *transceiverWrapper) Read() (smpp.Pdu, error) {
	return t.tr.Read()
}

func (t *transceiverWrapper) SubmitSm(sourceAddr, destinationAddr, shortMessage string, params *smpp.Params) (seq uint32, err error) {
	return t.tr.SubmitSm(sourceAddr, destinationAddr, shortMessage, params)
}

func (t *transceiverWrapper) DeliverSmResp(seq uint32, status smpp.CMDStatus) error {
	return t.tr.DeliverSmResp(seq, status)
}

func (t *transceiverWrapperFactory) GetTransceiver(host string, port int, eli int, bindParams smpp.Params) (TransceiverWrapper, error) {
	tr, err := smpp.NewTransceiver(host, port, eli, bindParams)
	if err != nil {
		return nil, err
	}
	return &transceiverWrapper{tr: tr}, nil
}

type submitResult struct {
	status    uint32
	messageId string
}

// SmppGateway is a Gateway bound over an SMPP transceiver session.
// Submits are correlated with their submit_sm_resp so Send stays synchronous,
// and deliver_sm receipts are published on the shared receipt bus.
type SmppGateway struct {
	smscIp           string
	smscPort         int
	smscAccount      string
	smscPassword     string
	smscEnqLnkIntrvl int

	connected int32

	transceiver        TransceiverWrapper
	transceiverFactory TransceiverWrapperFactory
	rateLimiter        RateLimiter
	receipts           *pubsub.PubSub

	mu      sync.Mutex
	waiters map[uint32]chan submitResult
}

func NewSmppGateway(smscIp string, smscPort int, smscAccount, smscPassword string, smscEnqLnkIntrvl, tps int, receipts *pubsub.PubSub) *SmppGateway {
	return &SmppGateway{
		smscIp:             smscIp,
		smscPort:           smscPort,
		smscAccount:        smscAccount,
		smscPassword:       smscPassword,
		smscEnqLnkIntrvl:   smscEnqLnkIntrvl,
		rateLimiter:        rate.NewLimiter(rate.Limit(tps), 1),
		receipts:           receipts,
		transceiverFactory: &transceiverWrapperFactory{},
		waiters:            make(map[uint32]chan submitResult),
	}
}

func (g *SmppGateway) Name() string {
	return "smpp"
}

// Start connects to the SMSC and launches the read and reconnect loops
func (g *SmppGateway) Start() error {
	err := g.Connect()
	if err != nil {
		return err
	}

	go g.readPackets()
	go g.checkConnection()

	return nil
}

func (g *SmppGateway) Connect() error {
	defer func() {
		r := recover()
		if r != nil {
			log.Error.Println("Recovered in Connect", r)
			atomic.StoreInt32(&g.connected, 0)
		}
	}()

	log.Info.Println("Connecting to SMSC")

	var err error
	g.transceiver, err = g.transceiverFactory.GetTransceiver(
		g.smscIp,
		g.smscPort,
		g.smscEnqLnkIntrvl,
		smpp.Params{
			"system_id": g.smscAccount,
			"password":  g.smscPassword,
		},
	)

	if err == nil {
		atomic.StoreInt32(&g.connected, 1)
		log.Info.Println("Connection succeeded")
	} else {
		atomic.StoreInt32(&g.connected, 0)
		log.Error.Println("Connection failed")
	}

	return err
}

func (g *SmppGateway) Disconnect() {
	defer func() {
		r := recover()
		if r != nil {
			log.Error.Println("Recovered in Disconnect", r)
		}
		atomic.StoreInt32(&g.connected, 0)
	}()

	log.Info.Println("Disconnecting from SMSC")

	if g.transceiver != nil {
		_ = g.transceiver.Unbind()
		g.transceiver.Close()
	}
}

func (g *SmppGateway) Reconnect() error {
	g.Disconnect()
	return g.Connect()
}

func (g *SmppGateway) IsConnected() bool {
	return atomic.LoadInt32(&g.connected) == 1
}

func (g *SmppGateway) Send(ctx context.Context, req Request) (*Ack, error) {
	//impose tps limit
	err := g.rateLimiter.Wait(ctx)
	if err != nil {
		return nil, err
	}

	if !g.IsConnected() {
		return nil, errors.New("not connected to SMSC")
	}

	//the waiter is registered under the same lock processSubmitSmResp uses for
	//lookup, so a response read before registration completes cannot be dropped
	g.mu.Lock()
	seq, err := g.submit(req)
	if err != nil {
		g.mu.Unlock()
		return nil, err
	}
	resultCh := make(chan submitResult, 1)
	g.waiters[seq] = resultCh
	g.mu.Unlock()
	defer func() {
		g.mu.Lock()
		delete(g.waiters, seq)
		g.mu.Unlock()
	}()

	select {
	case result := <-resultCh:
		if result.status != 0 {
			return nil, &RejectedError{Reason: "submit_sm_resp status " + strconv.FormatUint(uint64(result.status), 10)}
		}
		return &Ack{MessageId: result.messageId}, nil
	case <-time.After(submitTimeout):
		return nil, errors.New("timed out waiting for submit_sm_resp")
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (g *SmppGateway) submit(req Request) (uint32, error) {
	defer func() {
		r := recover()
		if r != nil {
			log.Error.Println("Recovered in submit", r)
			atomic.StoreInt32(&g.connected, 0)
		}
	}()

	//determine encoding
	msgEncoding := dataCodingDefault
	text := req.Body
	if !util.IsASCII(text) {
		msgEncoding = dataCodingUcs2
		text = string(ucs2Encode(text))
	}

	return g.transceiver.SubmitSm(req.From, req.To, text, &smpp.Params{
		smpp.SOURCE_ADDR_TON:     5,
		smpp.SOURCE_ADDR_NPI:     1,
		smpp.DEST_ADDR_TON:       1,
		smpp.DEST_ADDR_NPI:       1,
		smpp.REGISTERED_DELIVERY: 1,
		smpp.DATA_CODING:         msgEncoding,
	})
}

func (g *SmppGateway) readPackets() {
	for {
		if g.IsConnected() {
			err := g.readPacket()
			log.ErrIfErr("", err)
		} else {
			time.Sleep(time.Second)
		}
	}
}

func (g *SmppGateway) checkConnection() {
	for {
		if !g.IsConnected() {
			err := g.Reconnect()
			log.ErrIfErr("", err)
		}
		time.Sleep(time.Second)
	}
}

func (g *SmppGateway) readPacket() error {
	defer func() {
		r := recover()
		if r != nil {
			atomic.StoreInt32(&g.connected, 0)
			log.Error.Println("Recovered in readPacket", r)
		}
	}()

	pdu, err := g.transceiver.Read() // This is blocking
	if err != nil {
		if _, ok := err.(smpp.SmppErr); ok {
			log.Warn.Println("Error reading packet", err)
		} else {
			//set connected to false
			atomic.StoreInt32(&g.connected, 0)
			log.Error.Println("Error reading packet", err)
		}
		return err
	}

	// Transceiver auto handles EnquireLinks
	switch pdu.GetHeader().Id {
	case smpp.SUBMIT_SM_RESP:
		g.processSubmitSmResp(pdu)

	case smpp.DELIVER_SM:
		//send deliverSmResp
		err = g.transceiver.DeliverSmResp(pdu.GetHeader().Sequence, smpp.ESME_ROK)
		log.ErrIfErr("DeliverSmResp err:", err)

		g.processDeliverSm(pdu)

	default:
		log.Trace.Println("PDU ID:", pdu.GetHeader().Id)
	}

	return nil
}

func (g *SmppGateway) processSubmitSmResp(pdu smpp.Pdu) {
	seq := pdu.GetHeader().Sequence
	status := uint32(pdu.GetHeader().Status)
	messageId := normalizeMessageId(pdu.GetField("message_id").String())

	g.mu.Lock()
	resultCh, found := g.waiters[seq]
	g.mu.Unlock()
	if !found {
		log.Warn.Println("No waiter for submit_sm_resp seq", seq)
		return
	}

	//a retransmitted response for an already resolved waiter must not block the read loop
	select {
	case resultCh <- submitResult{status: status, messageId: messageId}:
	default:
	}

	log.Info.Printf("SubmitSmResp: seq=%d, messageId=%s, status=%d\n", seq, messageId, status)
}

func (g *SmppGateway) processDeliverSm(pdu smpp.Pdu) {
	dlvSm := pdu.GetField("short_message").String()

	res := dlvRctRx.FindAllStringSubmatch(dlvSm, -1)
	if len(res) != 1 || len(res[0]) != 3 {
		log.Error.Println("Failed to parse deliver_sm", dlvSm)
		return
	}
	messageId := normalizeMessageId(res[0][1])
	status := res[0][2]

	g.receipts.Pub(Receipt{MessageId: messageId, Status: status}, RECEIPTS)

	log.Info.Printf("DeliverSm: messageId=%s, status=%s\n", messageId, status)
}

// normalizeMessageId maps SMSCs that report the same message id in decimal on
// submit_sm_resp and hexadecimal on deliver_sm (or vice versa) onto one form
func normalizeMessageId(id string) string {
	n, err := strconv.ParseUint(id, 10, 64)
	if err != nil {
		n, err = strconv.ParseUint(id, 16, 64)
		if err != nil {
			return id
		}
	}
	return strconv.FormatUint(n, 10)
}

func ucs2Encode(s string) []byte {
	codes := utf16.Encode([]rune(s))
	b := make([]byte, 0, len(codes)*2)
	for _, code := range codes {
		b = append(b, byte(code>>8), byte(code))
	}
	return b
}
