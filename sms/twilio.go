package sms

import (
	"context"
	"encoding/json"
	"errors"
	"io/ioutil"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bricksandmortarstudio/sms-dispatch/util"
	"golang.org/x/time/rate"
)

const twilioApiRoot = "https://api.twilio.com/2010-04-01"

type twilioMessageResponse struct {
	Sid          string `json:"sid"`
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message"`
}

type twilioGateway struct {
	accountSid  string
	authToken   string
	apiRoot     string
	httpClient  *http.Client
	rateLimiter RateLimiter
}

// NewTwilioGateway returns a Gateway backed by the Twilio messages REST API.
// tps caps outgoing requests per second.
func NewTwilioGateway(accountSid, authToken string, tps int) Gateway {
	return &twilioGateway{
		accountSid:  accountSid,
		authToken:   authToken,
		apiRoot:     twilioApiRoot,
		httpClient:  &http.Client{Timeout: 30 * time.Second},
		rateLimiter: rate.NewLimiter(rate.Limit(tps), 1),
	}
}

func (g *twilioGateway) Name() string {
	return "twilio"
}

func (g *twilioGateway) Send(ctx context.Context, req Request) (*Ack, error) {
	//impose tps limit
	err := g.rateLimiter.Wait(ctx)
	if err != nil {
		return nil, err
	}

	form := url.Values{}
	form.Set("From", req.From)
	form.Set("To", req.To)
	form.Set("Body", req.Body)
	if !util.IsBlank(req.CallbackUrl) {
		form.Set("StatusCallback", req.CallbackUrl)
	}

	httpReq, err := http.NewRequest("POST", g.apiRoot+"/Accounts/"+g.accountSid+"/Messages.json", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	httpReq = httpReq.WithContext(ctx)
	httpReq.SetBasicAuth(g.accountSid, g.authToken)
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := g.httpClient.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := ioutil.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var message twilioMessageResponse
	err = json.Unmarshal(body, &message)
	if err != nil {
		return nil, err
	}

	//5xx is a provider outage, not a verdict on the message
	if resp.StatusCode >= 500 {
		return nil, errors.New("twilio unavailable: " + resp.Status)
	}

	if resp.StatusCode >= 400 || message.Status == "failed" {
		reason := message.ErrorMessage
		if util.IsBlank(reason) {
			reason = resp.Status
		}
		return nil, &RejectedError{Reason: reason}
	}

	return &Ack{MessageId: message.Sid}, nil
}
