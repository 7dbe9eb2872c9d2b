package sms

import (
	"context"
	"strings"
	"unicode"

	"github.com/bricksandmortarstudio/sms-dispatch/util"
)

// AlphanumericSenderMaxLen is the common gateway limit for alphanumeric sender ids
const AlphanumericSenderMaxLen = 11

type RateLimiter interface {
	// Wait blocks until the limiter permits an event to happen.
	Wait(ctx context.Context) error
}

type Request struct {
	From        string
	To          string
	Body        string
	CallbackUrl string
}

// Ack acknowledges a message the gateway accepted
type Ack struct {
	//MessageId is the provider-assigned message identifier
	MessageId string
}

// RejectedError is a failure the gateway reported explicitly,
// as opposed to a transport error reaching the gateway
type RejectedError struct {
	Reason string
}

func (e *RejectedError) Error() string {
	return "gateway rejected message: " + e.Reason
}

type Gateway interface {
	//Send submits one message. A non-nil *RejectedError means the gateway
	//refused the message; any other error is a transport failure.
	Send(ctx context.Context, req Request) (*Ack, error)
	//Name identifies the transport in recipient records
	Name() string
}

// CleanAlphanumeric strips everything but letters, digits and whitespace from
// the sender id, collapses whitespace and truncates to AlphanumericSenderMaxLen
func CleanAlphanumeric(from string) string {
	var b strings.Builder
	for _, r := range from {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			b.WriteRune(r)
		}
	}
	return util.Truncate(util.CollapseSpaces(b.String()), AlphanumericSenderMaxLen)
}

// E164 composes an international number from a stored country code and national number
func E164(countryCode, number string) string {
	if util.IsBlank(countryCode) {
		return number
	}
	return "+" + countryCode + number
}

// FallbackSenderId derives a usable alphanumeric sender id from the organization
// name, preferring the configured abbreviation when the name is too long
func FallbackSenderId(organizationName, organizationAbbreviation string) string {
	if len([]rune(organizationName)) <= AlphanumericSenderMaxLen {
		return organizationName
	}
	if !util.IsBlank(organizationAbbreviation) && len([]rune(organizationAbbreviation)) <= AlphanumericSenderMaxLen {
		return organizationAbbreviation
	}
	return util.Truncate(strings.Replace(organizationName, " ", "", -1), AlphanumericSenderMaxLen)
}
