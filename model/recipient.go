package model

import "time"

const (
	//recipient delivery statuses
	PENDING   string = "PENDING"
	DELIVERED        = "DELIVERED"
	FAILED           = "FAILED"

	//gateway receipt statuses
	DELIVRD  = "DELIVRD"
	EXPIRED  = "EXPIRED"
	DELETED  = "DELETED"
	ACCEPTD  = "ACCEPTD"
	UNDELIV  = "UNDELIV"
	REJECTED = "REJECTED"
	UNKNOWN  = "UNKNOWN"
	ENROUTE  = "ENROUTE"
)

type Phone struct {
	CountryCode      string
	Number           string
	MessagingEnabled bool
}

type Recipient struct {
	Id              uint32 `storm:"id,increment"`
	CommunicationId uint32 `storm:"index"`
	PersonId        uint32
	Phones          []Phone
	MergeFields     map[string]string
	Status          string `storm:"index"`
	StatusNote      string
	UniqueMessageId string `storm:"index"`
	TransportName   string
	ReceiptStatus   string
	CreatedAt       time.Time `storm:"index"`
}

// MessagingPhone returns the first phone flagged for messaging
func (r Recipient) MessagingPhone() (Phone, bool) {
	for _, p := range r.Phones {
		if p.MessagingEnabled {
			return p, true
		}
	}
	return Phone{}, false
}
