package dto

import "time"

type Id struct {
	Id uint32 `json:"id"`
}

type Phone struct {
	CountryCode      string `json:"countryCode"`
	Number           string `json:"number"`
	MessagingEnabled bool   `json:"messagingEnabled"`
}

type Recipient struct {
	PersonId    uint32            `json:"personId"`
	Phones      []Phone           `json:"phones"`
	MergeFields map[string]string `json:"mergeFields,omitempty"`
}

type Communication struct {
	From              string      `json:"from"`
	Message           string      `json:"message"`
	SenderName        string      `json:"senderName"`
	SenderPhone       string      `json:"senderPhone"`
	SenderCountryCode string      `json:"senderCountryCode"`
	AppendSenderInfo  bool        `json:"appendSenderInfo"`
	SenderId          uint32      `json:"senderId"`
	FutureSendTime    *time.Time  `json:"futureSendTime,omitempty"`
	Recipients        []Recipient `json:"recipients"`
}

type RecipientStatus struct {
	PersonId        uint32 `json:"personId"`
	Status          string `json:"status"`
	StatusNote      string `json:"statusNote,omitempty"`
	UniqueMessageId string `json:"uniqueMessageId,omitempty"`
	ReceiptStatus   string `json:"receiptStatus,omitempty"`
}

type CommunicationStatus struct {
	Id         uint32            `json:"id"`
	Status     string            `json:"status"`
	From       string            `json:"from"`
	Message    string            `json:"message"`
	Recipients []RecipientStatus `json:"recipients"`
}

type AdHocMessage struct {
	From   string   `json:"from"`
	Text   string   `json:"text"`
	Phones []string `json:"phones"`
}

type RunReport struct {
	Processed int `json:"processed"`
	Delivered int `json:"delivered"`
	Failed    int `json:"failed"`
	Skipped   int `json:"skipped"`
}

type ReceiptNotification struct {
	CommunicationId uint32 `json:"communicationId"`
	PersonId        uint32 `json:"personId"`
	UniqueMessageId string `json:"uniqueMessageId"`
	ReceiptStatus   string `json:"receiptStatus"`
}
