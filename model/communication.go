package model

import "time"

const (
	//communication statuses
	DRAFT    string = "DRAFT"
	APPROVED        = "APPROVED"
	SENT            = "SENT"
)

const (
	//medium data keys
	FROM_VALUE          = "FromValue"
	MESSAGE             = "Message"
	SENDER_NAME         = "SenderName"
	SENDER_PHONE        = "SenderPhone"
	SENDER_COUNTRY_CODE = "SenderCountryCode"
	APPEND_SENDER_INFO  = "AppendSenderInfo"
)

type Communication struct {
	Id             uint32 `storm:"id,increment"`
	Status         string `storm:"index"`
	FutureSendTime time.Time
	MediumData     map[string]string
	SenderId       uint32
	CallbackToken  string    `storm:"unique"`
	CreatedAt      time.Time `storm:"index"`
}

// MediumDataValue returns the medium data value for the key or "" when absent
func (c Communication) MediumDataValue(key string) string {
	if c.MediumData == nil {
		return ""
	}
	return c.MediumData[key]
}

// IsDue reports whether the communication has no future send time or it has already passed
func (c Communication) IsDue(now time.Time) bool {
	return c.FutureSendTime.IsZero() || !c.FutureSendTime.After(now)
}
