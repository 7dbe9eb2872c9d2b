package model

import "time"

// History is one audit record of a sent message
type History struct {
	Id          uint32 `storm:"id,increment"`
	CreatedById uint32
	EntityId    uint32
	Summary     string
	Caption     string
	RelatedId   uint32    `storm:"index"`
	CreatedAt   time.Time `storm:"index"`
}
