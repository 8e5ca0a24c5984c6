package models

import "time"

// CartSnapshot is the durable copy of one session's cart, keyed by session key.
type CartSnapshot struct {
	SessionKey string    `gorm:"primaryKey;type:varchar(128)"`
	Payload    string    `gorm:"type:text;not null"`
	UpdatedAt  time.Time
}
