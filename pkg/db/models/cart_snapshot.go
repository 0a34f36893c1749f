package models

import "time"

// CartSnapshot is the SQL backing row of a persisted cart, one per identity.
type CartSnapshot struct {
	Identity  string    `gorm:"column:identity;primaryKey;size:320"`
	Payload   string    `gorm:"column:payload;type:text;not null"`
	UpdatedAt time.Time `gorm:"column:updated_at;not null"`
}

func (CartSnapshot) TableName() string {
	return "cart_snapshots"
}
