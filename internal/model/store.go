package model

import (
	"time"

	"github.com/google/uuid"
)

// StoreStatus is a store's lifecycle state.
type StoreStatus string

// Store states.
const (
	StoreActive   StoreStatus = "ACTIVE"
	StoreInactive StoreStatus = "INACTIVE"
)

// Store is a participating merchant.
type Store struct {
	ID        uuid.UUID   `json:"id" db:"id"`
	Name      string      `json:"name" db:"name"`
	Category  string      `json:"category" db:"category"`
	Address   string      `json:"address" db:"address"`
	Latitude  float64     `json:"latitude" db:"latitude"`
	Longitude float64     `json:"longitude" db:"longitude"`
	Status    StoreStatus `json:"status" db:"status"`
	CreatedAt time.Time   `json:"createdAt" db:"created_at"`
}

// Customer is an app user; lifetime counters are mutated only by the
// redemption flow.
type Customer struct {
	ID                    uuid.UUID `json:"id" db:"id"`
	Nickname              string    `json:"nickname" db:"nickname"`
	StatsCouponsUsed      int       `json:"statsCouponsUsed" db:"stats_coupons_used"`
	StatsTotalSavedAmount int64     `json:"statsTotalSavedAmount" db:"stats_total_saved_amount"`
	CreatedAt             time.Time `json:"createdAt" db:"created_at"`
}
