package models

import "time"

// PlayerWallet is the DB-backed balance row behind the ledger adapter.
// The scheduler core never touches these models directly; it only sees the
// Ledger interface.
type PlayerWallet struct {
	ID        string    `gorm:"primaryKey;type:uuid" json:"id"`
	PlayerID  string    `gorm:"uniqueIndex;not null" json:"player_id"`
	Balance   int64     `gorm:"not null;default:0" json:"balance"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// WalletTransaction is an audit row for every debit and credit.
type WalletTransaction struct {
	ID        string    `gorm:"primaryKey;type:uuid" json:"id"`
	PlayerID  string    `gorm:"index;not null" json:"player_id"`
	Amount    int64     `gorm:"not null" json:"amount"` // negative for debits
	Kind      string    `gorm:"type:varchar(16);not null" json:"kind"`
	Reference string    `json:"reference,omitempty"` // event id or free-form note
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}
