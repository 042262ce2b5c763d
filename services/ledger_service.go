package services

import (
	"fmt"
	"log"
	"sync"

	"arena-scheduler/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Ledger is the external currency adapter. The scheduler never holds
// currency state itself. Debit returns false when funds are insufficient
// and must never apply a partial debit.
type Ledger interface {
	GetBalance(playerID string) int64
	Debit(playerID string, amount int64) bool
	Credit(playerID string, amount int64)
}

// MemoryLedger is an in-process ledger for tests and DB-less dev runs.
type MemoryLedger struct {
	mu       sync.Mutex
	balances map[string]int64
}

func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{balances: make(map[string]int64)}
}

// Deposit seeds a balance directly; not part of the Ledger interface.
func (l *MemoryLedger) Deposit(playerID string, amount int64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.balances[playerID] += amount
}

func (l *MemoryLedger) GetBalance(playerID string) int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.balances[playerID]
}

func (l *MemoryLedger) Debit(playerID string, amount int64) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if amount < 0 || l.balances[playerID] < amount {
		return false
	}
	l.balances[playerID] -= amount
	return true
}

func (l *MemoryLedger) Credit(playerID string, amount int64) {
	if amount <= 0 {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.balances[playerID] += amount
}

// WalletLedger is the Postgres-backed ledger. Every movement writes a
// WalletTransaction audit row in the same transaction as the balance change.
type WalletLedger struct {
	DB *gorm.DB
}

func NewWalletLedger(db *gorm.DB) *WalletLedger {
	return &WalletLedger{DB: db}
}

func (l *WalletLedger) GetBalance(playerID string) int64 {
	var wallet models.PlayerWallet
	if err := l.DB.Where("player_id = ?", playerID).First(&wallet).Error; err != nil {
		if err != gorm.ErrRecordNotFound {
			log.Printf("[WalletLedger] balance lookup failed for %s: %v", playerID, err)
		}
		return 0
	}
	return wallet.Balance
}

func (l *WalletLedger) Debit(playerID string, amount int64) bool {
	if amount < 0 {
		return false
	}
	if amount == 0 {
		return true
	}
	err := l.DB.Transaction(func(tx *gorm.DB) error {
		var wallet models.PlayerWallet
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("player_id = ?", playerID).
			First(&wallet).Error; err != nil {
			return fmt.Errorf("wallet lookup: %w", err)
		}
		if wallet.Balance < amount {
			return fmt.Errorf("insufficient balance (have %d, need %d)", wallet.Balance, amount)
		}
		if err := tx.Model(&wallet).
			Update("balance", wallet.Balance-amount).Error; err != nil {
			return err
		}
		return tx.Create(&models.WalletTransaction{
			ID:       uuid.NewString(),
			PlayerID: playerID,
			Amount:   -amount,
			Kind:     "debit",
		}).Error
	})
	if err != nil {
		log.Printf("[WalletLedger] debit of %d from %s rejected: %v", amount, playerID, err)
		return false
	}
	return true
}

func (l *WalletLedger) Credit(playerID string, amount int64) {
	if amount <= 0 {
		return
	}
	err := l.DB.Transaction(func(tx *gorm.DB) error {
		wallet := models.PlayerWallet{
			ID:       uuid.NewString(),
			PlayerID: playerID,
			Balance:  amount,
		}
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "player_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{"balance": gorm.Expr("player_wallets.balance + ?", amount)}),
		}).Create(&wallet).Error; err != nil {
			return err
		}
		return tx.Create(&models.WalletTransaction{
			ID:       uuid.NewString(),
			PlayerID: playerID,
			Amount:   amount,
			Kind:     "credit",
		}).Error
	})
	if err != nil {
		log.Printf("[WalletLedger] credit of %d to %s failed: %v", amount, playerID, err)
	}
}
