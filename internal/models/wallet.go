package models

import (
	"time"

	"github.com/google/uuid"
)

// Coin transaction types recorded in the ledger. Amounts are signed: debits
// are negative, credits positive.
const (
	TxTypePurchase    = "purchase"
	TxTypeEarn        = "earn"
	TxTypeTipSent     = "tip_sent"
	TxTypeTipReceived = "tip_received"
)

type CoinTransaction struct {
	ID          uuid.UUID `json:"id"`
	UserID      uuid.UUID `json:"user_id"`
	Amount      int64     `json:"amount"`
	Type        string    `json:"type"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// CoinPackage is a purchasable bundle. Payments are simulated; the catalog
// is fixed in code.
type CoinPackage struct {
	ID    int     `json:"id"`
	Coins int64   `json:"coins"`
	Price float64 `json:"price"`
	Bonus int64   `json:"bonus"`
}

var CoinPackages = []CoinPackage{
	{ID: 1, Coins: 100, Price: 0.99, Bonus: 0},
	{ID: 2, Coins: 500, Price: 4.99, Bonus: 25},
	{ID: 3, Coins: 1000, Price: 9.99, Bonus: 100},
	{ID: 4, Coins: 2500, Price: 19.99, Bonus: 300},
	{ID: 5, Coins: 5000, Price: 39.99, Bonus: 750},
	{ID: 6, Coins: 10000, Price: 79.99, Bonus: 2000},
}

// EarnRewards maps activity names to their coin reward.
var EarnRewards = map[string]int64{
	"daily_login":      5,
	"post_feed":        10,
	"refer_friend":     50,
	"complete_profile": 25,
}

// PurchaseReceipt is returned by the simulated purchase flow.
type PurchaseReceipt struct {
	TransactionID string    `json:"transactionId"`
	PackageID     int       `json:"packageId"`
	Amount        int64     `json:"amount"`
	Bonus         int64     `json:"bonus"`
	Total         int64     `json:"total"`
	Price         float64   `json:"price"`
	Currency      string    `json:"currency"`
	PaymentMethod string    `json:"paymentMethod"`
	Status        string    `json:"status"`
	Timestamp     time.Time `json:"timestamp"`
}

// TipReceipt describes a completed tip transfer.
type TipReceipt struct {
	TransactionID string    `json:"transactionId"`
	FeedID        uuid.UUID `json:"feedId"`
	RecipientID   uuid.UUID `json:"recipientId"`
	Amount        int64     `json:"amount"`
	Message       string    `json:"message,omitempty"`
	Status        string    `json:"status"`
	Timestamp     time.Time `json:"timestamp"`
}
