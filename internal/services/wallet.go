package services

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/socialvibe/socialvibe/internal/models"
)

var (
	ErrInvalidAmount       = errors.New("amount must be positive")
	ErrInsufficientBalance = errors.New("insufficient coin balance")
	ErrCannotTipSelf       = errors.New("cannot tip your own feed")
	ErrPackageNotFound     = errors.New("coin package not found")
	ErrUnknownActivity     = errors.New("unknown earn activity")
)

// WalletService moves Vibe coins. Every balance change locks the user row,
// enforces the non-negative floor and appends a ledger entry, all inside one
// transaction. Tips touch two wallets and the feed entry atomically.
type WalletService struct {
	db DB
}

func NewWalletService(db DB) *WalletService {
	return &WalletService{db: db}
}

func (s *WalletService) Balance(ctx context.Context, userID uuid.UUID) (int64, error) {
	var balance int64
	err := s.db.QueryRow(ctx,
		`SELECT vibe_coins FROM users WHERE id = $1 AND is_active = true`,
		userID,
	).Scan(&balance)
	if isNoRows(err) {
		return 0, ErrUserNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("reading balance: %w", err)
	}
	return balance, nil
}

// applyDelta locks the wallet row, applies a signed delta and appends the
// ledger entry. Callers run it inside a transaction they commit themselves.
func (s *WalletService) applyDelta(ctx context.Context, tx Tx, userID uuid.UUID, delta int64, txType, description string) (int64, error) {
	var balance int64
	err := tx.QueryRow(ctx,
		`SELECT vibe_coins FROM users WHERE id = $1 AND is_active = true FOR UPDATE`,
		userID,
	).Scan(&balance)
	if isNoRows(err) {
		return 0, ErrUserNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("locking wallet: %w", err)
	}

	newBalance := balance + delta
	if newBalance < 0 {
		return 0, ErrInsufficientBalance
	}

	if _, err := tx.Exec(ctx,
		`UPDATE users SET vibe_coins = $1, updated_at = NOW() WHERE id = $2`,
		newBalance, userID,
	); err != nil {
		return 0, fmt.Errorf("updating balance: %w", err)
	}

	if _, err := tx.Exec(ctx,
		`INSERT INTO coin_transactions (user_id, amount, tx_type, description)
		 VALUES ($1, $2, $3, $4)`,
		userID, delta, txType, description,
	); err != nil {
		return 0, fmt.Errorf("recording transaction: %w", err)
	}

	return newBalance, nil
}

// Credit adds amount to the user's wallet and returns the new balance.
func (s *WalletService) Credit(ctx context.Context, userID uuid.UUID, amount int64, txType, description string) (int64, error) {
	if amount <= 0 {
		return 0, ErrInvalidAmount
	}
	return s.transfer(ctx, userID, amount, txType, description)
}

// Debit removes amount from the user's wallet and returns the new balance.
func (s *WalletService) Debit(ctx context.Context, userID uuid.UUID, amount int64, txType, description string) (int64, error) {
	if amount <= 0 {
		return 0, ErrInvalidAmount
	}
	return s.transfer(ctx, userID, -amount, txType, description)
}

func (s *WalletService) transfer(ctx context.Context, userID uuid.UUID, delta int64, txType, description string) (int64, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback(ctx)
		}
	}()

	newBalance, err := s.applyDelta(ctx, tx, userID, delta, txType, description)
	if err != nil {
		return 0, err
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("committing transfer: %w", err)
	}
	committed = true
	return newBalance, nil
}

// Purchase credits a coin package. Payment is simulated; the method is
// recorded on the receipt but never charged.
func (s *WalletService) Purchase(ctx context.Context, userID uuid.UUID, packageID int, paymentMethod string) (*models.PurchaseReceipt, int64, error) {
	var pkg *models.CoinPackage
	for i := range models.CoinPackages {
		if models.CoinPackages[i].ID == packageID {
			pkg = &models.CoinPackages[i]
			break
		}
	}
	if pkg == nil {
		return nil, 0, ErrPackageNotFound
	}

	total := pkg.Coins + pkg.Bonus
	description := fmt.Sprintf("Purchased package %d (%d coins + %d bonus)", pkg.ID, pkg.Coins, pkg.Bonus)
	newBalance, err := s.Credit(ctx, userID, total, models.TxTypePurchase, description)
	if err != nil {
		return nil, 0, err
	}

	receipt := &models.PurchaseReceipt{
		TransactionID: newReceiptID(),
		PackageID:     pkg.ID,
		Amount:        pkg.Coins,
		Bonus:         pkg.Bonus,
		Total:         total,
		Price:         pkg.Price,
		Currency:      "USD",
		PaymentMethod: paymentMethod,
		Status:        "completed",
		Timestamp:     time.Now(),
	}
	return receipt, newBalance, nil
}

// Earn credits the reward for a named activity.
func (s *WalletService) Earn(ctx context.Context, userID uuid.UUID, activity string) (int64, int64, error) {
	reward, ok := models.EarnRewards[activity]
	if !ok {
		return 0, 0, ErrUnknownActivity
	}

	newBalance, err := s.Credit(ctx, userID, reward, models.TxTypeEarn, "Earned via "+activity)
	if err != nil {
		return 0, 0, err
	}
	return reward, newBalance, nil
}

// Tip transfers coins from tipper to the feed author. The tipper debit, the
// tip row with its total_tips bump and the author credit commit together.
func (s *WalletService) Tip(ctx context.Context, tipperID, feedID uuid.UUID, amount int64, message string) (*models.TipReceipt, int64, error) {
	if amount <= 0 {
		return nil, 0, ErrInvalidAmount
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("beginning transaction: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback(ctx)
		}
	}()

	var authorID uuid.UUID
	var status models.FeedStatus
	err = tx.QueryRow(ctx,
		`SELECT author_id, status FROM feeds WHERE id = $1 FOR UPDATE`,
		feedID,
	).Scan(&authorID, &status)
	if isNoRows(err) {
		return nil, 0, ErrFeedNotFound
	}
	if err != nil {
		return nil, 0, fmt.Errorf("locking feed: %w", err)
	}
	if status != models.FeedStatusActive {
		return nil, 0, ErrFeedNotFound
	}
	if authorID == tipperID {
		return nil, 0, ErrCannotTipSelf
	}

	// Two users tipping each other at once would otherwise lock the wallet
	// rows in opposite orders and deadlock. Take both locks lesser id first;
	// applyDelta then re-reads rows this transaction already holds.
	first, second := tipperID, authorID
	if bytes.Compare(second[:], first[:]) < 0 {
		first, second = second, first
	}
	for _, id := range []uuid.UUID{first, second} {
		if err := lockWallet(ctx, tx, id); err != nil {
			return nil, 0, err
		}
	}

	tipperBalance, err := s.applyDelta(ctx, tx, tipperID, -amount,
		models.TxTypeTipSent, fmt.Sprintf("Tipped feed %s", feedID))
	if err != nil {
		return nil, 0, err
	}

	if _, err := tx.Exec(ctx,
		`INSERT INTO feed_tips (feed_id, tipper_id, amount, message) VALUES ($1, $2, $3, $4)`,
		feedID, tipperID, amount, message,
	); err != nil {
		return nil, 0, fmt.Errorf("recording tip: %w", err)
	}

	if _, err := tx.Exec(ctx,
		`UPDATE feeds SET total_tips = total_tips + $1, updated_at = NOW() WHERE id = $2`,
		amount, feedID,
	); err != nil {
		return nil, 0, fmt.Errorf("updating feed tips: %w", err)
	}

	if _, err := s.applyDelta(ctx, tx, authorID, amount,
		models.TxTypeTipReceived, fmt.Sprintf("Tip received on feed %s", feedID)); err != nil {
		return nil, 0, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, 0, fmt.Errorf("committing tip: %w", err)
	}
	committed = true

	receipt := &models.TipReceipt{
		TransactionID: newReceiptID(),
		FeedID:        feedID,
		RecipientID:   authorID,
		Amount:        amount,
		Message:       message,
		Status:        "completed",
		Timestamp:     time.Now(),
	}
	return receipt, tipperBalance, nil
}

// Transactions returns a page of the user's ledger, newest first, plus the
// total row count for pagination.
func (s *WalletService) Transactions(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.CoinTransaction, int, error) {
	var total int
	err := s.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM coin_transactions WHERE user_id = $1`,
		userID,
	).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("counting transactions: %w", err)
	}

	rows, err := s.db.Query(ctx,
		`SELECT id, user_id, amount, tx_type, description, created_at
		 FROM coin_transactions
		 WHERE user_id = $1
		 ORDER BY created_at DESC
		 LIMIT $2 OFFSET $3`,
		userID, limit, offset,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("listing transactions: %w", err)
	}
	defer rows.Close()

	transactions := []models.CoinTransaction{}
	for rows.Next() {
		var t models.CoinTransaction
		if err := rows.Scan(&t.ID, &t.UserID, &t.Amount, &t.Type, &t.Description, &t.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("scanning transaction: %w", err)
		}
		transactions = append(transactions, t)
	}
	return transactions, total, rows.Err()
}

func lockWallet(ctx context.Context, tx Tx, userID uuid.UUID) error {
	var balance int64
	err := tx.QueryRow(ctx,
		`SELECT vibe_coins FROM users WHERE id = $1 AND is_active = true FOR UPDATE`,
		userID,
	).Scan(&balance)
	if isNoRows(err) {
		return ErrUserNotFound
	}
	if err != nil {
		return fmt.Errorf("locking wallet: %w", err)
	}
	return nil
}

func newReceiptID() string {
	buf := make([]byte, 6)
	if _, err := rand.Read(buf); err != nil {
		return fmt.Sprintf("txn_%d", time.Now().UnixNano())
	}
	return fmt.Sprintf("txn_%d_%s", time.Now().UnixMilli(), hex.EncodeToString(buf))
}
