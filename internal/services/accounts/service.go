// Package accounts produces the unified per-user account list and the
// per-account detail view, merging aggregator data with locally recorded
// transfers.
package accounts

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/horizonbank/banking-service/internal/domain"
	"github.com/horizonbank/banking-service/internal/services/plaid"
)

const (
	TypeDebit  = "debit"
	TypeCredit = "credit"
)

type Service struct {
	banks        domain.BankRepository
	transactions domain.TransactionRepository
	aggregator   plaid.Service
	logger       *zap.Logger
}

func NewService(banks domain.BankRepository, transactions domain.TransactionRepository,
	aggregator plaid.Service, logger *zap.Logger) *Service {
	return &Service{
		banks:        banks,
		transactions: transactions,
		aggregator:   aggregator,
		logger:       logger,
	}
}

// AccountSnapshot is the ephemeral view of one linked account, rebuilt from
// the aggregator on every fetch.
type AccountSnapshot struct {
	ID               string  `json:"id"`
	AvailableBalance float64 `json:"available_balance"`
	CurrentBalance   float64 `json:"current_balance"`
	InstitutionID    string  `json:"institution_id"`
	Name             string  `json:"name"`
	OfficialName     string  `json:"official_name"`
	Mask             string  `json:"mask"`
	Type             string  `json:"type"`
	Subtype          string  `json:"subtype"`
	BankID           string  `json:"bank_id"`
	ShareableID      string  `json:"shareable_id,omitempty"`
}

// AccountsSummary is the per-user account list with precomputed totals.
type AccountsSummary struct {
	Data                []AccountSnapshot `json:"data"`
	TotalBanks          int               `json:"total_banks"`
	TotalCurrentBalance float64           `json:"total_current_balance"`
}

// UnifiedTransaction is one entry of the merged transaction feed. Entries
// come either from the aggregator's history or from locally recorded
// transfers; local entries are tagged debit or credit relative to the bank
// being viewed.
type UnifiedTransaction struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Amount         float64   `json:"amount"`
	Date           time.Time `json:"date"`
	PaymentChannel string    `json:"payment_channel"`
	Category       string    `json:"category"`
	Type           string    `json:"type"`
	Pending        bool      `json:"pending,omitempty"`
	Image          string    `json:"image,omitempty"`
}

// AccountDetail is one account's snapshot plus its merged feed.
type AccountDetail struct {
	Data         AccountSnapshot      `json:"data"`
	Transactions []UnifiedTransaction `json:"transactions"`
}

// GetAccounts loads every bank linked by userID and fetches account data for
// each concurrently. A branch that fails is logged and dropped so one bad
// link does not fail the batch; totals cover survivors only. A user with no
// linked banks gets an empty summary, not an error.
func (s *Service) GetAccounts(ctx context.Context, userID string) (*AccountsSummary, error) {
	banks, err := s.banks.GetBanks(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load banks for user %s: %w", userID, err)
	}

	summary := &AccountsSummary{Data: []AccountSnapshot{}}
	if len(banks) == 0 {
		return summary, nil
	}

	snapshots := make([]*AccountSnapshot, len(banks))
	var wg sync.WaitGroup
	for i, bank := range banks {
		wg.Add(1)
		go func(i int, bank *domain.Bank) {
			defer wg.Done()
			snapshot, err := s.fetchSnapshot(ctx, bank)
			if err != nil {
				s.logger.Warn("dropping bank from account summary",
					zap.String("bank_id", bank.ID), zap.Error(err))
				return
			}
			snapshots[i] = snapshot
		}(i, bank)
	}
	wg.Wait()

	for _, snapshot := range snapshots {
		if snapshot == nil {
			continue
		}
		summary.Data = append(summary.Data, *snapshot)
		summary.TotalCurrentBalance += snapshot.CurrentBalance
	}
	summary.TotalBanks = len(summary.Data)

	return summary, nil
}

// GetAccount returns one bank's snapshot and its merged transaction feed:
// the aggregator's full paginated history plus locally recorded transfers
// touching this bank, sorted newest first.
func (s *Service) GetAccount(ctx context.Context, bankID string) (*AccountDetail, error) {
	bank, err := s.banks.GetBank(ctx, bankID)
	if err != nil {
		return nil, fmt.Errorf("failed to load bank %s: %w", bankID, err)
	}

	snapshot, err := s.fetchSnapshot(ctx, bank)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch account for bank %s: %w", bankID, err)
	}

	local, err := s.transactions.GetTransactionsByBankID(ctx, bank.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load transfers for bank %s: %w", bankID, err)
	}

	now := time.Now()

	feed := s.collectTransactions(ctx, bank.AccessToken, now)
	for _, tx := range local {
		feed = append(feed, localEntry(tx, bank.ID, now))
	}

	// Newest first; equal dates keep aggregator-before-local order.
	sort.SliceStable(feed, func(i, j int) bool {
		return feed[i].Date.After(feed[j].Date)
	})

	return &AccountDetail{Data: *snapshot, Transactions: feed}, nil
}

// fetchSnapshot resolves one bank's first aggregator account plus its
// institution metadata.
func (s *Service) fetchSnapshot(ctx context.Context, bank *domain.Bank) (*AccountSnapshot, error) {
	accounts, err := s.aggregator.GetAccounts(ctx, bank.AccessToken)
	if err != nil {
		return nil, err
	}
	if len(accounts) == 0 {
		return nil, fmt.Errorf("no accounts found for bank %s", bank.ID)
	}

	account := accounts[0]

	institutionID := "Unknown"
	if institution, err := s.aggregator.GetInstitution(ctx, account.InstitutionID); err == nil && institution.InstitutionID != "" {
		institutionID = institution.InstitutionID
	}

	officialName := account.OfficialName
	if officialName == "" {
		officialName = "N/A"
	}

	return &AccountSnapshot{
		ID:               account.AccountID,
		AvailableBalance: account.AvailableBalance,
		CurrentBalance:   account.CurrentBalance,
		InstitutionID:    institutionID,
		Name:             account.Name,
		OfficialName:     officialName,
		Mask:             account.Mask,
		Type:             account.Type,
		Subtype:          account.Subtype,
		BankID:           bank.ID,
		ShareableID:      bank.ShareableID.String,
	}, nil
}

// collectTransactions walks the aggregator's incremental-sync pages and
// accumulates the added entries. Any page failure discards everything
// fetched so far and yields an empty feed; a transient failure must not
// surface a partial history as if it were complete.
func (s *Service) collectTransactions(ctx context.Context, accessToken string, now time.Time) []UnifiedTransaction {
	feed := []UnifiedTransaction{}
	cursor := ""

	for {
		page, err := s.aggregator.SyncTransactions(ctx, accessToken, cursor)
		if err != nil {
			s.logger.Warn("transaction sync aborted, discarding partial pages", zap.Error(err))
			return []UnifiedTransaction{}
		}

		for _, tx := range page.Added {
			feed = append(feed, aggregatorEntry(tx, now))
		}

		if !page.HasMore {
			break
		}
		cursor = page.NextCursor
	}

	return feed
}

func aggregatorEntry(tx plaid.Transaction, now time.Time) UnifiedTransaction {
	name := tx.Name
	if name == "" {
		name = "Unknown"
	}

	channel := tx.PaymentChannel
	if channel == "" {
		channel = "N/A"
	}

	// type mirrors the payment channel for aggregator entries
	entryType := tx.PaymentChannel
	if entryType == "" {
		entryType = "Unknown"
	}

	category := "Other"
	if len(tx.Category) > 0 {
		category = tx.Category[0]
	}

	date := now
	if parsed, err := time.Parse("2006-01-02", tx.Date); err == nil {
		date = parsed
	}

	return UnifiedTransaction{
		ID:             tx.ID,
		Name:           name,
		Amount:         tx.Amount,
		Date:           date,
		PaymentChannel: channel,
		Category:       category,
		Type:           entryType,
		Pending:        tx.Pending,
		Image:          tx.LogoURL,
	}
}

func localEntry(tx *domain.Transaction, bankID string, now time.Time) UnifiedTransaction {
	name := tx.Name
	if name == "" {
		name = "N/A"
	}

	channel := tx.Channel
	if channel == "" {
		channel = "Unknown"
	}

	category := tx.Category
	if category == "" {
		category = "Other"
	}

	// Undated records sort as most recent on purpose.
	date := tx.CreatedAt
	if date.IsZero() {
		date = now
	}

	entryType := TypeCredit
	if tx.SenderBankID == bankID {
		entryType = TypeDebit
	}

	var amount float64
	if parsed, err := decimal.NewFromString(tx.Amount); err == nil {
		amount = parsed.InexactFloat64()
	}

	return UnifiedTransaction{
		ID:             tx.ID,
		Name:           name,
		Amount:         amount,
		Date:           date,
		PaymentChannel: channel,
		Category:       category,
		Type:           entryType,
	}
}
