package accounts

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/guregu/null"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/horizonbank/banking-service/internal/domain"
	"github.com/horizonbank/banking-service/internal/services/plaid"
)

type fakeBanks struct {
	banks map[string]*domain.Bank // by record id
	err   error
}

func (f *fakeBanks) GetBank(_ context.Context, id string) (*domain.Bank, error) {
	if f.err != nil {
		return nil, f.err
	}
	bank, ok := f.banks[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return bank, nil
}

func (f *fakeBanks) GetBankByAccountID(_ context.Context, accountID string) (*domain.Bank, error) {
	for _, bank := range f.banks {
		if bank.AccountID == accountID {
			return bank, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeBanks) GetBanks(_ context.Context, userID string) ([]*domain.Bank, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []*domain.Bank
	for _, bank := range f.banks {
		if bank.UserID == userID {
			out = append(out, bank)
		}
	}
	return out, nil
}

func (f *fakeBanks) CreateBank(_ context.Context, bank *domain.Bank) error {
	f.banks[bank.ID] = bank
	return nil
}

type fakeTransactions struct {
	records []*domain.Transaction
	err     error
}

func (f *fakeTransactions) CreateTransaction(_ context.Context, tx *domain.Transaction) error {
	f.records = append(f.records, tx)
	return nil
}

func (f *fakeTransactions) GetTransactionsByBankID(_ context.Context, bankID string) ([]*domain.Transaction, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []*domain.Transaction
	for _, tx := range f.records {
		if tx.SenderBankID == bankID || tx.ReceiverBankID == bankID {
			out = append(out, tx)
		}
	}
	return out, nil
}

// fakeAggregator keys accounts and sync pages by access token.
type fakeAggregator struct {
	accounts map[string][]plaid.Account
	errs     map[string]error
	pages    map[string][]syncResult
	calls    map[string]int
}

type syncResult struct {
	page *plaid.TransactionsPage
	err  error
}

func (f *fakeAggregator) GetAccounts(_ context.Context, accessToken string) ([]plaid.Account, error) {
	if err := f.errs[accessToken]; err != nil {
		return nil, err
	}
	return f.accounts[accessToken], nil
}

func (f *fakeAggregator) GetInstitution(_ context.Context, institutionID string) (*plaid.Institution, error) {
	return &plaid.Institution{InstitutionID: institutionID, Name: "Test Bank"}, nil
}

func (f *fakeAggregator) SyncTransactions(_ context.Context, accessToken, _ string) (*plaid.TransactionsPage, error) {
	if f.calls == nil {
		f.calls = make(map[string]int)
	}
	results := f.pages[accessToken]
	i := f.calls[accessToken]
	f.calls[accessToken]++
	if i >= len(results) {
		return &plaid.TransactionsPage{}, nil
	}
	return results[i].page, results[i].err
}

func (f *fakeAggregator) CreateLinkToken(context.Context, string) (string, error) {
	return "", errors.New("not implemented")
}

func (f *fakeAggregator) ExchangePublicToken(context.Context, string) (*plaid.ExchangeTokenResponse, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeAggregator) CreateProcessorToken(context.Context, string, string) (string, error) {
	return "", errors.New("not implemented")
}

func (f *fakeAggregator) VerifyWebhook(string, map[string]string) (bool, error) {
	return false, errors.New("not implemented")
}

func newBank(id, userID, token string) *domain.Bank {
	return &domain.Bank{
		ID:          id,
		UserID:      userID,
		AccountID:   "acc_" + id,
		AccessToken: token,
		ShareableID: null.StringFrom("share-" + id),
	}
}

func TestGetAccountsDropsFailedFetches(t *testing.T) {
	banks := &fakeBanks{banks: map[string]*domain.Bank{
		"b1": newBank("b1", "u1", "tok1"),
		"b2": newBank("b2", "u1", "tok2"),
		"b3": newBank("b3", "u1", "tok3"),
	}}
	aggregator := &fakeAggregator{
		accounts: map[string][]plaid.Account{
			"tok1": {{AccountID: "acc_b1", CurrentBalance: 100.50, InstitutionID: "ins_1"}},
			"tok3": {{AccountID: "acc_b3", CurrentBalance: 24.50, InstitutionID: "ins_2"}},
		},
		errs: map[string]error{"tok2": errors.New("item login required")},
	}

	svc := NewService(banks, &fakeTransactions{}, aggregator, zap.NewNop())

	summary, err := svc.GetAccounts(context.Background(), "u1")
	require.NoError(t, err)

	assert.Equal(t, 2, summary.TotalBanks)
	assert.Len(t, summary.Data, 2)
	assert.InDelta(t, 125.00, summary.TotalCurrentBalance, 0.001)
}

func TestGetAccountsEmptyIsNotAnError(t *testing.T) {
	banks := &fakeBanks{banks: map[string]*domain.Bank{}}
	svc := NewService(banks, &fakeTransactions{}, &fakeAggregator{}, zap.NewNop())

	summary, err := svc.GetAccounts(context.Background(), "nobody")
	require.NoError(t, err)
	require.NotNil(t, summary)

	assert.Equal(t, 0, summary.TotalBanks)
	assert.Equal(t, 0.0, summary.TotalCurrentBalance)
	assert.Empty(t, summary.Data)
	assert.NotNil(t, summary.Data)
}

func TestGetAccountsStoreFailure(t *testing.T) {
	banks := &fakeBanks{err: errors.New("store unavailable")}
	svc := NewService(banks, &fakeTransactions{}, &fakeAggregator{}, zap.NewNop())

	_, err := svc.GetAccounts(context.Background(), "u1")
	assert.Error(t, err)
}

func TestGetAccountNotFound(t *testing.T) {
	banks := &fakeBanks{banks: map[string]*domain.Bank{}}
	svc := NewService(banks, &fakeTransactions{}, &fakeAggregator{}, zap.NewNop())

	_, err := svc.GetAccount(context.Background(), "missing")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestGetAccountMergesAndSortsFeed(t *testing.T) {
	bank := newBank("b1", "u1", "tok1")
	banks := &fakeBanks{banks: map[string]*domain.Bank{"b1": bank}}

	transactions := &fakeTransactions{records: []*domain.Transaction{
		{
			ID: "local-out", Name: "Rent share", Amount: "250.00",
			SenderBankID: "b1", ReceiverBankID: "b9",
			Channel: "online", Category: "Transfer",
			CreatedAt: time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC),
		},
		{
			ID: "local-in", Name: "Refund", Amount: "40.00",
			SenderBankID: "b9", ReceiverBankID: "b1",
			Channel: "online", Category: "Transfer",
			CreatedAt: time.Date(2026, 3, 8, 9, 0, 0, 0, time.UTC),
		},
	}}

	aggregator := &fakeAggregator{
		accounts: map[string][]plaid.Account{
			"tok1": {{AccountID: "acc_b1", Name: "Checking", CurrentBalance: 500, InstitutionID: "ins_1"}},
		},
		pages: map[string][]syncResult{
			"tok1": {{page: &plaid.TransactionsPage{
				Added: []plaid.Transaction{
					{ID: "agg-1", Name: "Coffee", Amount: 4.50, PaymentChannel: "in store", Category: []string{"Food and Drink"}, Date: "2026-03-09"},
					{ID: "agg-2", Name: "Groceries", Amount: 60, PaymentChannel: "in store", Date: "2026-03-12"},
				},
			}}},
		},
	}

	svc := NewService(banks, transactions, aggregator, zap.NewNop())

	detail, err := svc.GetAccount(context.Background(), "b1")
	require.NoError(t, err)

	require.Len(t, detail.Transactions, 4)
	ids := []string{}
	for _, tx := range detail.Transactions {
		ids = append(ids, tx.ID)
	}
	assert.Equal(t, []string{"agg-2", "local-out", "agg-1", "local-in"}, ids)

	// feed is newest first
	for i := 1; i < len(detail.Transactions); i++ {
		assert.False(t, detail.Transactions[i].Date.After(detail.Transactions[i-1].Date))
	}

	byID := map[string]UnifiedTransaction{}
	for _, tx := range detail.Transactions {
		byID[tx.ID] = tx
	}
	assert.Equal(t, TypeDebit, byID["local-out"].Type)
	assert.Equal(t, TypeCredit, byID["local-in"].Type)
	assert.InDelta(t, 250.00, byID["local-out"].Amount, 0.001)
	assert.Equal(t, "Other", byID["agg-2"].Category)
	assert.Equal(t, "Food and Drink", byID["agg-1"].Category)

	assert.Equal(t, "acc_b1", detail.Data.ID)
	assert.Equal(t, "b1", detail.Data.BankID)
}

func TestGetAccountStableOrderOnEqualDates(t *testing.T) {
	bank := newBank("b1", "u1", "tok1")
	banks := &fakeBanks{banks: map[string]*domain.Bank{"b1": bank}}

	same := "2026-05-01"
	aggregator := &fakeAggregator{
		accounts: map[string][]plaid.Account{
			"tok1": {{AccountID: "acc_b1", InstitutionID: "ins_1"}},
		},
		pages: map[string][]syncResult{
			"tok1": {{page: &plaid.TransactionsPage{
				Added: []plaid.Transaction{
					{ID: "first", Date: same},
					{ID: "second", Date: same},
					{ID: "third", Date: same},
				},
			}}},
		},
	}

	svc := NewService(banks, &fakeTransactions{}, aggregator, zap.NewNop())

	detail, err := svc.GetAccount(context.Background(), "b1")
	require.NoError(t, err)

	require.Len(t, detail.Transactions, 3)
	assert.Equal(t, "first", detail.Transactions[0].ID)
	assert.Equal(t, "second", detail.Transactions[1].ID)
	assert.Equal(t, "third", detail.Transactions[2].ID)
}

func TestCollectTransactionsPagination(t *testing.T) {
	aggregator := &fakeAggregator{
		pages: map[string][]syncResult{
			"tok1": {
				{page: &plaid.TransactionsPage{
					Added:      []plaid.Transaction{{ID: "a"}, {ID: "b"}},
					HasMore:    true,
					NextCursor: "c1",
				}},
				{page: &plaid.TransactionsPage{
					Added: []plaid.Transaction{{ID: "c"}},
				}},
			},
		},
	}
	svc := NewService(&fakeBanks{}, &fakeTransactions{}, aggregator, zap.NewNop())

	feed := svc.collectTransactions(context.Background(), "tok1", time.Now())

	require.Len(t, feed, 3)
	assert.Equal(t, "a", feed[0].ID)
	assert.Equal(t, "b", feed[1].ID)
	assert.Equal(t, "c", feed[2].ID)
}

func TestCollectTransactionsDiscardsPartialPagesOnFailure(t *testing.T) {
	aggregator := &fakeAggregator{
		pages: map[string][]syncResult{
			"tok1": {
				{page: &plaid.TransactionsPage{
					Added:      []plaid.Transaction{{ID: "a"}, {ID: "b"}},
					HasMore:    true,
					NextCursor: "c1",
				}},
				{err: errors.New("rate limited")},
			},
		},
	}
	svc := NewService(&fakeBanks{}, &fakeTransactions{}, aggregator, zap.NewNop())

	feed := svc.collectTransactions(context.Background(), "tok1", time.Now())

	assert.Empty(t, feed)
	assert.NotNil(t, feed)
}

func TestAggregatorEntryDefaults(t *testing.T) {
	now := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)

	entry := aggregatorEntry(plaid.Transaction{ID: "x"}, now)

	assert.Equal(t, "Unknown", entry.Name)
	assert.Equal(t, "N/A", entry.PaymentChannel)
	assert.Equal(t, "Unknown", entry.Type)
	assert.Equal(t, "Other", entry.Category)
	assert.Equal(t, 0.0, entry.Amount)
	// undated entries sort as most recent
	assert.Equal(t, now, entry.Date)
}
