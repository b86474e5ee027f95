package plaid

import (
	"context"
	"fmt"
	"sync"

	"github.com/plaid/plaid-go/v12/plaid"
	"go.uber.org/zap"
)

// Identifier passed to the processor-token endpoint; the resulting token is
// handed to the money-movement provider when creating a funding source.
const processorDwolla = "dwolla"

type Plaid struct {
	client *plaid.APIClient
	logger *zap.Logger

	mu       sync.Mutex
	keyCache map[string]plaid.JWKPublicKey
}

// Service is the aggregator boundary consumed by the rest of the app.
type Service interface {
	CreateLinkToken(ctx context.Context, userID string) (string, error)
	ExchangePublicToken(ctx context.Context, publicToken string) (*ExchangeTokenResponse, error)
	CreateProcessorToken(ctx context.Context, accessToken, accountID string) (string, error)
	GetAccounts(ctx context.Context, accessToken string) ([]Account, error)
	GetInstitution(ctx context.Context, institutionID string) (*Institution, error)
	SyncTransactions(ctx context.Context, accessToken, cursor string) (*TransactionsPage, error)
	VerifyWebhook(webhookBody string, headers map[string]string) (bool, error)
}

func New(opts *Opts, logger *zap.Logger) Service {
	config := plaid.NewConfiguration()
	config.AddDefaultHeader("PLAID-CLIENT-ID", opts.ClientID)
	config.AddDefaultHeader("PLAID-SECRET", opts.ClientSecret)

	switch opts.Environment {
	case "production":
		config.UseEnvironment(plaid.Production)
	case "development":
		config.UseEnvironment(plaid.Development)
	default:
		config.UseEnvironment(plaid.Sandbox)
	}

	client := plaid.NewAPIClient(config)

	return &Plaid{
		client:   client,
		logger:   logger,
		keyCache: make(map[string]plaid.JWKPublicKey),
	}
}

// CreateLinkToken generates a Link token for the given user. The frontend
// uses it to open the Plaid Link widget and connect a bank account.
func (p *Plaid) CreateLinkToken(ctx context.Context, userID string) (string, error) {
	user := plaid.LinkTokenCreateRequestUser{
		ClientUserId: userID,
	}

	req := plaid.NewLinkTokenCreateRequest(
		"Horizon",
		"en",
		[]plaid.CountryCode{plaid.COUNTRYCODE_US},
		user,
	)

	req.SetProducts([]plaid.Products{plaid.PRODUCTS_AUTH, plaid.PRODUCTS_TRANSACTIONS})

	res, _, err := p.client.PlaidApi.LinkTokenCreate(ctx).LinkTokenCreateRequest(*req).Execute()
	if err != nil {
		return "", err
	}

	return res.GetLinkToken(), nil
}

// ExchangePublicToken trades the short-lived public_token returned by Plaid
// Link for the long-lived access_token used in all later data fetches.
func (p *Plaid) ExchangePublicToken(ctx context.Context, publicToken string) (*ExchangeTokenResponse, error) {
	exchangeReq := plaid.NewItemPublicTokenExchangeRequest(publicToken)
	res, _, err := p.client.PlaidApi.ItemPublicTokenExchange(ctx).ItemPublicTokenExchangeRequest(*exchangeReq).Execute()
	if err != nil {
		return nil, err
	}

	return &ExchangeTokenResponse{
		AccessToken: res.GetAccessToken(),
		ItemID:      res.GetItemId(),
	}, nil
}

// CreateProcessorToken creates a processor token for a linked account, which
// the money-movement provider exchanges for a funding source.
func (p *Plaid) CreateProcessorToken(ctx context.Context, accessToken, accountID string) (string, error) {
	request := plaid.NewProcessorTokenCreateRequest(accessToken, accountID, processorDwolla)
	res, _, err := p.client.PlaidApi.ProcessorTokenCreate(ctx).ProcessorTokenCreateRequest(*request).Execute()
	if err != nil {
		return "", err
	}
	return res.GetProcessorToken(), nil
}

// GetAccounts fetches every account on the item behind accessToken, mapped
// to boundary structs. The item's institution id is stamped on each account.
func (p *Plaid) GetAccounts(ctx context.Context, accessToken string) ([]Account, error) {
	request := plaid.NewAccountsGetRequest(accessToken)
	res, _, err := p.client.PlaidApi.AccountsGet(ctx).AccountsGetRequest(*request).Execute()
	if err != nil {
		return nil, err
	}

	return mapAccounts(res), nil
}

// mapAccounts converts an accounts/get response into boundary structs. The
// item is bound to a variable first; its getters take pointer receivers.
func mapAccounts(res plaid.AccountsGetResponse) []Account {
	item := res.GetItem()
	institutionID := item.GetInstitutionId()

	accounts := make([]Account, 0, len(res.GetAccounts()))
	for _, a := range res.GetAccounts() {
		accounts = append(accounts, Account{
			AccountID:        a.GetAccountId(),
			Name:             a.GetName(),
			OfficialName:     a.GetOfficialName(),
			Mask:             a.GetMask(),
			Type:             string(a.GetType()),
			Subtype:          string(a.GetSubtype()),
			AvailableBalance: a.Balances.GetAvailable(),
			CurrentBalance:   a.Balances.GetCurrent(),
			InstitutionID:    institutionID,
		})
	}

	return accounts
}

// GetInstitution looks up institution metadata by id, US-only. A lookup
// failure is logged and yields an empty Institution rather than an error;
// callers render "Unknown" for missing ids.
func (p *Plaid) GetInstitution(ctx context.Context, institutionID string) (*Institution, error) {
	request := plaid.NewInstitutionsGetByIdRequest(institutionID, []plaid.CountryCode{plaid.COUNTRYCODE_US})
	res, _, err := p.client.PlaidApi.InstitutionsGetById(ctx).InstitutionsGetByIdRequest(*request).Execute()
	if err != nil {
		p.logger.Warn("institution lookup failed",
			zap.String("institution_id", institutionID), zap.Error(err))
		return &Institution{}, nil
	}

	return &Institution{
		InstitutionID: res.Institution.GetInstitutionId(),
		Name:          res.Institution.GetName(),
	}, nil
}

// SyncTransactions fetches one page of the incremental transactions sync.
// Pass the previous page's NextCursor to continue; an empty cursor starts
// from the beginning of the item's history.
func (p *Plaid) SyncTransactions(ctx context.Context, accessToken, cursor string) (*TransactionsPage, error) {
	request := plaid.NewTransactionsSyncRequest(accessToken)
	if cursor != "" {
		request.SetCursor(cursor)
	}

	res, _, err := p.client.PlaidApi.TransactionsSync(ctx).TransactionsSyncRequest(*request).Execute()
	if err != nil {
		return nil, fmt.Errorf("transactions sync: %w", err)
	}

	added := make([]Transaction, 0, len(res.GetAdded()))
	for _, t := range res.GetAdded() {
		added = append(added, Transaction{
			ID:             t.GetTransactionId(),
			Name:           t.GetName(),
			PaymentChannel: t.GetPaymentChannel(),
			AccountID:      t.GetAccountId(),
			Amount:         t.GetAmount(),
			Pending:        t.GetPending(),
			Category:       t.GetCategory(),
			Date:           t.GetDate(),
			LogoURL:        t.GetLogoUrl(),
		})
	}

	return &TransactionsPage{
		Added:      added,
		HasMore:    res.GetHasMore(),
		NextCursor: res.GetNextCursor(),
	}, nil
}
