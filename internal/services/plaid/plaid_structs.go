package plaid

// Opts configures the aggregator client.
type Opts struct {
	ClientID     string `json:"clientID"`
	ClientSecret string `json:"secret"`
	Environment  string `json:"environment"`
}

type ExchangeTokenResponse struct {
	AccessToken string `json:"access_token"`
	ItemID      string `json:"item_id"`
	AccountID   string `json:"account_id"`
}

// Account is the boundary shape for one aggregator-reported account.
// Core services consume this instead of SDK response types.
type Account struct {
	AccountID        string  `json:"account_id"`
	Name             string  `json:"name"`
	OfficialName     string  `json:"official_name"`
	Mask             string  `json:"mask"`
	Type             string  `json:"type"`
	Subtype          string  `json:"subtype"`
	AvailableBalance float64 `json:"available_balance"`
	CurrentBalance   float64 `json:"current_balance"`
	InstitutionID    string  `json:"institution_id"`
}

type Institution struct {
	InstitutionID string `json:"institution_id"`
	Name          string `json:"name"`
}

// Transaction is one raw entry from the incremental sync endpoint, before
// the aggregation layer applies display defaults.
type Transaction struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	PaymentChannel string   `json:"payment_channel"`
	AccountID      string   `json:"account_id"`
	Amount         float64  `json:"amount"`
	Pending        bool     `json:"pending"`
	Category       []string `json:"category"`
	Date           string   `json:"date"` // YYYY-MM-DD, may be empty
	LogoURL        string   `json:"logo_url"`
}

// TransactionsPage is one page of incremental sync output.
type TransactionsPage struct {
	Added      []Transaction `json:"added"`
	HasMore    bool          `json:"has_more"`
	NextCursor string        `json:"next_cursor"`
}
