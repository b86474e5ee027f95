package domain

import (
	"time"

	"github.com/guregu/null"
)

// Bank is one linked external bank account. AccessToken is the aggregator
// credential scoped to this link and FundingSourceURL is the money-movement
// handle; both are opaque, non-empty strings once the account is linked.
type Bank struct {
	ID               string      `json:"id"`
	UserID           string      `json:"user_id"`
	AccountID        string      `json:"account_id"`
	ItemID           string      `json:"item_id"`
	AccessToken      string      `json:"-"`
	FundingSourceURL string      `json:"-"`
	ShareableID      null.String `json:"shareable_id"`
	CreatedAt        time.Time   `json:"created_at"`
}

// Transaction is a locally recorded transfer between two linked banks.
// Created exactly once per successful transfer, immutable afterwards.
type Transaction struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Amount         string    `json:"amount"` // as entered, e.g. "25.00"
	SenderID       string    `json:"sender_id"`
	SenderBankID   string    `json:"sender_bank_id"`
	ReceiverID     string    `json:"receiver_id"`
	ReceiverBankID string    `json:"receiver_bank_id"`
	Email          string    `json:"email"`
	Channel        string    `json:"channel"`
	Category       string    `json:"category"`
	CreatedAt      time.Time `json:"created_at"`
}

// Fixed values stamped onto every recorded transfer.
const (
	TransferChannel  = "online"
	TransferCategory = "Transfer"
)
