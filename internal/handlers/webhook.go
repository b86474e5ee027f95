package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/gobuffalo/nulls"
	"go.uber.org/zap"
)

type plaidWebhookEvent struct {
	WebhookType string       `json:"webhook_type"`
	WebhookCode string       `json:"webhook_code"`
	ItemID      nulls.String `json:"item_id"`
	// Plaid sends error as an object or null, never a string.
	Error json.RawMessage `json:"error"`
}

func (e *plaidWebhookEvent) hasError() bool {
	return len(e.Error) > 0 && string(e.Error) != "null"
}

/*
POST /webhook/plaid

Receives events from the aggregator (e.g. transactions updated). The
signature header is verified before the payload is trusted.
*/
func (h *HttpServer) PlaidWebhook(w http.ResponseWriter, r *http.Request) {
	const MaxBodyBytes = int64(65536)
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)

	payload, err := io.ReadAll(r.Body)
	if err != nil {
		h.respondWithError(w, http.StatusServiceUnavailable, "Error reading webhook request")
		return
	}

	headers := map[string]string{
		"plaid-verification": r.Header.Get("Plaid-Verification"),
	}
	verified, err := h.plaidService.VerifyWebhook(string(payload), headers)
	if err != nil || !verified {
		h.logger.Warn("rejected unverified plaid webhook", zap.Error(err))
		h.respondWithError(w, http.StatusUnauthorized, "Webhook verification failed")
		return
	}

	var event plaidWebhookEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		h.respondWithError(w, http.StatusBadRequest, "Invalid Plaid webhook payload")
		return
	}

	if event.hasError() {
		h.logger.Warn("plaid webhook carried an error",
			zap.String("type", event.WebhookType),
			zap.String("code", event.WebhookCode),
			zap.String("item_id", event.ItemID.String),
			zap.ByteString("plaid_error", event.Error))
	}

	if event.WebhookType == "TRANSACTIONS" {
		h.logger.Info("plaid transactions webhook",
			zap.String("code", event.WebhookCode),
			zap.String("item_id", event.ItemID.String))
		// The feed is rebuilt from the aggregator on every fetch, so there is
		// no local cache to invalidate here.
	}

	w.WriteHeader(http.StatusOK)
}
