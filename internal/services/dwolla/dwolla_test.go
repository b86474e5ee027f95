package dwolla

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestServer serves /token and records the transfer request body.
func newTestServer(t *testing.T, transferStatus int, captured *transferRequest) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		user, _, ok := r.BasicAuth()
		if !ok || user != "key" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		json.NewEncoder(w).Encode(tokenResponse{AccessToken: "tok", ExpiresIn: 3600})
	})
	mux.HandleFunc("/transfers", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		assert.Equal(t, contentTypeHAL, r.Header.Get("Content-Type"))
		if captured != nil {
			require.NoError(t, json.NewDecoder(r.Body).Decode(captured))
		}
		if transferStatus == http.StatusCreated {
			w.Header().Set("Location", "https://api.dwolla.test/transfers/t-1")
		}
		w.WriteHeader(transferStatus)
		if transferStatus >= 400 {
			json.NewEncoder(w).Encode(map[string]string{"code": "InsufficientFunds", "message": "nope"})
		}
	})

	return httptest.NewServer(mux)
}

func TestCreateTransfer(t *testing.T) {
	var captured transferRequest
	srv := newTestServer(t, http.StatusCreated, &captured)
	defer srv.Close()

	c := NewClient(srv.URL, "key", "secret")

	transfer, err := c.CreateTransfer(context.Background(), TransferParams{
		SourceFundingSourceURL:      "fs_s",
		DestinationFundingSourceURL: "fs_r",
		Amount:                      "25.00",
	})
	require.NoError(t, err)

	assert.Equal(t, "https://api.dwolla.test/transfers/t-1", transfer.URL)
	assert.Equal(t, "fs_s", captured.Links["source"].Href)
	assert.Equal(t, "fs_r", captured.Links["destination"].Href)
	assert.Equal(t, amount{Currency: "USD", Value: "25.00"}, captured.Amount)
}

func TestCreateTransferProviderFailure(t *testing.T) {
	srv := newTestServer(t, http.StatusBadRequest, nil)
	defer srv.Close()

	c := NewClient(srv.URL, "key", "secret")

	_, err := c.CreateTransfer(context.Background(), TransferParams{
		SourceFundingSourceURL:      "fs_s",
		DestinationFundingSourceURL: "fs_r",
		Amount:                      "25.00",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "InsufficientFunds")
}

func TestTokenIsCached(t *testing.T) {
	tokenCalls := 0
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		tokenCalls++
		json.NewEncoder(w).Encode(tokenResponse{AccessToken: "tok", ExpiresIn: 3600})
	})
	mux.HandleFunc("/transfers", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Location", "loc")
		w.WriteHeader(http.StatusCreated)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := NewClient(srv.URL, "key", "secret")
	for i := 0; i < 3; i++ {
		_, err := c.CreateTransfer(context.Background(), TransferParams{Amount: "5.00"})
		require.NoError(t, err)
	}

	assert.Equal(t, 1, tokenCalls)
}
