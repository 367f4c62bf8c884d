package gateway_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DanielPopoola/ficmart-escrow/internal/application"
	"github.com/DanielPopoola/ficmart-escrow/internal/config"
	"github.com/DanielPopoola/ficmart-escrow/internal/domain"
	"github.com/DanielPopoola/ficmart-escrow/internal/infrastructure/gateway"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestMidtrans(t *testing.T, handler http.HandlerFunc) *gateway.Midtrans {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return gateway.NewMidtrans(config.MidtransConfig{
		BaseURL:   server.URL,
		ServerKey: "SB-Mid-server-key",
	}, 5*time.Second)
}

func TestMidtrans_CreateCharge_BankTransfer(t *testing.T) {
	var received map[string]any

	client := newTestMidtrans(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v2/charge", r.URL.Path)

		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "SB-Mid-server-key", user)
		assert.Empty(t, pass)

		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &received))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"status_code": "201",
			"status_message": "Success, Bank Transfer transaction is created",
			"transaction_id": "9aed5972-5b6a-401e-894b-a32c91ed1a3a",
			"order_id": "TRX-1",
			"gross_amount": "106000.00",
			"payment_type": "bank_transfer",
			"transaction_status": "pending",
			"va_numbers": [{"bank": "bni", "va_number": "9882342342342"}]
		}`))
	})

	result, err := client.CreateCharge(context.Background(), domain.ChargeRequest{
		TransactionRef: "TRX-1",
		GrossAmount:    106000,
		Method:         domain.MethodBankTransfer,
		Channel:        "bni",
	})

	require.NoError(t, err)
	assert.Equal(t, "9aed5972-5b6a-401e-894b-a32c91ed1a3a", result.ExternalRef)
	assert.Equal(t, "bni", result.Instructions.Bank)
	assert.Equal(t, "9882342342342", result.Instructions.VANumber)

	assert.Equal(t, "bank_transfer", received["payment_type"])
	assert.Equal(t, map[string]any{"bank": "bni"}, received["bank_transfer"])
	details := received["transaction_details"].(map[string]any)
	assert.Equal(t, "TRX-1", details["order_id"])
	assert.Equal(t, float64(106000), details["gross_amount"])
}

func TestMidtrans_CreateCharge_MethodMapping(t *testing.T) {
	tests := []struct {
		name        string
		req         domain.ChargeRequest
		paymentType string
		paramKey    string
	}{
		{"mandiri bill", domain.ChargeRequest{Method: domain.MethodVirtualAccount, Channel: "mandiri"}, "echannel", "echannel"},
		{"gopay", domain.ChargeRequest{Method: domain.MethodEWallet}, "gopay", "gopay"},
		{"shopeepay", domain.ChargeRequest{Method: domain.MethodEWallet, Channel: "shopeepay"}, "shopeepay", "shopeepay"},
		{"qris", domain.ChargeRequest{Method: domain.MethodQRIS}, "qris", "qris"},
		{"card", domain.ChargeRequest{Method: domain.MethodCreditCard, Customer: domain.CustomerInfo{CardToken: "tok-1"}}, "credit_card", "credit_card"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var received map[string]any
			client := newTestMidtrans(t, func(w http.ResponseWriter, r *http.Request) {
				body, _ := io.ReadAll(r.Body)
				require.NoError(t, json.Unmarshal(body, &received))
				_, _ = w.Write([]byte(`{"status_code":"201","transaction_id":"ext-1","transaction_status":"pending"}`))
			})

			req := tt.req
			req.TransactionRef = "TRX-" + tt.paymentType
			req.GrossAmount = 1000

			_, err := client.CreateCharge(context.Background(), req)
			require.NoError(t, err)
			assert.Equal(t, tt.paymentType, received["payment_type"])
			assert.Contains(t, received, tt.paramKey)
		})
	}

	t.Run("card requires 3ds authentication", func(t *testing.T) {
		var received map[string]any
		client := newTestMidtrans(t, func(w http.ResponseWriter, r *http.Request) {
			body, _ := io.ReadAll(r.Body)
			require.NoError(t, json.Unmarshal(body, &received))
			_, _ = w.Write([]byte(`{"status_code":"201","transaction_id":"ext-1","redirect_url":"https://3ds.test/x"}`))
		})

		result, err := client.CreateCharge(context.Background(), domain.ChargeRequest{
			TransactionRef: "TRX-card", GrossAmount: 1000, Method: domain.MethodCreditCard,
			Customer: domain.CustomerInfo{CardToken: "tok-1"},
		})
		require.NoError(t, err)
		assert.Equal(t, "https://3ds.test/x", result.InitiationURL)
		assert.Equal(t, map[string]any{"token_id": "tok-1", "authentication": true}, received["credit_card"])
	})

	t.Run("card without token is rejected locally", func(t *testing.T) {
		client := gateway.NewMidtrans(config.MidtransConfig{BaseURL: "http://unused"}, time.Second)
		_, err := client.CreateCharge(context.Background(), domain.ChargeRequest{
			TransactionRef: "TRX-card", GrossAmount: 1000, Method: domain.MethodCreditCard,
		})
		assert.ErrorIs(t, err, domain.ErrValidation)
	})
}

func TestMidtrans_CreateCharge_EWalletActions(t *testing.T) {
	client := newTestMidtrans(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{
			"status_code": "201",
			"transaction_id": "ext-gopay",
			"actions": [
				{"name": "generate-qr-code", "method": "GET", "url": "https://api.test/qr"},
				{"name": "deeplink-redirect", "method": "GET", "url": "gojek://gopay/merchanttransfer?tref=1"}
			]
		}`))
	})

	result, err := client.CreateCharge(context.Background(), domain.ChargeRequest{
		TransactionRef: "TRX-gopay", GrossAmount: 1000, Method: domain.MethodEWallet,
	})

	require.NoError(t, err)
	assert.Equal(t, "gojek://gopay/merchanttransfer?tref=1", result.Instructions.Deeplink)
	assert.Equal(t, result.Instructions.Deeplink, result.InitiationURL)
	assert.Equal(t, "https://api.test/qr", result.Instructions.QRPayload)
}

func TestMidtrans_Errors(t *testing.T) {
	t.Run("error in body with http 200", func(t *testing.T) {
		client := newTestMidtrans(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"status_code":"406","status_message":"Duplicate order ID"}`))
		})

		_, err := client.CreateCharge(context.Background(), domain.ChargeRequest{
			TransactionRef: "TRX-dup", GrossAmount: 1000, Method: domain.MethodQRIS,
		})

		gwErr, ok := application.IsGatewayError(err)
		require.True(t, ok)
		assert.Equal(t, 406, gwErr.StatusCode)
		assert.Equal(t, "Duplicate order ID", gwErr.Message)
		assert.False(t, gwErr.IsRetryable())
	})

	t.Run("server error", func(t *testing.T) {
		client := newTestMidtrans(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
			_, _ = w.Write([]byte(`upstream down`))
		})

		_, err := client.QueryStatus(context.Background(), "TRX-1")

		gwErr, ok := application.IsGatewayError(err)
		require.True(t, ok)
		assert.Equal(t, http.StatusBadGateway, gwErr.StatusCode)
		assert.True(t, gwErr.IsRetryable())
	})
}

func TestMidtrans_QueryStatusAndCancel(t *testing.T) {
	client := newTestMidtrans(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v2/TRX-1/status":
			assert.Equal(t, http.MethodGet, r.Method)
			_, _ = w.Write([]byte(`{"status_code":"200","transaction_status":"settlement","order_id":"TRX-1"}`))
		case "/v2/TRX-2/status":
			_, _ = w.Write([]byte(`{"status_code":"200","transaction_status":"capture","fraud_status":"challenge"}`))
		case "/v2/TRX-1/cancel":
			assert.Equal(t, http.MethodPost, r.Method)
			_, _ = w.Write([]byte(`{"status_code":"200","transaction_status":"cancel"}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})

	status, err := client.QueryStatus(context.Background(), "TRX-1")
	require.NoError(t, err)
	assert.Equal(t, "settlement", status)

	status, err = client.QueryStatus(context.Background(), "TRX-2")
	require.NoError(t, err)
	assert.Equal(t, "pending", status)

	require.NoError(t, client.Cancel(context.Background(), "TRX-1"))
}

func TestMidtrans_VerifyWebhookSignature(t *testing.T) {
	client := gateway.NewMidtrans(config.MidtransConfig{ServerKey: "SB-Mid-server-key"}, time.Second)

	payload := domain.WebhookPayload{
		OrderID:           "TRX-1",
		StatusCode:        "200",
		GrossAmount:       "106000.00",
		TransactionStatus: "settlement",
	}
	payload.SignatureKey = client.Sign(payload.OrderID, payload.StatusCode, payload.GrossAmount)

	assert.True(t, client.VerifyWebhookSignature(payload, "TRX-1"))
	assert.False(t, client.VerifyWebhookSignature(payload, "TRX-2"), "signature belongs to another order")

	payload.GrossAmount = "1.00"
	assert.False(t, client.VerifyWebhookSignature(payload, "TRX-1"))

	payload.SignatureKey = ""
	assert.False(t, client.VerifyWebhookSignature(payload, "TRX-1"))
}
