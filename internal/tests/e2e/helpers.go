package e2e

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/DanielPopoola/ficmart-escrow/internal/interfaces/rest"
	"github.com/stretchr/testify/require"
)

// TestClient wraps HTTP calls to the gateway
type TestClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewTestClient(baseURL string) *TestClient {
	return &TestClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *rest.APIError  `json:"error"`
}

// APIError is returned for any non-2xx response.
type APIError struct {
	Status int
	Code   string
	Msg    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("status %d: %s: %s", e.Status, e.Code, e.Msg)
}

func (c *TestClient) send(t *testing.T, method, path string, body any) (int, []byte) {
	t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case []byte:
		reader = bytes.NewReader(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	httpReq, err := http.NewRequest(method, c.baseURL+path, reader)
	require.NoError(t, err)
	if reader != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(httpReq)
	require.NoError(t, err)
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, bodyBytes
}

// call sends the request and decodes the envelope's data into out.
func (c *TestClient) call(t *testing.T, method, path string, body, out any) error {
	t.Helper()

	status, bodyBytes := c.send(t, method, path, body)

	var env envelope
	require.NoError(t, json.Unmarshal(bodyBytes, &env), string(bodyBytes))

	if status >= 400 {
		apiErr := &APIError{Status: status}
		if env.Error != nil {
			apiErr.Code = env.Error.Code
			apiErr.Msg = env.Error.Message
		}
		return apiErr
	}

	if out != nil {
		require.NoError(t, json.Unmarshal(env.Data, out))
	}
	return nil
}

func (c *TestClient) CreatePayment(t *testing.T, req map[string]any) (*rest.PaymentResponse, error) {
	var p rest.PaymentResponse
	if err := c.call(t, http.MethodPost, "/payments", req, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *TestClient) GetPayment(t *testing.T, id string) (*rest.PaymentResponse, error) {
	var p rest.PaymentResponse
	if err := c.call(t, http.MethodGet, "/payments/"+id, nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *TestClient) PaymentAction(t *testing.T, id, action string, body any) (*rest.PaymentResponse, error) {
	var p rest.PaymentResponse
	if err := c.call(t, http.MethodPost, "/payments/"+id+"/"+action, body, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// Webhook posts a raw callback body and returns the status code and the
// decoded {"status"} acknowledgement.
func (c *TestClient) Webhook(t *testing.T, body []byte) (int, string) {
	status, raw := c.send(t, http.MethodPost, "/webhooks/payments", body)

	var ack struct {
		Status string `json:"status"`
	}
	_ = json.Unmarshal(raw, &ack)
	return status, ack.Status
}

func (c *TestClient) GetEscrow(t *testing.T, id string) (*rest.EscrowResponse, error) {
	var e rest.EscrowResponse
	if err := c.call(t, http.MethodGet, "/escrows/"+id, nil, &e); err != nil {
		return nil, err
	}
	return &e, nil
}

func (c *TestClient) EscrowAction(t *testing.T, id, action string, body any) (*rest.EscrowResponse, error) {
	var e rest.EscrowResponse
	if err := c.call(t, http.MethodPost, "/escrows/"+id+"/"+action, body, &e); err != nil {
		return nil, err
	}
	return &e, nil
}

func (c *TestClient) CreateWithdrawal(t *testing.T, req map[string]any) (*rest.WithdrawalResponse, error) {
	var w rest.WithdrawalResponse
	if err := c.call(t, http.MethodPost, "/withdrawals", req, &w); err != nil {
		return nil, err
	}
	return &w, nil
}

func (c *TestClient) WithdrawalAction(t *testing.T, id, action string, body any) (*rest.WithdrawalResponse, error) {
	var w rest.WithdrawalResponse
	if err := c.call(t, http.MethodPost, "/withdrawals/"+id+"/"+action, body, &w); err != nil {
		return nil, err
	}
	return &w, nil
}

func (c *TestClient) RequestRefund(t *testing.T, req map[string]any) (*rest.RefundResponse, error) {
	var r rest.RefundResponse
	if err := c.call(t, http.MethodPost, "/refunds", req, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

func (c *TestClient) RefundAction(t *testing.T, id, action string, body any) (*rest.RefundResponse, error) {
	var r rest.RefundResponse
	if err := c.call(t, http.MethodPost, "/refunds/"+id+"/"+action, body, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

// RequireAPIError asserts err is an APIError with the given status and code.
func RequireAPIError(t *testing.T, err error, status int, code string) {
	t.Helper()
	require.Error(t, err)
	apiErr, ok := err.(*APIError)
	require.True(t, ok, "expected APIError, got %T: %v", err, err)
	require.Equal(t, status, apiErr.Status, apiErr.Error())
	require.Equal(t, code, apiErr.Code, apiErr.Error())
}
