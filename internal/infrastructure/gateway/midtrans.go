package gateway

import (
	"bytes"
	"context"
	"crypto/sha512"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/DanielPopoola/ficmart-escrow/internal/application"
	"github.com/DanielPopoola/ficmart-escrow/internal/config"
	"github.com/DanielPopoola/ficmart-escrow/internal/domain"
)

// Midtrans talks to a Midtrans-compatible Core API over HTTP.
type Midtrans struct {
	baseURL    string
	serverKey  string
	httpClient *http.Client
}

func NewMidtrans(cfg config.MidtransConfig, timeout time.Duration) *Midtrans {
	return &Midtrans{
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		serverKey: cfg.ServerKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

func (c *Midtrans) Name() domain.GatewayName {
	return domain.GatewayMidtrans
}

func (c *Midtrans) CreateCharge(ctx context.Context, req domain.ChargeRequest) (*domain.ChargeResult, error) {
	body, err := buildChargeRequest(req)
	if err != nil {
		return nil, err
	}

	endpoint := fmt.Sprintf("%s/v2/charge", c.baseURL)
	resp, err := sendRequest[chargeRequest, chargeResponse](c, ctx, http.MethodPost, endpoint, body)
	if err != nil {
		return nil, err
	}

	return toChargeResult(resp), nil
}

func (c *Midtrans) QueryStatus(ctx context.Context, transactionRef string) (string, error) {
	endpoint := fmt.Sprintf("%s/v2/%s/status", c.baseURL, url.PathEscape(transactionRef))
	resp, err := sendRequest[any, statusResponse](c, ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", err
	}
	if resp.TransactionStatus == "capture" && strings.EqualFold(resp.FraudStatus, "challenge") {
		return "pending", nil
	}
	return resp.TransactionStatus, nil
}

func (c *Midtrans) Cancel(ctx context.Context, transactionRef string) error {
	endpoint := fmt.Sprintf("%s/v2/%s/cancel", c.baseURL, url.PathEscape(transactionRef))
	_, err := sendRequest[any, statusResponse](c, ctx, http.MethodPost, endpoint, nil)
	return err
}

// VerifyWebhookSignature checks signature_key = SHA512(order_id + status_code + gross_amount + server_key).
// Midtrans echoes the transaction reference as order_id.
func (c *Midtrans) VerifyWebhookSignature(payload domain.WebhookPayload, transactionRef string) bool {
	if transactionRef == "" || payload.OrderID != transactionRef || payload.SignatureKey == "" {
		return false
	}
	expected := c.Sign(transactionRef, payload.StatusCode, payload.GrossAmount)
	return subtle.ConstantTimeCompare([]byte(expected), []byte(strings.ToLower(payload.SignatureKey))) == 1
}

func (c *Midtrans) Sign(orderID, statusCode, grossAmount string) string {
	sum := sha512.Sum512([]byte(orderID + statusCode + grossAmount + c.serverKey))
	return hex.EncodeToString(sum[:])
}

func buildChargeRequest(req domain.ChargeRequest) (*chargeRequest, error) {
	body := &chargeRequest{
		TransactionDetails: transactionDetails{
			OrderID:     req.TransactionRef,
			GrossAmount: req.GrossAmount,
		},
	}

	if req.Customer != (domain.CustomerInfo{}) {
		body.CustomerDetails = &customerDetails{
			FirstName: req.Customer.Name,
			Email:     req.Customer.Email,
			Phone:     req.Customer.Phone,
		}
	}
	for _, item := range req.LineItems {
		body.ItemDetails = append(body.ItemDetails, itemDetail{
			ID:       item.ID,
			Price:    item.Price,
			Quantity: item.Quantity,
			Name:     item.Name,
		})
	}

	channel := strings.ToLower(req.Channel)
	switch req.Method {
	case domain.MethodBankTransfer, domain.MethodVirtualAccount:
		if channel == "" {
			channel = "bca"
		}
		if channel == "mandiri" {
			body.PaymentType = "echannel"
			body.Echannel = &echannelParams{BillInfo1: "Payment for", BillInfo2: req.TransactionRef}
		} else {
			body.PaymentType = "bank_transfer"
			body.BankTransfer = &bankTransferParams{Bank: channel}
		}
	case domain.MethodEWallet:
		if channel == "shopeepay" {
			body.PaymentType = "shopeepay"
			body.ShopeePay = &eWalletParams{}
		} else {
			body.PaymentType = "gopay"
			body.Gopay = &eWalletParams{EnableCallback: true}
		}
	case domain.MethodQRIS:
		body.PaymentType = "qris"
		body.Qris = &qrisParams{Acquirer: channel}
	case domain.MethodCreditCard:
		if req.Customer.CardToken == "" {
			return nil, domain.NewMissingRequiredFieldError("card token")
		}
		body.PaymentType = "credit_card"
		body.CreditCard = &creditCardParams{TokenID: req.Customer.CardToken, Authentication: true}
	default:
		return nil, domain.NewValidationError("unsupported payment method %q", req.Method)
	}

	return body, nil
}

func toChargeResult(resp *chargeResponse) *domain.ChargeResult {
	result := &domain.ChargeResult{
		ExternalRef:   resp.TransactionID,
		InitiationURL: resp.RedirectURL,
	}

	if len(resp.VANumbers) > 0 {
		result.Instructions.Bank = resp.VANumbers[0].Bank
		result.Instructions.VANumber = resp.VANumbers[0].VANumber
	}
	if resp.PermataVANumber != "" {
		result.Instructions.Bank = "permata"
		result.Instructions.VANumber = resp.PermataVANumber
	}
	result.Instructions.BillKey = resp.BillKey
	result.Instructions.BillerCode = resp.BillerCode
	result.Instructions.QRPayload = resp.QRString

	for _, a := range resp.Actions {
		switch a.Name {
		case "deeplink-redirect":
			result.Instructions.Deeplink = a.URL
			if result.InitiationURL == "" {
				result.InitiationURL = a.URL
			}
		case "generate-qr-code":
			if result.Instructions.QRPayload == "" {
				result.Instructions.QRPayload = a.URL
			}
		}
	}

	return result
}

type statusCarrier interface {
	status() apiStatus
}

func sendRequest[Req any, Resp statusCarrier](c *Midtrans, ctx context.Context, method, endpoint string, reqBody *Req) (*Resp, error) {
	var bodyReader io.Reader
	if reqBody != nil {
		jsonData, err := json.Marshal(reqBody)
		if err != nil {
			return nil, fmt.Errorf("error marshalling json: %w", err)
		}
		bodyReader = bytes.NewReader(jsonData)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, endpoint, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}

	httpReq.Header.Set("Accept", "application/json")
	if reqBody != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	httpReq.SetBasicAuth(c.serverKey, "")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("error making request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("error reading response: %w", err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		var errResp apiStatus
		if err := json.Unmarshal(body, &errResp); err != nil || errResp.StatusMessage == "" {
			return nil, &application.GatewayError{
				Code:       strconv.Itoa(resp.StatusCode),
				Message:    strings.TrimSpace(string(body)),
				StatusCode: resp.StatusCode,
			}
		}
		return nil, &application.GatewayError{
			Code:       errResp.StatusCode,
			Message:    errResp.StatusMessage,
			StatusCode: resp.StatusCode,
		}
	}

	var out Resp
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("error decoding json response: %w", err)
	}

	st := out.status()
	if code, err := strconv.Atoi(st.StatusCode); err == nil && code >= http.StatusBadRequest {
		return nil, &application.GatewayError{
			Code:       st.StatusCode,
			Message:    st.StatusMessage,
			StatusCode: code,
		}
	}

	return &out, nil
}
