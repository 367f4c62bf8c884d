package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DanielPopoola/ficmart-escrow/internal/application/services"
	"github.com/DanielPopoola/ficmart-escrow/internal/domain"
	"github.com/DanielPopoola/ficmart-escrow/internal/interfaces/rest"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *rest.APIError  `json:"error"`
}

type testServer struct {
	payments    *fakePaymentService
	retries     *fakeRetryService
	escrows     *fakeEscrowService
	withdrawals *fakeWithdrawalService
	refunds     *fakeRefundService
	health      pingerFunc
	mux         *http.ServeMux
}

func newTestServer() *testServer {
	s := &testServer{
		payments:    &fakePaymentService{},
		retries:     &fakeRetryService{},
		escrows:     &fakeEscrowService{},
		withdrawals: &fakeWithdrawalService{},
		refunds:     &fakeRefundService{},
		health:      func(context.Context) error { return nil },
		mux:         http.NewServeMux(),
	}
	h := NewHandlers(s.payments, s.retries, s.escrows, s.withdrawals, s.refunds, s.health,
		slog.New(slog.NewTextHandler(io.Discard, nil)))
	h.RegisterRoutes(s.mux)
	return s
}

func (s *testServer) do(t *testing.T, method, path, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	s.mux.ServeHTTP(rr, req)

	var env envelope
	if strings.HasPrefix(rr.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &env))
	}
	return rr, env
}

func samplePayment(id string) *domain.Payment {
	now := time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)
	return &domain.Payment{
		ID:             id,
		OrderRef:       "ORD-1",
		PayerRef:       "buyer-1",
		GrossAmount:    100000,
		PlatformFee:    5000,
		GatewayFee:     1000,
		TotalCharged:   106000,
		Method:         domain.MethodQRIS,
		Gateway:        domain.GatewaySimulator,
		TransactionRef: "TRX-" + id[:8],
		Status:         domain.PaymentPending,
		InvoiceNumber:  "INV/20260115/ABCDEF12",
		ExpiresAt:      now.Add(24 * time.Hour),
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

func TestHandleCreatePayment(t *testing.T) {
	body := `{"order_ref":"ORD-1","payer_ref":"buyer-1","gross_amount":100000,"method":"qris","channel":"gopay","customer":{"email":"b@example.com"}}`

	t.Run("created", func(t *testing.T) {
		s := newTestServer()
		id := uuid.NewString()
		var got services.CreatePaymentCommand
		s.payments.createFn = func(_ context.Context, cmd services.CreatePaymentCommand) (*domain.Payment, error) {
			got = cmd
			return samplePayment(id), nil
		}

		rr, env := s.do(t, http.MethodPost, "/payments", body)

		require.Equal(t, http.StatusCreated, rr.Code)
		assert.True(t, env.Success)
		assert.Equal(t, domain.MethodQRIS, got.Method)
		assert.Equal(t, "gopay", got.Channel)
		assert.Equal(t, int64(100000), got.GrossAmount)
		assert.Equal(t, "b@example.com", got.Customer.Email)

		var data rest.PaymentResponse
		require.NoError(t, json.Unmarshal(env.Data, &data))
		assert.Equal(t, id, data.ID)
		assert.Equal(t, int64(106000), data.TotalCharged)
		assert.Equal(t, domain.PaymentPending, data.Status)
	})

	t.Run("missing fields", func(t *testing.T) {
		s := newTestServer()
		rr, env := s.do(t, http.MethodPost, "/payments", `{"order_ref":"ORD-1"}`)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.False(t, env.Success)
		assert.Equal(t, "INVALID_INPUT", env.Error.Code)
	})

	t.Run("malformed json", func(t *testing.T) {
		s := newTestServer()
		rr, env := s.do(t, http.MethodPost, "/payments", `{"order_ref":`)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, "INVALID_INPUT", env.Error.Code)
	})

	errorCases := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"active payment", domain.NewActivePaymentExistsError("ORD-1"), http.StatusConflict, domain.ErrCodeActivePaymentExists},
		{"gateway down", domain.NewGatewayCommunicationError(domain.GatewaySimulator, errors.New("connection refused")), http.StatusBadGateway, domain.ErrCodeGatewayCommunication},
		{"gateway timeout", domain.NewGatewayCommunicationError(domain.GatewaySimulator, context.DeadlineExceeded), http.StatusGatewayTimeout, domain.ErrCodeGatewayCommunication},
		{"unknown gateway", domain.NewUnsupportedGatewayError("stripe"), http.StatusBadRequest, domain.ErrCodeUnsupportedGateway},
		{"unexpected", errors.New("pool closed"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}
	for _, tc := range errorCases {
		t.Run(tc.name, func(t *testing.T) {
			s := newTestServer()
			s.payments.createFn = func(context.Context, services.CreatePaymentCommand) (*domain.Payment, error) {
				return nil, tc.err
			}

			rr, env := s.do(t, http.MethodPost, "/payments", body)

			assert.Equal(t, tc.status, rr.Code)
			require.NotNil(t, env.Error)
			assert.Equal(t, tc.code, env.Error.Code)
		})
	}
}

func TestHandleGetPayment(t *testing.T) {
	t.Run("invalid id", func(t *testing.T) {
		s := newTestServer()
		rr, env := s.do(t, http.MethodGet, "/payments/not-a-uuid", "")

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, "INVALID_INPUT", env.Error.Code)
	})

	t.Run("not found", func(t *testing.T) {
		s := newTestServer()
		id := uuid.NewString()
		s.payments.getFn = func(_ context.Context, paymentID string) (*domain.Payment, error) {
			return nil, domain.NewNotFoundError("payment", paymentID)
		}

		rr, env := s.do(t, http.MethodGet, "/payments/"+id, "")

		assert.Equal(t, http.StatusNotFound, rr.Code)
		assert.Equal(t, domain.ErrCodeNotFound, env.Error.Code)
		assert.Contains(t, env.Error.Message, id)
	})

	t.Run("found", func(t *testing.T) {
		s := newTestServer()
		id := uuid.NewString()
		s.payments.getFn = func(_ context.Context, paymentID string) (*domain.Payment, error) {
			return samplePayment(paymentID), nil
		}

		rr, env := s.do(t, http.MethodGet, "/payments/"+id, "")

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, string(env.Data), id)
	})
}

func TestHandlePaymentActions(t *testing.T) {
	id := uuid.NewString()

	t.Run("retry without body keeps the method", func(t *testing.T) {
		s := newTestServer()
		var got services.RetryPaymentCommand
		s.retries.retryFn = func(_ context.Context, cmd services.RetryPaymentCommand) (*domain.Payment, error) {
			got = cmd
			return samplePayment(uuid.NewString()), nil
		}

		rr, _ := s.do(t, http.MethodPost, "/payments/"+id+"/retry", "")

		assert.Equal(t, http.StatusCreated, rr.Code)
		assert.Equal(t, id, got.PaymentID)
		assert.Empty(t, got.Method)
	})

	t.Run("retry switches method", func(t *testing.T) {
		s := newTestServer()
		var got services.RetryPaymentCommand
		s.retries.retryFn = func(_ context.Context, cmd services.RetryPaymentCommand) (*domain.Payment, error) {
			got = cmd
			return samplePayment(uuid.NewString()), nil
		}

		s.do(t, http.MethodPost, "/payments/"+id+"/retry", `{"method":"virtual_account","channel":"bni"}`)

		assert.Equal(t, domain.MethodVirtualAccount, got.Method)
		assert.Equal(t, "bni", got.Channel)
	})

	t.Run("retry forwards card details", func(t *testing.T) {
		s := newTestServer()
		var got services.RetryPaymentCommand
		s.retries.retryFn = func(_ context.Context, cmd services.RetryPaymentCommand) (*domain.Payment, error) {
			got = cmd
			return samplePayment(uuid.NewString()), nil
		}

		rr, _ := s.do(t, http.MethodPost, "/payments/"+id+"/retry",
			`{"customer":{"name":"Budi","card_token":"card-token-2"},"line_items":[{"id":"sku-1","name":"Batik","price":100000,"quantity":1}]}`)

		assert.Equal(t, http.StatusCreated, rr.Code)
		assert.Equal(t, "card-token-2", got.Customer.CardToken)
		require.Len(t, got.LineItems, 1)
		assert.Equal(t, "sku-1", got.LineItems[0].ID)
	})

	t.Run("retry limit", func(t *testing.T) {
		s := newTestServer()
		s.retries.retryFn = func(context.Context, services.RetryPaymentCommand) (*domain.Payment, error) {
			return nil, domain.NewRetryLimitExceededError(id, 3)
		}

		rr, env := s.do(t, http.MethodPost, "/payments/"+id+"/retry", "")

		assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
		assert.Equal(t, domain.ErrCodeRetryLimitExceeded, env.Error.Code)
	})

	t.Run("check status", func(t *testing.T) {
		s := newTestServer()
		s.payments.checkStatusFn = func(_ context.Context, paymentID string) (*domain.Payment, error) {
			p := samplePayment(paymentID)
			p.Status = domain.PaymentPaid
			return p, nil
		}

		rr, env := s.do(t, http.MethodPost, "/payments/"+id+"/check-status", "")

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, string(env.Data), `"status":"paid"`)
	})

	t.Run("cancel a paid payment", func(t *testing.T) {
		s := newTestServer()
		s.payments.cancelFn = func(context.Context, string) (*domain.Payment, error) {
			return nil, domain.NewInvalidStateError("payment", "paid", "pending")
		}

		rr, env := s.do(t, http.MethodPost, "/payments/"+id+"/cancel", "")

		assert.Equal(t, http.StatusConflict, rr.Code)
		assert.Equal(t, domain.ErrCodeInvalidStateTransition, env.Error.Code)
	})
}

func TestHandlePaymentWebhook(t *testing.T) {
	body := `{"transaction_id":"TRX-1","transaction_status":"settlement","gross_amount":"106000.00","signature":"abc"}`

	t.Run("processed", func(t *testing.T) {
		s := newTestServer()
		var received []byte
		s.payments.webhookFn = func(_ context.Context, raw []byte) (*services.WebhookResult, error) {
			received = raw
			return &services.WebhookResult{Status: services.WebhookProcessed, PaymentID: "p-1"}, nil
		}

		rr, _ := s.do(t, http.MethodPost, "/webhooks/payments", body)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, `{"status":"processed","payment_id":"p-1"}`, rr.Body.String())
		assert.JSONEq(t, body, string(received))
	})

	t.Run("ignored", func(t *testing.T) {
		s := newTestServer()
		s.payments.webhookFn = func(context.Context, []byte) (*services.WebhookResult, error) {
			return &services.WebhookResult{Status: services.WebhookIgnored}, nil
		}

		rr, _ := s.do(t, http.MethodPost, "/webhooks/payments", `garbage`)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, `{"status":"ignored"}`, rr.Body.String())
	})

	t.Run("bad signature", func(t *testing.T) {
		s := newTestServer()
		s.payments.webhookFn = func(context.Context, []byte) (*services.WebhookResult, error) {
			return nil, domain.NewSignatureError("TRX-1")
		}

		rr, env := s.do(t, http.MethodPost, "/webhooks/payments", body)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.Equal(t, domain.ErrCodeSignatureInvalid, env.Error.Code)
	})
}

func TestHandleEscrowActions(t *testing.T) {
	id := uuid.NewString()
	escrow := &domain.Escrow{ID: id, Amount: 100000, Status: domain.EscrowReleased, ReleasedAmount: 100000}

	for _, action := range []string{"release", "refund", "dispute", "resolve"} {
		t.Run(action, func(t *testing.T) {
			s := newTestServer()
			var gotAction string
			var got services.EscrowActionCommand
			s.escrows.actionFn = func(a string, cmd services.EscrowActionCommand) (*domain.Escrow, error) {
				gotAction, got = a, cmd
				return escrow, nil
			}

			rr, env := s.do(t, http.MethodPost, "/escrows/"+id+"/"+action, `{"actor_ref":"admin-1","reason":"checked"}`)

			require.Equal(t, http.StatusOK, rr.Code)
			assert.True(t, env.Success)
			assert.Equal(t, action, gotAction)
			assert.Equal(t, id, got.EscrowID)
			assert.Equal(t, "admin-1", got.ActorRef)
			assert.Equal(t, "checked", got.Reason)
		})
	}

	t.Run("actor required", func(t *testing.T) {
		s := newTestServer()
		rr, env := s.do(t, http.MethodPost, "/escrows/"+id+"/release", `{"reason":"checked"}`)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, "INVALID_INPUT", env.Error.Code)
	})

	t.Run("partial release", func(t *testing.T) {
		s := newTestServer()
		var got services.PartialReleaseCommand
		s.escrows.partialFn = func(_ context.Context, cmd services.PartialReleaseCommand) (*domain.Escrow, error) {
			got = cmd
			return &domain.Escrow{ID: id, Amount: 100000, ReleasedAmount: 60000, RefundedAmount: 40000, Status: domain.EscrowReleased}, nil
		}

		rr, env := s.do(t, http.MethodPost, "/escrows/"+id+"/partial-release", `{"actor_ref":"admin-1","amount":60000}`)

		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, int64(60000), got.Amount)

		var data rest.EscrowResponse
		require.NoError(t, json.Unmarshal(env.Data, &data))
		assert.Equal(t, int64(60000), data.ReleasedAmount)
		assert.Equal(t, int64(57000), data.NetPayout)
	})

	t.Run("get", func(t *testing.T) {
		s := newTestServer()
		s.escrows.getFn = func(context.Context, string) (*domain.Escrow, error) { return escrow, nil }

		rr, env := s.do(t, http.MethodGet, "/escrows/"+id, "")

		require.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, string(env.Data), `"net_payout":95000`)
	})
}

func TestHandleWithdrawals(t *testing.T) {
	escrowID := uuid.NewString()
	withdrawalID := uuid.NewString()
	withdrawal := &domain.Withdrawal{ID: withdrawalID, EscrowID: escrowID, GrossAmount: 100000, PlatformFee: 5000, NetAmount: 95000, Status: domain.WithdrawalPending}

	t.Run("create", func(t *testing.T) {
		s := newTestServer()
		var got services.CreateWithdrawalCommand
		s.withdrawals.createFn = func(_ context.Context, cmd services.CreateWithdrawalCommand) (*domain.Withdrawal, error) {
			got = cmd
			return withdrawal, nil
		}

		rr, env := s.do(t, http.MethodPost, "/withdrawals",
			`{"escrow_id":"`+escrowID+`","payee_ref":"seller-1","payout_method":"bank_transfer","destination_account":"BCA 123"}`)

		require.Equal(t, http.StatusCreated, rr.Code)
		assert.Equal(t, domain.PayoutBankTransfer, got.PayoutMethod)
		assert.Contains(t, string(env.Data), `"net_amount":95000`)
	})

	t.Run("escrow not released", func(t *testing.T) {
		s := newTestServer()
		s.withdrawals.createFn = func(context.Context, services.CreateWithdrawalCommand) (*domain.Withdrawal, error) {
			return nil, domain.NewEscrowNotReleasedError(escrowID, domain.EscrowHeld)
		}

		rr, env := s.do(t, http.MethodPost, "/withdrawals",
			`{"escrow_id":"`+escrowID+`","payee_ref":"seller-1","payout_method":"bank_transfer","destination_account":"BCA 123"}`)

		assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
		assert.Equal(t, domain.ErrCodeEscrowNotReleased, env.Error.Code)
	})

	cases := []struct {
		route  string
		body   string
		action string
		arg    string
	}{
		{"process", `{"actor_ref":"ops-1"}`, "process", "ops-1"},
		{"complete", `{"proof_ref":"TRF-1"}`, "complete", "TRF-1"},
		{"fail", `{"reason":"account closed"}`, "fail", "account closed"},
		{"instant", `{"actor_ref":"ops-2"}`, "instant", "ops-2"},
	}
	for _, tc := range cases {
		t.Run(tc.route, func(t *testing.T) {
			s := newTestServer()
			var gotAction, gotID, gotArg string
			s.withdrawals.actionFn = func(action, id, arg string) (*domain.Withdrawal, error) {
				gotAction, gotID, gotArg = action, id, arg
				return withdrawal, nil
			}

			rr, _ := s.do(t, http.MethodPost, "/withdrawals/"+withdrawalID+"/"+tc.route, tc.body)

			require.Equal(t, http.StatusOK, rr.Code)
			assert.Equal(t, tc.action, gotAction)
			assert.Equal(t, withdrawalID, gotID)
			assert.Equal(t, tc.arg, gotArg)
		})
	}

	t.Run("fail requires a reason", func(t *testing.T) {
		s := newTestServer()
		rr, _ := s.do(t, http.MethodPost, "/withdrawals/"+withdrawalID+"/fail", `{}`)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestHandleRefunds(t *testing.T) {
	paymentID := uuid.NewString()
	refundID := uuid.NewString()
	refund := &domain.Refund{ID: refundID, PaymentID: paymentID, Amount: 100000, Status: domain.RefundPending}

	t.Run("request", func(t *testing.T) {
		s := newTestServer()
		var got services.RequestRefundCommand
		s.refunds.requestFn = func(_ context.Context, cmd services.RequestRefundCommand) (*domain.Refund, error) {
			got = cmd
			return refund, nil
		}

		rr, _ := s.do(t, http.MethodPost, "/refunds",
			`{"payment_id":"`+paymentID+`","requester":"buyer-1","reason":"damaged","amount":100000}`)

		require.Equal(t, http.StatusCreated, rr.Code)
		assert.Equal(t, paymentID, got.PaymentID)
		assert.Equal(t, int64(100000), got.Amount)
	})

	t.Run("active refund exists", func(t *testing.T) {
		s := newTestServer()
		s.refunds.requestFn = func(context.Context, services.RequestRefundCommand) (*domain.Refund, error) {
			return nil, domain.NewActiveRefundExistsError(paymentID)
		}

		rr, env := s.do(t, http.MethodPost, "/refunds",
			`{"payment_id":"`+paymentID+`","requester":"buyer-1","reason":"damaged","amount":100000}`)

		assert.Equal(t, http.StatusConflict, rr.Code)
		assert.Equal(t, domain.ErrCodeActiveRefundExists, env.Error.Code)
	})

	for _, action := range []string{"approve", "complete", "reject"} {
		t.Run(action, func(t *testing.T) {
			s := newTestServer()
			var gotAction, gotNote string
			s.refunds.actionFn = func(a, id, note string) (*domain.Refund, error) {
				gotAction, gotNote = a, note
				return refund, nil
			}

			rr, _ := s.do(t, http.MethodPost, "/refunds/"+refundID+"/"+action, `{"note":"ok"}`)

			require.Equal(t, http.StatusOK, rr.Code)
			assert.Equal(t, action, gotAction)
			assert.Equal(t, "ok", gotNote)
		})
	}

	t.Run("approve without body", func(t *testing.T) {
		s := newTestServer()
		s.refunds.actionFn = func(_, _, note string) (*domain.Refund, error) {
			assert.Empty(t, note)
			return refund, nil
		}

		rr, _ := s.do(t, http.MethodPost, "/refunds/"+refundID+"/approve", "")

		assert.Equal(t, http.StatusOK, rr.Code)
	})
}

func TestHandleHealth(t *testing.T) {
	t.Run("ok", func(t *testing.T) {
		s := newTestServer()
		rr, env := s.do(t, http.MethodGet, "/health", "")

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, `{"status":"ok"}`, string(env.Data))
	})

	t.Run("database down", func(t *testing.T) {
		s := newTestServer()
		h := NewHandlers(s.payments, s.retries, s.escrows, s.withdrawals, s.refunds,
			pingerFunc(func(context.Context) error { return errors.New("connection refused") }),
			slog.New(slog.NewTextHandler(io.Discard, nil)))
		mux := http.NewServeMux()
		h.RegisterRoutes(mux)

		rr := httptest.NewRecorder()
		mux.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))

		assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
		assert.Contains(t, rr.Body.String(), "UNAVAILABLE")
	})
}
