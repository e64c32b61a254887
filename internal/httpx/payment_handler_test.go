package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rohitpatil/agrimart/internal/auth"
	"github.com/rohitpatil/agrimart/internal/payment"
)

type stubGateway struct {
	order payment.GatewayOrder
	err   error
}

func (s *stubGateway) CreateOrder(_ context.Context, amountMinor int64, currency, _ string) (payment.GatewayOrder, error) {
	if s.err != nil {
		return payment.GatewayOrder{}, s.err
	}
	out := s.order
	out.Amount = amountMinor
	out.Currency = currency
	return out, nil
}

type stubVerifier struct {
	ids []string
	err error
}

func (s *stubVerifier) Verify(context.Context, string, string, string) ([]string, error) {
	return s.ids, s.err
}

func (s *stubVerifier) Cancelled(context.Context, string) error {
	return payment.ErrPaymentCancelled
}

func newPaymentRouter(gw payment.Gateway, v paymentVerifier) chi.Router {
	r := chi.NewRouter()
	h := &PaymentHandler{Gateway: gw, Service: v, JWTSecret: testJWTSecret}
	h.Register(r)
	return r
}

func post(r http.Handler, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func postAuthed(t *testing.T, r http.Handler, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", bearerFor(t, "buyer-1", auth.RoleBuyer))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestCreateOrder_Shape(t *testing.T) {
	gw := &stubGateway{order: payment.GatewayOrder{ID: "order_rzp_1", Status: "created"}}
	r := newPaymentRouter(gw, &stubVerifier{})

	rec := postAuthed(t, r, "/api/create-razorpay-order", `{"amount":50000,"currency":"INR"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))

	var got payment.GatewayOrder
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "order_rzp_1", got.ID)
	assert.Equal(t, int64(50000), got.Amount)
	assert.Equal(t, "INR", got.Currency)
}

func TestCreateOrder_RejectsBadAmount(t *testing.T) {
	r := newPaymentRouter(&stubGateway{}, &stubVerifier{})

	rec := postAuthed(t, r, "/api/create-razorpay-order", `{"amount":0}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateOrder_RequiresAuth(t *testing.T) {
	r := newPaymentRouter(&stubGateway{order: payment.GatewayOrder{ID: "order_rzp_1"}}, &stubVerifier{})

	rec := post(r, "/api/create-razorpay-order", `{"amount":100}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCreateOrder_GatewayDownIs502(t *testing.T) {
	gw := &stubGateway{err: &payment.CreationError{Err: errors.New("upstream 500")}}
	r := newPaymentRouter(gw, &stubVerifier{})

	rec := postAuthed(t, r, "/api/create-razorpay-order", `{"amount":100}`)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestVerify_Success(t *testing.T) {
	r := newPaymentRouter(&stubGateway{}, &stubVerifier{ids: []string{"o1", "o2"}})

	rec := post(r, "/api/verify-payment", `{"order_id":"order_rzp_1","payment_id":"pay_1","signature":"abc"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var got struct {
		Status   string   `json:"status"`
		OrderIDs []string `json:"order_ids"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "success", got.Status)
	assert.Equal(t, []string{"o1", "o2"}, got.OrderIDs)
}

func TestVerify_FailureShape(t *testing.T) {
	r := newPaymentRouter(&stubGateway{}, &stubVerifier{err: payment.ErrVerificationFailed})

	rec := post(r, "/api/verify-payment", `{"order_id":"order_rzp_1","payment_id":"pay_1","signature":"bad"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var got map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "failure", got["status"])
}

func TestVerify_MissingFields(t *testing.T) {
	r := newPaymentRouter(&stubGateway{}, &stubVerifier{})

	rec := post(r, "/api/verify-payment", `{"order_id":"x"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCancelled_IsRecoverable(t *testing.T) {
	r := newPaymentRouter(&stubGateway{}, &stubVerifier{})

	rec := post(r, "/api/payment-cancelled", `{"order_id":"order_rzp_1"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var got map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "cancelled", got["status"])
}

func TestPreflight(t *testing.T) {
	r := newPaymentRouter(&stubGateway{}, &stubVerifier{})

	req := httptest.NewRequest(http.MethodOptions, "/api/verify-payment", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}
