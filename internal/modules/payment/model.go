package payment

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// TxStatus represents the lifecycle of an STK push transaction.
type TxStatus string

const (
	TxPending   TxStatus = "PENDING"
	TxCompleted TxStatus = "COMPLETED"
	TxFailed    TxStatus = "FAILED"
)

// validTransitions defines the allowed status state machine. Terminal states
// never transition again.
var validTransitions = map[TxStatus][]TxStatus{
	TxPending:   {TxCompleted, TxFailed},
	TxCompleted: {},
	TxFailed:    {},
}

// CanTransition returns true if a transaction may move from one status to another.
func CanTransition(from, to TxStatus) bool {
	for _, s := range validTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Transaction is the durable record of a single push-payment attempt. Rows are
// keyed by the gateway-issued CheckoutRequestID and are never deleted.
type Transaction struct {
	ID                uuid.UUID       `json:"id"`
	CheckoutRequestID string          `json:"checkout_request_id"`
	MerchantRequestID string          `json:"merchant_request_id"`
	PhoneNumber       string          `json:"phone_number"`
	Amount            int64           `json:"amount"` // whole shillings, the gateway rejects fractional amounts
	TableNumber       string          `json:"table_number"`
	Items             json.RawMessage `json:"items,omitempty"` // cart snapshot at initiation, not mutated afterwards
	Status            TxStatus        `json:"status"`
	ReceiptNumber     string          `json:"receipt_number,omitempty"`
	ResultDescription string          `json:"result_description,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// ── Request/Response DTOs ─────────────────────────────────────────────────────

// InitiateRequest is the payload to start a new STK push.
type InitiateRequest struct {
	PhoneNumber string          `json:"phone_number"`
	Amount      int64           `json:"amount"`
	TableNumber string          `json:"table_number"`
	Items       json.RawMessage `json:"items,omitempty"`
}

// InitiateResult is returned once the provider has accepted the push request
// and the customer's phone is about to receive the prompt.
type InitiateResult struct {
	CheckoutRequestID string `json:"checkout_request_id"`
	MerchantRequestID string `json:"merchant_request_id"`
	CustomerMessage   string `json:"customer_message,omitempty"`
}

// StatusResult is the answer to a status poll. Status stays PENDING while the
// customer has not yet resolved the prompt; the caller decides whether to poll again.
type StatusResult struct {
	Status            TxStatus `json:"status"`
	ReceiptNumber     string   `json:"receipt_number,omitempty"`
	ResultDescription string   `json:"result_description,omitempty"`
}

// ── Daraja wire types ─────────────────────────────────────────────────────────

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   string `json:"expires_in"`
}

type stkPushRequest struct {
	BusinessShortCode string `json:"BusinessShortCode"`
	Password          string `json:"Password"`
	Timestamp         string `json:"Timestamp"`
	TransactionType   string `json:"TransactionType"`
	Amount            int64  `json:"Amount"`
	PartyA            string `json:"PartyA"`
	PartyB            string `json:"PartyB"`
	PhoneNumber       string `json:"PhoneNumber"`
	CallBackURL       string `json:"CallBackURL"`
	AccountReference  string `json:"AccountReference"`
	TransactionDesc   string `json:"TransactionDesc"`
}

type stkPushResponse struct {
	ResponseCode        string `json:"ResponseCode"`
	ResponseDescription string `json:"ResponseDescription"`
	MerchantRequestID   string `json:"MerchantRequestID"`
	CheckoutRequestID   string `json:"CheckoutRequestID"`
	CustomerMessage     string `json:"CustomerMessage"`
	ErrorCode           string `json:"errorCode"`
	ErrorMessage        string `json:"errorMessage"`
}

type stkQueryRequest struct {
	BusinessShortCode string `json:"BusinessShortCode"`
	Password          string `json:"Password"`
	Timestamp         string `json:"Timestamp"`
	CheckoutRequestID string `json:"CheckoutRequestID"`
}

type stkQueryResponse struct {
	ResponseCode        string `json:"ResponseCode"`
	ResponseDescription string `json:"ResponseDescription"`
	MerchantRequestID   string `json:"MerchantRequestID"`
	CheckoutRequestID   string `json:"CheckoutRequestID"`
	ResultCode          string `json:"ResultCode"`
	ResultDesc          string `json:"ResultDesc"`
	ErrorCode           string `json:"errorCode"`
	ErrorMessage        string `json:"errorMessage"`
}

// CallbackEnvelope is the nested payload Daraja POSTs to the registered
// callback URL once the customer resolves (or abandons) the prompt.
type CallbackEnvelope struct {
	Body struct {
		StkCallback StkCallback `json:"stkCallback"`
	} `json:"Body"`
}

// StkCallback is the resolution notice for a single CheckoutRequestID.
type StkCallback struct {
	MerchantRequestID string            `json:"MerchantRequestID"`
	CheckoutRequestID string            `json:"CheckoutRequestID"`
	ResultCode        int               `json:"ResultCode"`
	ResultDesc        string            `json:"ResultDesc"`
	CallbackMetadata  *CallbackMetadata `json:"CallbackMetadata,omitempty"`
}

// CallbackMetadata carries name/value items on success; absent on failure.
type CallbackMetadata struct {
	Item []MetadataItem `json:"Item"`
}

// MetadataItem is a loosely typed {Name, Value} pair; Value may be a string or
// a JSON number depending on the field.
type MetadataItem struct {
	Name  string      `json:"Name"`
	Value interface{} `json:"Value,omitempty"`
}

// ackBody is what the callback endpoint always returns to the provider;
// anything else triggers provider-side retries.
type ackBody struct {
	ResultCode int    `json:"ResultCode"`
	ResultDesc string `json:"ResultDesc"`
}
