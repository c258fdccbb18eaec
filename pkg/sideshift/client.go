package sideshift

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/go-playground/validator/v10"
)

const (
	secretHeader   = "x-sideshift-secret"
	callerIPHeader = "x-user-ip"

	defaultTimeout = 30 * time.Second
)

// Client talks to the SideShift REST API. Every outbound payload is checked
// against its schema before transmission and every response body is checked
// after decoding, so callers never see a half-formed quote or order.
type Client struct {
	baseURL        string
	apiSecret      string
	affiliateID    string
	commissionRate string
	httpClient     *http.Client
	validate       *validator.Validate
}

// NewClient creates a SideShift API client. affiliateID and commissionRate
// are merged into order-creation requests that omit them.
func NewClient(baseURL, apiSecret, affiliateID, commissionRate string) *Client {
	return &Client{
		baseURL:        baseURL,
		apiSecret:      apiSecret,
		affiliateID:    affiliateID,
		commissionRate: commissionRate,
		httpClient:     &http.Client{Timeout: defaultTimeout},
		validate:       validator.New(),
	}
}

// GetPermissions checks whether the caller's jurisdiction may create shifts.
func (c *Client) GetPermissions(ctx context.Context, callerIP string) (*Permissions, error) {
	var perms Permissions
	if err := c.do(ctx, http.MethodGet, "/permissions", nil, nil, &perms, callerIP); err != nil {
		return nil, err
	}
	return &perms, nil
}

// GetPair fetches a variable-rate quote for from -> to. amount is optional;
// leaving it empty avoids provider-side minimum errors when only the rate is
// needed.
func (c *Client) GetPair(ctx context.Context, from, to, amount, callerIP string) (*Pair, error) {
	if from == "" || to == "" {
		return nil, &APIError{Code: CodeValidationError, Message: "pair requires both a deposit and a settle asset"}
	}

	query := url.Values{}
	if amount != "" {
		query.Set("amount", amount)
	}
	if c.affiliateID != "" {
		query.Set("affiliateId", c.affiliateID)
	}
	if c.commissionRate != "" {
		query.Set("commissionRate", c.commissionRate)
	}

	path := fmt.Sprintf("/pair/%s/%s", url.PathEscape(from), url.PathEscape(to))
	var pair Pair
	if err := c.do(ctx, http.MethodGet, path, query, nil, &pair, callerIP); err != nil {
		return nil, err
	}
	return &pair, nil
}

// CreateVariableShift creates a variable-rate order.
func (c *Client) CreateVariableShift(ctx context.Context, req VariableShiftRequest, callerIP string) (*Shift, error) {
	c.mergeDefaults(&req.AffiliateID, &req.CommissionRate)

	var shift Shift
	if err := c.do(ctx, http.MethodPost, "/shifts/variable", nil, req, &shift, callerIP); err != nil {
		return nil, err
	}
	return &shift, nil
}

// GetShift fetches the current snapshot of an order. Idempotent read.
func (c *Client) GetShift(ctx context.Context, id, callerIP string) (*Shift, error) {
	if id == "" {
		return nil, &APIError{Code: CodeValidationError, Message: "shift id is required"}
	}

	var shift Shift
	if err := c.do(ctx, http.MethodGet, "/shifts/"+url.PathEscape(id), nil, nil, &shift, callerIP); err != nil {
		return nil, err
	}
	return &shift, nil
}

// RequestFixedQuote asks for a locked rate. The quote must be redeemed via
// CreateFixedShift before its expiry; the provider rejects late redemptions.
func (c *Client) RequestFixedQuote(ctx context.Context, req FixedQuoteRequest, callerIP string) (*FixedQuote, error) {
	c.mergeDefaults(&req.AffiliateID, &req.CommissionRate)
	if req.DepositAmount == "" && req.SettleAmount == "" {
		return nil, &APIError{Code: CodeValidationError, Message: "a fixed quote requires a deposit or settle amount"}
	}

	var quote FixedQuote
	if err := c.do(ctx, http.MethodPost, "/quotes", nil, req, &quote, callerIP); err != nil {
		return nil, err
	}
	return &quote, nil
}

// CreateFixedShift redeems a fixed quote into an order.
func (c *Client) CreateFixedShift(ctx context.Context, req FixedShiftRequest, callerIP string) (*Shift, error) {
	if req.AffiliateID == "" {
		req.AffiliateID = c.affiliateID
	}

	var shift Shift
	if err := c.do(ctx, http.MethodPost, "/shifts/fixed", nil, req, &shift, callerIP); err != nil {
		return nil, err
	}
	return &shift, nil
}

// CancelOrder requests cancellation of an order. The provider only allows
// cancellation once the order is at least five minutes old, which it signals
// with a 400; that is reinterpreted here as TooEarly so callers can tell the
// user to wait instead of guessing what was wrong with the request.
func (c *Client) CancelOrder(ctx context.Context, id, callerIP string) (*CancelResult, error) {
	if id == "" {
		return nil, &APIError{Code: CodeValidationError, Message: "order id is required"}
	}

	body := map[string]string{"orderId": id}
	var result CancelResult
	err := c.do(ctx, http.MethodPost, "/cancel-order", nil, body, &result, callerIP)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) {
			switch apiErr.Code {
			case CodeInvalidRequest:
				apiErr.Code = CodeTooEarly
				apiErr.Message = "the order is too recent to cancel; orders can be cancelled 5 minutes after creation"
			case CodeNotFound:
				apiErr.Message = fmt.Sprintf("no order with id %s was found", id)
			}
			return nil, apiErr
		}
		return nil, err
	}
	return &result, nil
}

// SetRefundAddress attaches a refund address to an existing order.
func (c *Client) SetRefundAddress(ctx context.Context, id, address, memo, callerIP string) (*Shift, error) {
	if id == "" || address == "" {
		return nil, &APIError{Code: CodeValidationError, Message: "order id and refund address are required"}
	}

	body := map[string]string{"address": address}
	if memo != "" {
		body["memo"] = memo
	}

	var shift Shift
	path := fmt.Sprintf("/shifts/%s/set-refund-address", url.PathEscape(id))
	if err := c.do(ctx, http.MethodPost, path, nil, body, &shift, callerIP); err != nil {
		return nil, err
	}
	return &shift, nil
}

// mergeDefaults fills affiliate id and commission rate when the request
// omitted them.
func (c *Client) mergeDefaults(affiliateID, commissionRate *string) {
	if *affiliateID == "" {
		*affiliateID = c.affiliateID
	}
	if *commissionRate == "" {
		*commissionRate = c.commissionRate
	}
}

// do performs the request and decodes the response into out. Transport
// failures become CodeNetworkError; HTTP failures become the mapped coarse
// code carrying whatever the provider put in the error body.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out interface{}, callerIP string) error {
	if body != nil {
		if err := c.validateOutbound(body); err != nil {
			return err
		}
	}

	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var payload io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return &APIError{Code: CodeValidationError, Message: fmt.Sprintf("encode request: %v", err)}
		}
		payload = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, payload)
	if err != nil {
		return &APIError{Code: CodeNetworkError, Message: err.Error()}
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiSecret != "" {
		req.Header.Set(secretHeader, c.apiSecret)
	}
	if callerIP != "" {
		req.Header.Set(callerIPHeader, callerIP)
	}

	res, err := c.httpClient.Do(req)
	if err != nil {
		return &APIError{Code: CodeNetworkError, Message: err.Error()}
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return &APIError{Code: CodeNetworkError, Message: err.Error()}
	}

	if res.StatusCode >= 400 {
		return errorFromResponse(res.StatusCode, raw)
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &APIError{Code: CodeUnknown, Status: res.StatusCode, Message: fmt.Sprintf("decode response: %v", err)}
	}
	if err := c.validate.Struct(out); err != nil {
		return &APIError{Code: CodeUnknown, Status: res.StatusCode, Message: fmt.Sprintf("response failed schema validation: %v", err)}
	}
	return nil
}

// validateOutbound checks a request payload against its struct tags. Plain
// maps (cancel, refund-address bodies) are validated at the call site.
func (c *Client) validateOutbound(body interface{}) error {
	if _, ok := body.(map[string]string); ok {
		return nil
	}
	if err := c.validate.Struct(body); err != nil {
		return &APIError{Code: CodeValidationError, Message: fmt.Sprintf("request failed schema validation: %v", err)}
	}
	return nil
}

// errorFromResponse builds an APIError from a non-2xx response. The provider
// wraps failures as {"error": {"message": "..."}} but older endpoints return
// flat {"message"} or {"error": "..."} bodies; all three are handled.
func errorFromResponse(status int, raw []byte) *APIError {
	apiErr := &APIError{Code: codeForStatus(status), Status: status}

	var parsed map[string]interface{}
	if err := json.Unmarshal(raw, &parsed); err == nil {
		apiErr.Body = parsed
		if inner, ok := parsed["error"].(map[string]interface{}); ok {
			if msg, ok := inner["message"].(string); ok {
				apiErr.Message = msg
			}
		}
		if apiErr.Message == "" {
			if msg, ok := parsed["message"].(string); ok {
				apiErr.Message = msg
			}
		}
		if apiErr.Message == "" {
			if msg, ok := parsed["error"].(string); ok {
				apiErr.Message = msg
			}
		}
	}

	return apiErr
}
