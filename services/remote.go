package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// RemoteOrderCreator calls a deployed create-order function over HTTP with
// the service credential.
type RemoteOrderCreator struct {
	URL        string
	ServiceKey string
	Client     *http.Client
}

// NewRemoteOrderCreator creates a RemoteOrderCreator with a 10s client timeout.
func NewRemoteOrderCreator(url, serviceKey string) *RemoteOrderCreator {
	return &RemoteOrderCreator{
		URL:        url,
		ServiceKey: serviceKey,
		Client:     &http.Client{Timeout: 10 * time.Second},
	}
}

type remoteResponse struct {
	Success bool   `json:"success"`
	OrderID string `json:"orderId"`
	Error   string `json:"error"`
}

func (c *RemoteOrderCreator) CreateOrder(ctx context.Context, req CreateOrderRequest) (*CreateOrderResult, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, internal("failed to encode order", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.URL, bytes.NewReader(body))
	if err != nil {
		return nil, internal("failed to build create-order request", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.ServiceKey)

	resp, err := c.Client.Do(httpReq)
	if err != nil {
		return nil, &Error{Kind: KindOrderInsertFailed, Message: "Failed to reach order service", Err: err}
	}
	defer resp.Body.Close()

	var out remoteResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, internal("invalid response from order service", fmt.Errorf("status %d: %w", resp.StatusCode, err))
	}
	if resp.StatusCode == http.StatusOK && out.Success {
		return &CreateOrderResult{Success: true, OrderID: out.OrderID}, nil
	}
	return nil, &Error{Kind: kindForStatus(resp.StatusCode, out.OrderID), Message: out.Error, OrderID: out.OrderID}
}

func kindForStatus(status int, orderID string) Kind {
	switch status {
	case http.StatusBadRequest:
		return KindValidation
	case http.StatusUnauthorized:
		return KindAuthenticationRequired
	case http.StatusForbidden:
		return KindAuthorization
	case http.StatusNotFound:
		return KindNotFound
	case http.StatusConflict:
		return KindDuplicateRequest
	}
	if orderID != "" {
		return KindOrderItemsInsertFailed
	}
	return KindOrderInsertFailed
}

// StatusFor maps an error kind to its HTTP status.
func StatusFor(kind Kind) int {
	switch kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindAuthenticationRequired:
		return http.StatusUnauthorized
	case KindAuthorization:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindDuplicateRequest:
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}
