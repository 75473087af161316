// Package messenger is the cross-chain messaging adapter. Sends are
// idempotency-keyed by (loan id, action): a completed receipt is replayed
// from the store, an in-flight or timed-out send reports Unknown via
// ccm.ErrTimeout, and only a definitive remote failure releases the key for
// a genuine re-send.
package messenger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/lawrencezcl/GeminiLendX/internal/domain/ccm"
)

type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	store      *IdempotencyStore
	log        *slog.Logger
}

func NewClient(baseURL, apiKey string, timeout time.Duration, store *IdempotencyStore, log *slog.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
		store:      store,
		log:        log,
	}
}

// Send dispatches one cross-chain message at most once per idempotency key.
func (c *Client) Send(ctx context.Context, msg ccm.Message) (*ccm.Receipt, error) {
	key := msg.IdempotencyKey()

	claimed, existing, err := c.store.Begin(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("idempotency store: %w", err)
	}
	if !claimed {
		if existing != nil && existing.Receipt != nil {
			c.log.Info("ccm send replayed from store",
				slog.String("key", key),
				slog.String("transaction_id", existing.Receipt.TransactionID))
			return existing.Receipt, nil
		}
		// A previous send is still in flight (or timed out without a
		// confirmed outcome). The remote effect may still land.
		return nil, fmt.Errorf("%w: send already in progress for %s", ccm.ErrTimeout, key)
	}

	receipt, err := c.post(ctx, msg, key)
	if err != nil {
		if errors.Is(err, ccm.ErrFailure) {
			// Definitive rejection: free the key so the caller may re-send.
			if relErr := c.store.Release(ctx, key); relErr != nil {
				c.log.Error("releasing idempotency key failed",
					slog.String("key", key), slog.Any("error", relErr))
			}
			return nil, err
		}
		// Unknown outcome: keep the provisional record until it expires.
		return nil, err
	}

	if err := c.store.Complete(ctx, key, receipt); err != nil {
		c.log.Error("storing ccm receipt failed",
			slog.String("key", key), slog.Any("error", err))
	}
	return receipt, nil
}

type sendRequest struct {
	SourceChain    string         `json:"source_chain"`
	TargetChain    string         `json:"target_chain"`
	Action         string         `json:"action"`
	Payload        map[string]any `json:"payload,omitempty"`
	IdempotencyKey string         `json:"idempotency_key"`
}

type sendResponse struct {
	TransactionID string    `json:"transaction_id"`
	Status        string    `json:"status"`
	Timestamp     time.Time `json:"timestamp"`
}

func (c *Client) post(ctx context.Context, msg ccm.Message, key string) (*ccm.Receipt, error) {
	body, err := json.Marshal(sendRequest{
		SourceChain:    msg.SourceChain,
		TargetChain:    msg.TargetChain,
		Action:         msg.Action,
		Payload:        msg.Payload,
		IdempotencyKey: key,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/messages", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// network errors and deadline expiry are Unknown, not failed
		return nil, fmt.Errorf("%w: %v", ccm.ErrTimeout, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: messenger returned status %d", ccm.ErrFailure, resp.StatusCode)
	}

	var sr sendResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return nil, fmt.Errorf("%w: decode messenger response: %v", ccm.ErrTimeout, err)
	}
	if sr.Status == ccm.StatusFailed {
		return nil, fmt.Errorf("%w: transaction %s rejected", ccm.ErrFailure, sr.TransactionID)
	}

	return &ccm.Receipt{
		TransactionID: sr.TransactionID,
		Status:        sr.Status,
		Timestamp:     sr.Timestamp,
	}, nil
}
