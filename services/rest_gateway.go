package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"mindboost/utils"
)

// RestGateway talks to the remote row-storage API (PostgREST-style: one
// resource per table, eq. filters in the query string). File operations go
// to object storage via utils.
type RestGateway struct {
	baseURL string
	apiKey  string
	client  *http.Client

	mu          sync.Mutex
	identity    string
	subscribers map[int]func(userID string)
	nextSubID   int
}

func NewRestGateway(baseURL, apiKey string) *RestGateway {
	return &RestGateway{
		baseURL:     baseURL,
		apiKey:      apiKey,
		client:      &http.Client{Timeout: 10 * time.Second},
		subscribers: make(map[int]func(string)),
	}
}

func (g *RestGateway) InsertRecord(ctx context.Context, table string, payload map[string]any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return &GatewayError{Kind: GatewayRequest, Op: "insert " + table, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		fmt.Sprintf("%s/rest/v1/%s", g.baseURL, table), bytes.NewReader(body))
	if err != nil {
		return &GatewayError{Kind: GatewayRequest, Op: "insert " + table, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	g.auth(req)

	return g.do(req, "insert "+table, nil)
}

func (g *RestGateway) SelectRecords(ctx context.Context, table string, filter RecordFilter) ([]map[string]any, error) {
	q := url.Values{}
	if filter.UserID != "" {
		q.Set("user_id", "eq."+filter.UserID)
	}
	if filter.GameType != "" {
		q.Set("game_type", "eq."+filter.GameType)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		fmt.Sprintf("%s/rest/v1/%s?%s", g.baseURL, table, q.Encode()), nil)
	if err != nil {
		return nil, &GatewayError{Kind: GatewayRequest, Op: "select " + table, Err: err}
	}
	g.auth(req)

	var rows []map[string]any
	if err := g.do(req, "select "+table, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

func (g *RestGateway) DeleteRecord(ctx context.Context, table, id, userID string) error {
	q := url.Values{}
	q.Set("id", "eq."+id)
	q.Set("user_id", "eq."+userID)

	req, err := http.NewRequestWithContext(ctx, http.MethodDelete,
		fmt.Sprintf("%s/rest/v1/%s?%s", g.baseURL, table, q.Encode()), nil)
	if err != nil {
		return &GatewayError{Kind: GatewayRequest, Op: "delete " + table, Err: err}
	}
	g.auth(req)

	return g.do(req, "delete "+table, nil)
}

func (g *RestGateway) UploadFile(ctx context.Context, bucket, path string, data []byte, contentType string) (string, error) {
	u, err := utils.UploadToBucket(ctx, bucket, path, data, contentType)
	if err != nil {
		return "", &GatewayError{Kind: GatewayUnavailable, Op: "upload " + path, Err: err}
	}
	return u, nil
}

func (g *RestGateway) DeleteFile(ctx context.Context, bucket, path string) error {
	if err := utils.DeleteFromBucket(ctx, bucket, path); err != nil {
		return &GatewayError{Kind: GatewayUnavailable, Op: "delete file " + path, Err: err}
	}
	return nil
}

// OnIdentityChange invokes cb once with the current identity and again on
// every SetIdentity transition until unsubscribed.
func (g *RestGateway) OnIdentityChange(cb func(userID string)) func() {
	g.mu.Lock()
	id := g.nextSubID
	g.nextSubID++
	g.subscribers[id] = cb
	current := g.identity
	g.mu.Unlock()

	cb(current)

	return func() {
		g.mu.Lock()
		delete(g.subscribers, id)
		g.mu.Unlock()
	}
}

// SetIdentity records an auth transition (sign-in with a user id, sign-out
// with "") and notifies subscribers.
func (g *RestGateway) SetIdentity(userID string) {
	g.mu.Lock()
	g.identity = userID
	subs := make([]func(string), 0, len(g.subscribers))
	for _, cb := range g.subscribers {
		subs = append(subs, cb)
	}
	g.mu.Unlock()

	for _, cb := range subs {
		cb(userID)
	}
}

func (g *RestGateway) auth(req *http.Request) {
	req.Header.Set("apikey", g.apiKey)
	req.Header.Set("Authorization", "Bearer "+g.apiKey)
}

func (g *RestGateway) do(req *http.Request, op string, out any) error {
	resp, err := g.client.Do(req)
	if err != nil {
		return &GatewayError{Kind: GatewayUnavailable, Op: op, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &GatewayError{Kind: GatewayUnavailable, Op: op, Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &GatewayError{Kind: GatewayRequest, Op: op,
			Err: fmt.Errorf("status %d: %s", resp.StatusCode, string(body))}
	}
	if out != nil && len(body) > 0 {
		if err := json.Unmarshal(body, out); err != nil {
			return &GatewayError{Kind: GatewayRequest, Op: op, Err: err}
		}
	}
	return nil
}
