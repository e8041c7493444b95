package adapter

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"

	"github.com/go-resty/resty/v2"

	"github.com/MKhiriev/go-dav-sync/internal/config"
	"github.com/MKhiriev/go-dav-sync/internal/logger"
	"github.com/MKhiriev/go-dav-sync/models"
)

// tokenEndpoint is where the Digest handshake is exchanged for a bearer
// token.
const tokenEndpoint = "/api/token"

type httpServerAdapter struct {
	client      *resty.Client
	credentials config.ClientCredentials

	mu    sync.RWMutex
	token string

	logger *logger.Logger
}

// NewHTTPServerAdapter constructs an HTTP/REST implementation of
// [ServerAdapter]. It normalises and validates the base URL from
// adapterCfg.HTTPAddress and configures the underlying HTTP client with the
// resolved base URL and request timeout.
//
// Returns an error if adapterCfg.HTTPAddress cannot be parsed as a valid URL.
func NewHTTPServerAdapter(adapterCfg config.ClientAdapter, credentials config.ClientCredentials, logger *logger.Logger) (ServerAdapter, error) {
	baseURL, err := normalizeBaseURL(adapterCfg.HTTPAddress)
	if err != nil {
		return nil, fmt.Errorf("invalid adapter http address: %w", err)
	}

	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(adapterCfg.RequestTimeout)

	if credentials.ClientID != "" {
		client.SetHeader("X-Client-Id", credentials.ClientID)
	}

	return &httpServerAdapter{
		client:      client,
		credentials: credentials,
		logger:      logger,
	}, nil
}

func normalizeBaseURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("empty address")
	}

	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("address must include host and scheme")
	}

	return strings.TrimRight(u.String(), "/"), nil
}

// Token implements [ServerAdapter].
func (h *httpServerAdapter) Token() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.token
}

func (h *httpServerAdapter) setToken(token string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.token = strings.TrimSpace(token)
}

// Handshake implements [ServerAdapter]. It sends an unauthenticated request
// to the token endpoint to provoke a Digest challenge, answers the challenge
// with the configured credentials, and stores the bearer token from the
// response for all subsequent requests.
func (h *httpServerAdapter) Handshake(ctx context.Context) error {
	probe, err := h.client.R().
		SetContext(ctx).
		Post(tokenEndpoint)
	if err != nil {
		return fmt.Errorf("handshake probe: %w", err)
	}

	challengeHeader := probe.Header().Get("WWW-Authenticate")
	if probe.StatusCode() != http.StatusUnauthorized || !strings.HasPrefix(challengeHeader, "Digest ") {
		return fmt.Errorf("%w: status %d", ErrNoChallenge, probe.StatusCode())
	}

	authorization := buildDigestAuthorization(
		h.credentials.Username,
		h.credentials.Password,
		http.MethodPost,
		tokenEndpoint,
		parseChallenge(challengeHeader),
	)

	var response struct {
		Token string `json:"Token"`
	}

	resp, err := h.client.R().
		SetContext(ctx).
		SetHeader("Authorization", authorization).
		SetResult(&response).
		Post(tokenEndpoint)
	if err != nil {
		return fmt.Errorf("handshake request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return err
	}
	if response.Token == "" {
		return fmt.Errorf("handshake: empty token in response")
	}

	h.setToken(response.Token)
	h.logger.Debug().Msg("digest handshake completed")

	return nil
}

// GetVersion implements [ServerAdapter].
func (h *httpServerAdapter) GetVersion(ctx context.Context) (string, error) {
	resp, err := h.client.R().
		SetContext(ctx).
		Get("/api/version")
	if err != nil {
		return "", fmt.Errorf("version request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return "", err
	}

	return strings.TrimSpace(string(resp.Body())), nil
}

// GetChanges implements [ServerAdapter].
func (h *httpServerAdapter) GetChanges(ctx context.Context, path, syncToken string, deep bool, limit int) (models.ChangeBatch, error) {
	var batch models.ChangeBatch

	request := h.authorized(ctx).
		SetQueryParam("path", path).
		SetQueryParam("token", syncToken).
		SetResult(&batch)
	if deep {
		request.SetQueryParam("deep", "true")
	}
	if limit >= 0 {
		request.SetQueryParam("limit", strconv.Itoa(limit))
	}

	resp, err := request.Get("/api/sync")
	if err != nil {
		return models.ChangeBatch{}, fmt.Errorf("sync request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return models.ChangeBatch{}, err
	}

	return batch, nil
}

// CreateItem implements [ServerAdapter].
func (h *httpServerAdapter) CreateItem(ctx context.Context, path string, isFolder bool, size int64) (models.Entry, error) {
	var created models.Entry

	resp, err := h.authorized(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(map[string]any{"Path": path, "IsFolder": isFolder, "Size": size}).
		SetResult(&created).
		Post("/api/items")
	if err != nil {
		return models.Entry{}, fmt.Errorf("create request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return models.Entry{}, err
	}

	return created, nil
}

// UpdateItem implements [ServerAdapter].
func (h *httpServerAdapter) UpdateItem(ctx context.Context, path string, size int64) (models.Entry, error) {
	var updated models.Entry

	resp, err := h.authorized(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(map[string]any{"Path": path, "Size": size}).
		SetResult(&updated).
		Put("/api/items")
	if err != nil {
		return models.Entry{}, fmt.Errorf("update request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return models.Entry{}, err
	}

	return updated, nil
}

// MoveItem implements [ServerAdapter].
func (h *httpServerAdapter) MoveItem(ctx context.Context, sourcePath, destinationPath string) (models.Entry, error) {
	var moved models.Entry

	resp, err := h.authorized(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(map[string]any{"SourcePath": sourcePath, "DestinationPath": destinationPath}).
		SetResult(&moved).
		Post("/api/items/move")
	if err != nil {
		return models.Entry{}, fmt.Errorf("move request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return models.Entry{}, err
	}

	return moved, nil
}

// DeleteItem implements [ServerAdapter].
func (h *httpServerAdapter) DeleteItem(ctx context.Context, path string) (models.Entry, error) {
	var deleted models.Entry

	resp, err := h.authorized(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(map[string]any{"Path": path}).
		SetResult(&deleted).
		Delete("/api/items")
	if err != nil {
		return models.Entry{}, fmt.Errorf("delete request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return models.Entry{}, err
	}

	return deleted, nil
}

// authorized returns a request carrying the bearer token from the completed
// handshake.
func (h *httpServerAdapter) authorized(ctx context.Context) *resty.Request {
	request := h.client.R().SetContext(ctx)
	if token := h.Token(); token != "" {
		request.SetHeader("Authorization", "Bearer "+token)
	}
	return request
}
