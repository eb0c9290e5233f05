package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"cinescope/config"
	"cinescope/internal/domain/entity"
	domainerrors "cinescope/internal/domain/errors"

	"github.com/pkg/errors"
)

const defaultIdentityEndpoint = "https://identitytoolkit.googleapis.com"

const (
	maxAttempts = 3
	backoffBase = 500 * time.Millisecond
)

// restClient talks to the Identity Toolkit REST surface. The Admin SDK
// deliberately omits the password grant and the reset-mail trigger.
type restClient struct {
	endpoint string
	apiKey   string
	http     *http.Client
	logger   *slog.Logger
}

func newRESTClient(cfg *config.FirebaseConfig, logger *slog.Logger) *restClient {
	endpoint := cfg.IdentityEndpoint
	if endpoint == "" {
		endpoint = defaultIdentityEndpoint
	}

	return &restClient{
		endpoint: strings.TrimRight(endpoint, "/"),
		apiKey:   cfg.WebAPIKey,
		http:     &http.Client{Timeout: cfg.CallTimeout},
		logger:   logger,
	}
}

type signInResponse struct {
	IDToken      string `json:"idToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    string `json:"expiresIn"`
	LocalID      string `json:"localId"`
	Email        string `json:"email"`
}

type restErrorBody struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (c *restClient) signInWithPassword(ctx context.Context, email, password string) (*entity.Credentials, error) {
	payload := map[string]any{
		"email":             email,
		"password":          password,
		"returnSecureToken": true,
	}

	body, err := c.post(ctx, "/v1/accounts:signInWithPassword", payload)
	if err != nil {
		return nil, err
	}

	var result signInResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, errors.Wrap(err, "failed to decode password grant response")
	}

	expiresIn, _ := strconv.ParseInt(result.ExpiresIn, 10, 64)

	return &entity.Credentials{
		UID:          result.LocalID,
		Email:        result.Email,
		IDToken:      result.IDToken,
		RefreshToken: result.RefreshToken,
		ExpiresIn:    expiresIn,
	}, nil
}

func (c *restClient) sendPasswordReset(ctx context.Context, email string) error {
	payload := map[string]any{
		"requestType": "PASSWORD_RESET",
		"email":       email,
	}

	_, err := c.post(ctx, "/v1/accounts:sendOobCode", payload)
	// The OOB endpoint reports an unknown address as EMAIL_NOT_FOUND,
	// which the shared translation reads as a credential failure.
	if errors.Is(err, domainerrors.ErrInvalidCredentials) {
		return domainerrors.ErrUserNotFound.WrapMessage("no account for reset email")
	}

	return err
}

// post sends one JSON request, retrying connectivity-class failures only.
// Provider-side rejections (wrong password, disabled account) are never
// retried.
func (c *restClient) post(ctx context.Context, path string, payload map[string]any) ([]byte, error) {
	encoded, err := json.Marshal(payload)
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode request payload")
	}

	url := c.endpoint + path + "?key=" + c.apiKey

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		body, err := c.postOnce(ctx, url, encoded)
		if err == nil {
			return body, nil
		}
		if !isConnectivityError(err) {
			return nil, err
		}

		lastErr = err
		c.logger.Warn("Identity provider call failed, retrying",
			slog.String("path", path),
			slog.Int("attempt", attempt),
			slog.Any("error", err))

		if attempt < maxAttempts {
			select {
			case <-time.After(time.Duration(attempt) * backoffBase):
			case <-ctx.Done():
				return nil, errors.Wrap(ctx.Err(), "identity provider call canceled")
			}
		}
	}

	return nil, errors.Wrap(lastErr, "identity provider unreachable")
}

func (c *restClient) postOnce(ctx context.Context, url string, encoded []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(encoded))
	if err != nil {
		return nil, errors.Wrap(err, "failed to build request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "request failed")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read response body")
	}

	if resp.StatusCode >= 400 {
		return nil, translateRESTError(resp.StatusCode, body)
	}

	return body, nil
}

// translateRESTError maps Identity Toolkit error messages onto the stable
// internal taxonomy.
func translateRESTError(status int, body []byte) error {
	var parsed restErrorBody
	if err := json.Unmarshal(body, &parsed); err != nil {
		return domainerrors.ErrInternal.WithDetails("unparseable provider error, HTTP " + strconv.Itoa(status))
	}

	message := parsed.Error.Message

	switch {
	case strings.HasPrefix(message, "EMAIL_NOT_FOUND"),
		strings.HasPrefix(message, "INVALID_PASSWORD"),
		strings.HasPrefix(message, "INVALID_LOGIN_CREDENTIALS"):
		return domainerrors.ErrInvalidCredentials.WrapMessage("password grant rejected")

	case strings.HasPrefix(message, "USER_DISABLED"):
		return domainerrors.ErrAccountDisabled.WrapMessage("account disabled at provider")

	case strings.HasPrefix(message, "TOO_MANY_ATTEMPTS_TRY_LATER"):
		return domainerrors.ErrTooManyAttempts.WrapMessage("provider throttled the account")

	case strings.HasPrefix(message, "CONFIGURATION_NOT_FOUND"),
		strings.HasPrefix(message, "OPERATION_NOT_ALLOWED"),
		strings.HasPrefix(message, "PASSWORD_LOGIN_DISABLED"):
		return domainerrors.ErrAPIDisabled.WrapMessage("provider configuration rejected the grant")

	case strings.Contains(message, "API key not valid"),
		strings.HasPrefix(message, "API_KEY_INVALID"),
		strings.HasPrefix(message, "INVALID_API_KEY"):
		return domainerrors.ErrAPIKeyInvalid.WrapMessage("provider rejected the API key")

	case strings.HasPrefix(message, "EMAIL_EXISTS"):
		return domainerrors.ErrEmailTaken.WrapMessage("email already registered at provider")
	}

	return domainerrors.ErrInternal.WithDetails("provider error: " + message)
}

// isConnectivityError reports whether the failure is a transport problem
// (DNS, connection refused, timeout) worth retrying. Authentication
// failures never land here: they arrive as translated AppErrors.
func isConnectivityError(err error) bool {
	var appErr domainerrors.AppError
	if errors.As(err, &appErr) {
		return false
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	var opErr *net.OpError
	return errors.As(err, &opErr)
}
