package account

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/valyala/fasthttp"

	"github.com/riskibarqy/game-lobby/internal/domain/user"
	"github.com/riskibarqy/game-lobby/internal/platform/logging"
	"github.com/riskibarqy/game-lobby/internal/platform/resilience"
	"github.com/riskibarqy/game-lobby/internal/usecase"
)

// errTransient marks failures that should trip the circuit breaker: network
// faults and 5xx answers, not token rejections.
var errTransient = crerr.New("account service transient failure")

const defaultRequestTimeout = 5 * time.Second

// Client verifies access tokens against the account service's introspection
// endpoint. A circuit breaker shields the login path when the account service
// degrades.
type Client struct {
	httpClient    *fasthttp.Client
	introspectURL string
	timeout       time.Duration
	breaker       *resilience.CircuitBreaker
	logger        *logging.Logger
}

func NewClient(baseURL, introspectPath string, cbCfg resilience.CircuitBreakerConfig, logger *logging.Logger) *Client {
	if logger == nil {
		logger = logging.Default()
	}

	cbCfg = resilience.NormalizeCircuitBreakerConfig(cbCfg)
	var breaker *resilience.CircuitBreaker
	if cbCfg.Enabled {
		breaker = resilience.NewCircuitBreaker(cbCfg.FailureThreshold, cbCfg.OpenTimeout, cbCfg.HalfOpenMaxReq)
	}

	return &Client{
		httpClient: &fasthttp.Client{
			ReadTimeout:  defaultRequestTimeout,
			WriteTimeout: defaultRequestTimeout,
		},
		introspectURL: buildURL(baseURL, introspectPath),
		timeout:       defaultRequestTimeout,
		breaker:       breaker,
		logger:        logger,
	}
}

func (c *Client) VerifyAccessToken(ctx context.Context, token string) (user.Principal, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return user.Principal{}, fmt.Errorf("%w: token is required", usecase.ErrUnauthorized)
	}

	if c.breaker != nil {
		if err := c.breaker.Allow(); err != nil {
			return user.Principal{}, fmt.Errorf("%w: account service circuit open", usecase.ErrDependencyUnavailable)
		}
	}

	principal, err := c.introspect(ctx, token)
	if c.breaker != nil {
		if crerr.Is(err, errTransient) {
			c.breaker.RecordFailure()
		} else {
			c.breaker.RecordSuccess()
		}
	}
	if err != nil {
		if crerr.Is(err, errTransient) {
			c.logger.WarnContext(ctx, "account introspection unavailable", "error", err.Error())
			return user.Principal{}, fmt.Errorf("%w: account introspection failed", usecase.ErrDependencyUnavailable)
		}
		return user.Principal{}, err
	}

	return principal, nil
}

func (c *Client) introspect(ctx context.Context, token string) (user.Principal, error) {
	encoded, err := sonic.Marshal(introspectRequest{Token: token})
	if err != nil {
		return user.Principal{}, fmt.Errorf("marshal introspect request: %w", err)
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(c.introspectURL)
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/json")
	req.Header.Set("Accept", "application/json")
	req.SetBody(encoded)

	timeout := c.timeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < timeout {
			timeout = remaining
		}
	}
	if timeout <= 0 {
		return user.Principal{}, crerr.Wrap(errTransient, "context deadline exceeded before introspection")
	}

	if err := c.httpClient.DoTimeout(req, resp, timeout); err != nil {
		return user.Principal{}, crerr.Wrapf(errTransient, "request introspection: %v", err)
	}

	status := resp.StatusCode()
	switch {
	case status == fasthttp.StatusUnauthorized || status == fasthttp.StatusForbidden:
		return user.Principal{}, fmt.Errorf("%w: introspection denied", usecase.ErrUnauthorized)
	case status != fasthttp.StatusOK:
		return user.Principal{}, crerr.Wrapf(errTransient, "introspection status %d", status)
	}

	var decoded introspectResponse
	if err := sonic.Unmarshal(resp.Body(), &decoded); err != nil {
		return user.Principal{}, fmt.Errorf("unmarshal introspect response: %w", err)
	}

	if !decoded.Active {
		return user.Principal{}, fmt.Errorf("%w: inactive token", usecase.ErrUnauthorized)
	}
	if strings.TrimSpace(decoded.UserID) == "" {
		return user.Principal{}, fmt.Errorf("invalid introspect response: user_id is empty")
	}

	role := user.Role(strings.TrimSpace(decoded.Role))
	if role != user.RoleOrganizer && role != user.RolePlayer {
		role = user.RolePlayer
	}

	return user.Principal{
		UserID: decoded.UserID,
		Email:  decoded.Email,
		Role:   role,
	}, nil
}

type introspectRequest struct {
	Token string `json:"token"`
}

type introspectResponse struct {
	Active bool   `json:"active"`
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
}

func buildURL(baseURL, path string) string {
	baseURL = strings.TrimSuffix(strings.TrimSpace(baseURL), "/")
	path = strings.TrimSpace(path)
	if path == "" {
		return baseURL
	}
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	return baseURL + path
}
