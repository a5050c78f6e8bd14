package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	ex "cryptostats/data/extensions"
)

// maxErrorBody caps how much of a failed response is carried in the error
const maxErrorBody = 512

type Connection interface {
	Request(ctx context.Context, endpoint *url.URL) ([]byte, error)
}

// ClientHost sends single attempt GET requests to one host, behind a token bucket
// and a circuit breaker
type ClientHost struct {
	client  *http.Client
	scheme  string
	host    string
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker
}

// NewClientHost builds a host connection from a base url such as https://api.binance.com
func NewClientHost(baseUrl string, timeout time.Duration, requestsPerSecond float64) (*ClientHost, error) {
	u, err := url.Parse(baseUrl)
	if err != nil {
		return nil, ex.InvalidInputf("base url %s: %v", baseUrl, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, ex.InvalidInputf("base url %s needs a scheme and host", baseUrl)
	}
	if requestsPerSecond <= 0 {
		return nil, ex.InvalidInputf("requests per second must be positive, got %v", requestsPerSecond)
	}

	burst := max(int(requestsPerSecond), 1)

	return &ClientHost{
		client:  &http.Client{Timeout: timeout},
		scheme:  u.Scheme,
		host:    u.Host,
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), burst),
		breaker: newBreaker(u.Host),
	}, nil
}

func newBreaker(name string) *gobreaker.CircuitBreaker {
	st := gobreaker.Settings{
		Name:     name,
		Interval: 60 * time.Second,
		Timeout:  60 * time.Second,
	}
	st.ReadyToTrip = func(counts gobreaker.Counts) bool {
		if counts.ConsecutiveFailures >= 3 {
			return true
		}
		if counts.Requests < 20 {
			return false
		}
		return float64(counts.TotalFailures)/float64(counts.Requests) > 0.05
	}
	return gobreaker.NewCircuitBreaker(st)
}

// Request points the endpoint at this host and returns the body of a 200 response.
// Anything else, including an open breaker, is an ErrNetwork.
func (conn *ClientHost) Request(ctx context.Context, endpoint *url.URL) ([]byte, error) {
	if err := conn.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: rate limiter: %v", ex.ErrNetwork, err)
	}

	endpoint.Scheme = conn.scheme
	endpoint.Host = conn.host
	targetUrl := endpoint.String()

	res, err := conn.breaker.Execute(func() (any, error) {
		return conn.get(ctx, targetUrl)
	})
	if err != nil {
		if errors.Is(err, ex.ErrNetwork) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %s: %v", ex.ErrNetwork, endpoint.Path, err)
	}

	return res.([]byte), nil
}

func (conn *ClientHost) get(ctx context.Context, targetUrl string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, targetUrl, nil)
	if err != nil {
		return nil, fmt.Errorf("error building request: %w", err)
	}

	response, err := conn.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ex.ErrNetwork, err)
	}
	defer response.Body.Close()

	body, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: error reading response body: %v", ex.ErrNetwork, err)
	}

	if response.StatusCode != http.StatusOK {
		text := strings.TrimSpace(string(body))
		if len(text) > maxErrorBody {
			text = text[:maxErrorBody]
		}
		return nil, fmt.Errorf("%w: %s returned %d: %s", ex.ErrNetwork, req.URL.Path, response.StatusCode, text)
	}

	return body, nil
}

// BuildRequestPath makes a relative url, the host is filled in by the connection
func BuildRequestPath(path string, params map[string]string) *url.URL {
	endpoint := &url.URL{Path: path}

	query := endpoint.Query()
	for key, value := range params {
		query.Set(key, value)
	}
	endpoint.RawQuery = query.Encode()

	return endpoint
}
