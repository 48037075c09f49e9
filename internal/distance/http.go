package distance

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/goccy/go-json"
)

// HTTPService queries a REST distance endpoint:
//
//	GET {endpoint}/v1/distance?from=A&to=B  ->  {"distance": 42}
type HTTPService struct {
	endpoint   string
	httpClient *http.Client

	mu           sync.RWMutex
	successCount int
	failureCount int
	lastLatency  time.Duration
}

// NewHTTPService creates a new HTTP-backed distance service.
func NewHTTPService(endpoint string, timeout time.Duration) *HTTPService {
	return &HTTPService{
		endpoint: endpoint,
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

type distanceResponse struct {
	From     string `json:"from"`
	To       string `json:"to"`
	Distance *int   `json:"distance"`
}

func (s *HTTPService) QueryDistance(ctx context.Context, from, to string) (int, error) {
	start := time.Now()

	q := url.Values{}
	q.Set("from", from)
	q.Set("to", to)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.endpoint+"/v1/distance?"+q.Encode(), nil)
	if err != nil {
		s.recordFailure()
		return 0, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		s.recordFailure()
		return 0, fmt.Errorf("distance call: %w", err)
	}
	defer resp.Body.Close()

	// Rate limit detection
	if resp.StatusCode == http.StatusTooManyRequests {
		s.recordFailure()
		return 0, fmt.Errorf("%w (429), retry after: %s", ErrRateLimited, resp.Header.Get("Retry-After"))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		s.recordFailure()
		return 0, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		s.recordFailure()
		return 0, fmt.Errorf("%w: http %d: %s", ErrUnavailable, resp.StatusCode, string(body))
	}

	var out distanceResponse
	if err := json.Unmarshal(body, &out); err != nil {
		s.recordFailure()
		return 0, fmt.Errorf("parse response: %w", err)
	}
	if out.Distance == nil {
		s.recordFailure()
		return 0, fmt.Errorf("%w: missing distance field", ErrInvalidDistance)
	}

	s.recordSuccess(time.Since(start))
	return *out.Distance, nil
}

// Stats returns (successes, failures, last latency).
func (s *HTTPService) Stats() (successes, failures int, lastLatency time.Duration) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.successCount, s.failureCount, s.lastLatency
}

// Close cleans up resources.
func (s *HTTPService) Close() error {
	s.httpClient.CloseIdleConnections()
	return nil
}

func (s *HTTPService) recordSuccess(latency time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.successCount++
	s.lastLatency = latency
}

func (s *HTTPService) recordFailure() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failureCount++
}
