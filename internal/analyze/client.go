package analyze

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"daybook/internal/config"
	"daybook/internal/errors"
	"daybook/internal/journal"
)

// Client calls an external label service over HTTP. Outbound calls run
// through a rate limiter and a circuit breaker so a struggling service
// slows a batch down instead of failing it outright.
type Client struct {
	endpoint string
	token    string
	task     string
	http     *http.Client
	limiter  *rate.Limiter
	breaker  *gobreaker.CircuitBreaker
}

// NewClient builds a classifier client for one task ("emotion" or
// "context"). Both tasks usually point at the same endpoint.
func NewClient(cfg config.Classifier, task string) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = 2.0
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "classifier-" + task,
		MaxRequests: 2,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
	})

	return &Client{
		endpoint: cfg.Endpoint,
		token:    cfg.Token,
		task:     task,
		http:     &http.Client{Timeout: timeout},
		limiter:  rate.NewLimiter(rate.Limit(rps), 1),
		breaker:  breaker,
	}
}

type classifyRequest struct {
	Task         string `json:"task"`
	Text         string `json:"text"`
	K            int    `json:"k"`
	IncludeScore bool   `json:"include_score"`
}

// Classify labels one text. Empty text returns an empty result without a
// network call.
func (c *Client) Classify(ctx context.Context, text string, k int, includeScore bool) ([]journal.Label, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}
	if c.endpoint == "" {
		return nil, errors.NewNotConfigured("classifier endpoint is not set")
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	result, err := c.breaker.Execute(func() (any, error) {
		return c.post(ctx, classifyRequest{
			Task:         c.task,
			Text:         text,
			K:            k,
			IncludeScore: includeScore,
		})
	})
	if err != nil {
		if err == gobreaker.ErrOpenState || err == gobreaker.ErrTooManyRequests {
			return nil, errors.NewUnavailable("classifier", err)
		}
		return nil, err
	}
	return result.([]journal.Label), nil
}

func (c *Client) post(ctx context.Context, request classifyRequest) ([]journal.Label, error) {
	body, err := json.Marshal(request)
	if err != nil {
		return nil, errors.NewInternal(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errors.NewUnavailable("classifier", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, errors.NewUnavailable("classifier", fmt.Errorf(
			"status %d: %s", resp.StatusCode, strings.TrimSpace(string(payload))))
	}

	var labels []journal.Label
	if err := json.NewDecoder(resp.Body).Decode(&labels); err != nil {
		return nil, errors.NewUnavailable("classifier", err)
	}
	return labels, nil
}
