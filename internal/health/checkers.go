package health

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/redis/go-redis/v9"
)

// LLMServiceChecker probes the hosted capability service's health endpoint.
// It is critical: without it no research run can make progress.
type LLMServiceChecker struct {
	baseURL string
	client  *http.Client
}

func NewLLMServiceChecker(baseURL string) *LLMServiceChecker {
	return &LLMServiceChecker{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{},
	}
}

func (c *LLMServiceChecker) Name() string   { return "llm-service" }
func (c *LLMServiceChecker) Critical() bool { return true }

func (c *LLMServiceChecker) Check(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return nil
}

// RedisChecker pings the event-mirror Redis. Non-critical: the in-memory
// stream keeps working when the mirror is down.
type RedisChecker struct {
	client *redis.Client
}

func NewRedisChecker(client *redis.Client) *RedisChecker {
	return &RedisChecker{client: client}
}

func (c *RedisChecker) Name() string   { return "redis" }
func (c *RedisChecker) Critical() bool { return false }

func (c *RedisChecker) Check(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}
