package scrape

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/DavidEscobar2707/bta-onboarding/pkg/jina"
)

// circuitBreaker tracks consecutive failures to skip a flaky upstream.
type circuitBreaker struct {
	mu          sync.Mutex
	failures    int
	lastFailure time.Time
	openUntil   time.Time
	threshold   int
	window      time.Duration
	cooldown    time.Duration
}

func newCircuitBreaker(threshold int, window, cooldown time.Duration) *circuitBreaker {
	return &circuitBreaker{threshold: threshold, window: window, cooldown: cooldown}
}

func (cb *circuitBreaker) isOpen() bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return time.Now().Before(cb.openUntil)
}

func (cb *circuitBreaker) recordFailure() {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	now := time.Now()
	if now.Sub(cb.lastFailure) > cb.window {
		cb.failures = 0
	}
	cb.failures++
	cb.lastFailure = now
	if cb.failures >= cb.threshold {
		cb.openUntil = now.Add(cb.cooldown)
		zap.L().Warn("scrape: jina circuit breaker opened",
			zap.Int("failures", cb.failures),
			zap.Duration("cooldown", cb.cooldown),
		)
	}
}

func (cb *circuitBreaker) recordSuccess() {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.failures = 0
}

// JinaFetcher reads pages through the Jina Reader API, which renders
// JavaScript and bypasses most bot walls the local fetcher cannot.
type JinaFetcher struct {
	client  jina.Client
	breaker *circuitBreaker
}

// NewJinaFetcher wraps a Jina client. Three consecutive failures within
// 30s open the circuit for 60s, sending traffic straight past it.
func NewJinaFetcher(client jina.Client) *JinaFetcher {
	return &JinaFetcher{
		client:  client,
		breaker: newCircuitBreaker(3, 30*time.Second, 60*time.Second),
	}
}

func (j *JinaFetcher) Name() string    { return "jina" }
func (j *JinaFetcher) Available() bool { return !j.breaker.isOpen() }

func (j *JinaFetcher) Fetch(ctx context.Context, targetURL string) (*Page, error) {
	if j.breaker.isOpen() {
		return nil, eris.New("jina: circuit breaker open")
	}

	resp, err := j.client.Read(ctx, targetURL)
	if err != nil {
		j.breaker.recordFailure()
		return nil, err
	}
	if unusable(resp) {
		j.breaker.recordFailure()
		return nil, eris.New("jina: unusable response")
	}

	j.breaker.recordSuccess()
	return &Page{
		URL:        resp.Data.URL,
		Title:      resp.Data.Title,
		Text:       resp.Data.Content,
		StatusCode: resp.Code,
		Source:     "jina",
	}, nil
}

// unusable reports whether a Jina response is blocked or effectively
// empty and should count as a failure.
func unusable(resp *jina.ReadResponse) bool {
	if resp == nil {
		return true
	}
	if resp.Code != 0 && resp.Code != 200 {
		return true
	}
	content := strings.TrimSpace(resp.Data.Content)
	if len(content) < 100 {
		return true
	}
	lower := strings.ToLower(content)
	for _, sig := range challengeSignatures {
		if strings.Contains(lower, sig) && len(content) < 1000 {
			return true
		}
	}
	return false
}
