package middleware

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimitManager manages per-IP rate limiters with lifecycle control.
// General traffic and public form submissions get separate limiter pools so
// a burst of page views cannot mask form abuse.
type RateLimitManager struct {
	visitors       map[string]*visitor
	visitorsMu     sync.RWMutex
	formLimiters   map[string]*visitor
	formLimitersMu sync.RWMutex
	ctx            context.Context
	cancel         context.CancelFunc
	wg             sync.WaitGroup
}

func NewRateLimitManager(ctx context.Context) *RateLimitManager {
	managerCtx, cancel := context.WithCancel(ctx)

	m := &RateLimitManager{
		visitors:     make(map[string]*visitor),
		formLimiters: make(map[string]*visitor),
		ctx:          managerCtx,
		cancel:       cancel,
	}

	m.wg.Add(1)
	go m.cleanupLoop()

	return m
}

// GetVisitor retrieves or creates the general rate limiter for the given IP.
func (m *RateLimitManager) GetVisitor(ip string, requestsPerWindow, windowSeconds int) *rate.Limiter {
	m.visitorsMu.Lock()
	defer m.visitorsMu.Unlock()
	return getLimiter(m.visitors, ip, requestsPerWindow, windowSeconds)
}

// GetFormLimiter retrieves or creates the form submission limiter for the
// given IP.
func (m *RateLimitManager) GetFormLimiter(ip string, requestsPerWindow, windowSeconds int) *rate.Limiter {
	m.formLimitersMu.Lock()
	defer m.formLimitersMu.Unlock()
	return getLimiter(m.formLimiters, ip, requestsPerWindow, windowSeconds)
}

func getLimiter(limiters map[string]*visitor, ip string, requestsPerWindow, windowSeconds int) *rate.Limiter {
	if requestsPerWindow <= 0 {
		return nil
	}

	v, exists := limiters[ip]
	if !exists {
		if windowSeconds <= 0 {
			windowSeconds = 60
		}

		limitPerSecond := float64(requestsPerWindow) / float64(windowSeconds)
		limit := rate.Limit(limitPerSecond)
		if limitPerSecond <= 0 {
			limit = rate.Inf
		}

		limiter := rate.NewLimiter(limit, requestsPerWindow)
		limiters[ip] = &visitor{limiter, time.Now()}
		return limiter
	}

	v.lastSeen = time.Now()
	return v.limiter
}

// cleanupLoop periodically removes inactive rate limiters
func (m *RateLimitManager) cleanupLoop() {
	defer m.wg.Done()

	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-m.ctx.Done():
			return
		case <-ticker.C:
			m.cleanup()
		}
	}
}

func (m *RateLimitManager) cleanup() {
	m.visitorsMu.Lock()
	for ip, v := range m.visitors {
		if time.Since(v.lastSeen) > 3*time.Minute {
			delete(m.visitors, ip)
		}
	}
	m.visitorsMu.Unlock()

	m.formLimitersMu.Lock()
	for ip, v := range m.formLimiters {
		if time.Since(v.lastSeen) > 10*time.Minute {
			delete(m.formLimiters, ip)
		}
	}
	m.formLimitersMu.Unlock()
}

// Shutdown stops the cleanup goroutine and waits for it to finish
func (m *RateLimitManager) Shutdown() error {
	m.cancel()
	m.wg.Wait()
	return nil
}
