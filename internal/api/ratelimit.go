package api

import (
	"net"
	"net/http"
	"sync"

	"golang.org/x/time/rate"
)

const (
	defaultDraftRPS   = 1.0
	defaultDraftBurst = 5
)

// limiterPool hands out one token bucket per client key.
type limiterPool struct {
	mu    sync.Mutex
	m     map[string]*rate.Limiter
	rps   float64
	burst int
}

func newLimiterPool(rps float64, burst int) *limiterPool {
	if rps <= 0 {
		rps = defaultDraftRPS
	}
	if burst <= 0 {
		burst = defaultDraftBurst
	}
	return &limiterPool{m: make(map[string]*rate.Limiter), rps: rps, burst: burst}
}

func (p *limiterPool) Allow(key string) bool {
	p.mu.Lock()
	l, ok := p.m[key]
	if !ok {
		l = rate.NewLimiter(rate.Limit(p.rps), p.burst)
		p.m[key] = l
	}
	p.mu.Unlock()
	return l.Allow()
}

// SetDraftLimit replaces the per-client limit on the draft endpoint. Call it
// before serving.
func (s *Server) SetDraftLimit(rps float64, burst int) {
	s.draftLimiter = newLimiterPool(rps, burst)
}

// draftRateLimit throttles model-backed requests per bearer token, or per
// remote IP when the API is unauthenticated. Only tokens that passed auth are
// used as keys, so clients cannot mint buckets.
func (s *Server) draftRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.draftLimiter.Allow(s.clientKey(r)) {
			s.logger.Warn("draft rate limited", "path", r.URL.Path)
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) clientKey(r *http.Request) string {
	if s.authEnabled {
		return r.Header.Get("Authorization")
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
