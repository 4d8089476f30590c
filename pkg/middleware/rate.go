package middleware

import (
	"net"
	"net/http"
	"sync"
	"time"
)

// limiter tracks fixed-window request counts per client IP.
// Windows are coarse on purpose: the limit protects the signing and payment
// endpoints from abuse, it is not a fairness scheduler.
type limiter struct {
	mu      sync.Mutex
	max     int
	window  time.Duration
	windows map[string]*clientWindow
}

type clientWindow struct {
	count   int
	resetAt time.Time
}

func newLimiter(max int, window time.Duration) *limiter {
	l := &limiter{max: max, window: window, windows: map[string]*clientWindow{}}
	go l.evict()
	return l
}

func (l *limiter) allow(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	cw, ok := l.windows[ip]
	if !ok || now.After(cw.resetAt) {
		cw = &clientWindow{resetAt: now.Add(l.window)}
		l.windows[ip] = cw
	}
	cw.count++
	return cw.count <= l.max
}

// evict drops expired windows once a minute so long-running servers do not
// accumulate an entry per IP ever seen.
func (l *limiter) evict() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for range ticker.C {
		now := time.Now()
		l.mu.Lock()
		for ip, cw := range l.windows {
			if now.After(cw.resetAt) {
				delete(l.windows, ip)
			}
		}
		l.mu.Unlock()
	}
}

func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		return fwd
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

// RateLimit limits each client IP to max requests per window.
//
//	r.Use(middleware.RateLimit(100, time.Minute))
func RateLimit(max int, window time.Duration) func(http.Handler) http.Handler {
	l := newLimiter(max, window)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !l.allow(clientIP(r)) {
				http.Error(w, `{"status":429,"message":"Too Many Requests"}`, http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
