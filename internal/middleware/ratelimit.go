package middleware

import (
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateLimit allows limit requests per window for each client IP, with bursts
// up to limit. Rejected requests get 429.
func RateLimit(limit int, per time.Duration) func(http.Handler) http.Handler {
	if limit <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	buckets := newIPBuckets(limit, per, time.Now)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !buckets.allow(clientIPForRateLimit(r)) {
				w.Header().Set("Retry-After", strconv.Itoa(int(per.Seconds())))
				w.WriteHeader(http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

type ipBucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// ipBuckets keeps one token bucket per client. A bucket idle for a whole
// window has refilled completely, so it is dropped and recreated on demand.
type ipBuckets struct {
	mu        sync.Mutex
	every     rate.Limit
	burst     int
	idle      time.Duration
	now       func() time.Time
	lastSweep time.Time
	byIP      map[string]*ipBucket
}

func newIPBuckets(limit int, per time.Duration, now func() time.Time) *ipBuckets {
	return &ipBuckets{
		every:     rate.Every(per / time.Duration(limit)),
		burst:     limit,
		idle:      per,
		now:       now,
		lastSweep: now(),
		byIP:      make(map[string]*ipBucket),
	}
}

func (b *ipBuckets) allow(ip string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	now := b.now()
	if now.Sub(b.lastSweep) >= b.idle {
		for key, bucket := range b.byIP {
			if now.Sub(bucket.lastSeen) >= b.idle {
				delete(b.byIP, key)
			}
		}
		b.lastSweep = now
	}
	bucket, ok := b.byIP[ip]
	if !ok {
		bucket = &ipBucket{limiter: rate.NewLimiter(b.every, b.burst)}
		b.byIP[ip] = bucket
	}
	bucket.lastSeen = now
	return bucket.limiter.AllowN(now, 1)
}

func (b *ipBuckets) size() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.byIP)
}

func clientIPForRateLimit(r *http.Request) string {
	if xf := r.Header.Get("X-Forwarded-For"); xf != "" {
		for _, part := range strings.Split(xf, ",") {
			ip := strings.TrimSpace(part)
			if ip == "" {
				continue
			}
			if net.ParseIP(ip) != nil {
				return ip
			}
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil {
		if net.ParseIP(host) != nil {
			return host
		}
	} else if net.ParseIP(r.RemoteAddr) != nil {
		return r.RemoteAddr
	}

	return r.RemoteAddr
}
