package middleware

import "time"

func SetLimiterClock(l *Limiter, now func() time.Time) { l.now = now }

func LimiterSize(l *Limiter) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buckets)
}
