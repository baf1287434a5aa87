// realtime/reaper.go
package realtime

import (
	"log"
	"time"

	"github.com/go-co-op/gocron/v2"

	"tictactoe-arena/models"
)

const DefaultIdleMatchTTL = 10 * time.Minute

// StartReaper schedules Reap every minute.
func (r *Registry) StartReaper(ttl time.Duration) error {
	if ttl <= 0 {
		ttl = DefaultIdleMatchTTL
	}
	_, err := r.sched.NewJob(
		gocron.DurationJob(1*time.Minute),
		gocron.NewTask(func() {
			if n := r.Reap(ttl); n > 0 {
				log.Printf("[REAPER] 🧹 Reaped %d idle match(es)", n)
			}
		}),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithName("match-reaper"),
	)
	return err
}

// Reap destroys waiting or completed matches created at least ttl ago.
// Active matches are left alone.
func (r *Registry) Reap(ttl time.Duration) int {
	now := r.clock.Now()

	r.mu.RLock()
	all := make([]*matchProcess, 0, len(r.matches))
	for _, p := range r.matches {
		all = append(all, p)
	}
	r.mu.RUnlock()

	n := 0
	for _, p := range all {
		p.mu.Lock()
		stale := !p.closed &&
			p.state.Status != models.StatusActive &&
			now.Sub(p.state.CreatedAt) >= ttl
		if stale {
			p.closed = true
		}
		status := p.state.Status
		p.mu.Unlock()

		if stale {
			log.Printf("[REAPER] ⏳ Match %s (%s) idle past %s", p.id, status, ttl)
			r.destroy(p)
			n++
		}
	}
	return n
}
