// realtime/registry.go
package realtime

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"tictactoe-arena/models"
	"tictactoe-arena/services"
)

var (
	ErrMatchNotFound = errors.New("match not found")
	ErrJoinRejected  = errors.New("join rejected")
)

const DefaultTickRate = 5

// Registry hosts live matches. Each match runs its handler hooks under its own
// lock and gets one singleton tick job on the shared scheduler.
//
// Lock order: matchProcess.mu before Registry.mu.
type Registry struct {
	handler *services.MatchHandler
	sched   gocron.Scheduler
	clock   clockwork.Clock
	tick    time.Duration
	ctx     context.Context

	mu      sync.RWMutex
	matches map[string]*matchProcess
}

func NewRegistry(ctx context.Context, handler *services.MatchHandler, sched gocron.Scheduler, clock clockwork.Clock, tickRate int) *Registry {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if tickRate <= 0 {
		tickRate = DefaultTickRate
	}
	return &Registry{
		handler: handler,
		sched:   sched,
		clock:   clock,
		tick:    time.Second / time.Duration(tickRate),
		ctx:     ctx,
		matches: make(map[string]*matchProcess),
	}
}

// Create starts a new match in mode and returns its id.
func (r *Registry) Create(ctx context.Context, mode models.MatchMode) (string, error) {
	id := uuid.NewString()
	state, label := r.handler.Init(id, mode)
	p := &matchProcess{
		registry: r,
		id:       id,
		state:    state,
		label:    label,
		clients:  make(map[string]Sender, 2),
	}

	job, err := r.sched.NewJob(
		gocron.DurationJob(r.tick),
		gocron.NewTask(p.tick),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithName("match-"+id),
		gocron.WithTags("match"),
	)
	if err != nil {
		return "", fmt.Errorf("schedule match %s: %w", id, err)
	}
	p.jobID = job.ID()

	r.mu.Lock()
	r.matches[id] = p
	r.mu.Unlock()

	log.Printf("[MATCH] 🆕 Match %s created (%s), ticking every %s", id, mode, r.tick)
	return id, nil
}

// List returns ids of matches whose label equals query, oldest first.
func (r *Registry) List(ctx context.Context, query models.MatchLabel, limit int) ([]string, error) {
	r.mu.RLock()
	var found []*matchProcess
	for _, p := range r.matches {
		if p.label == query {
			found = append(found, p)
		}
	}
	r.mu.RUnlock()

	sort.Slice(found, func(i, j int) bool {
		a, b := found[i].state.CreatedAt, found[j].state.CreatedAt
		if !a.Equal(b) {
			return a.Before(b)
		}
		return found[i].id < found[j].id
	})
	if limit > 0 && len(found) > limit {
		found = found[:limit]
	}
	ids := make([]string, len(found))
	for i, p := range found {
		ids[i] = p.id
	}
	return ids, nil
}

func (r *Registry) get(id string) (*matchProcess, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.matches[id]
	if !ok {
		return nil, ErrMatchNotFound
	}
	return p, nil
}

// Join admits a presence and seats it. sender receives every broadcast from
// the moment of admission and may be nil.
func (r *Registry) Join(ctx context.Context, matchID string, presence models.Presence, sender Sender) error {
	p, err := r.get(matchID)
	if err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return ErrMatchNotFound
	}
	if !r.handler.JoinAttempt(p.state, presence) {
		return ErrJoinRejected
	}
	p.addClient(presence.UserID, sender)
	r.handler.Join(ctx, p, p.state, presence)
	return nil
}

// Leave removes a presence. The match is torn down once nobody is left.
func (r *Registry) Leave(ctx context.Context, matchID, userID string) error {
	p, err := r.get(matchID)
	if err != nil {
		return err
	}

	p.mu.Lock()
	if p.closed || !p.removeClient(userID) {
		p.mu.Unlock()
		return nil
	}
	r.handler.Leave(ctx, p, p.state, userID)
	empty := p.clientCount() == 0
	if empty {
		p.closed = true
	}
	p.mu.Unlock()

	if empty {
		r.destroy(p)
	}
	return nil
}

// Send queues a client message for the next tick.
func (r *Registry) Send(matchID, userID string, op models.OpCode, data []byte) error {
	p, err := r.get(matchID)
	if err != nil {
		return err
	}
	p.enqueue(models.MatchMessage{
		UserID:     userID,
		OpCode:     op,
		Data:       data,
		ReceivedAt: r.clock.Now(),
	})
	return nil
}

// State returns a copy of the match state.
func (r *Registry) State(matchID string) (models.MatchState, error) {
	p, err := r.get(matchID)
	if err != nil {
		return models.MatchState{}, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state.Snapshot(), nil
}

// Count reports how many matches are live.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.matches)
}

func (r *Registry) destroy(p *matchProcess) {
	r.mu.Lock()
	delete(r.matches, p.id)
	r.mu.Unlock()

	if err := r.sched.RemoveJob(p.jobID); err != nil && !errors.Is(err, gocron.ErrJobNotFound) {
		log.Printf("[MATCH] ⚠️ Failed to remove tick job for match %s: %v", p.id, err)
	}
	p.closeClients()
	log.Printf("[MATCH] 🧹 Match %s destroyed", p.id)
}

// Close tears down every live match.
func (r *Registry) Close() {
	r.mu.RLock()
	all := make([]*matchProcess, 0, len(r.matches))
	for _, p := range r.matches {
		all = append(all, p)
	}
	r.mu.RUnlock()

	for _, p := range all {
		p.mu.Lock()
		wasClosed := p.closed
		p.closed = true
		p.mu.Unlock()
		if !wasClosed {
			r.destroy(p)
		}
	}
}
