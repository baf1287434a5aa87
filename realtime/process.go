// realtime/process.go
package realtime

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/google/uuid"

	"tictactoe-arena/models"
)

// maxInbox bounds how many messages a match buffers between ticks.
const maxInbox = 64

// Sender is one connected presence's outbound channel. Send must not block.
type Sender interface {
	Send(frame []byte) bool
	Close()
}

// matchProcess is one hosted match. It implements services.Dispatcher.
type matchProcess struct {
	registry *Registry
	id       string
	jobID    uuid.UUID

	mu     sync.Mutex
	state  *models.MatchState
	closed bool

	// guarded by registry.mu
	label models.MatchLabel

	inboxMu sync.Mutex
	inbox   []models.MatchMessage

	clientsMu sync.Mutex
	clients   map[string]Sender
}

func (p *matchProcess) tick() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.registry.handler.Loop(p.registry.ctx, p, p.state, p.drain())
}

func (p *matchProcess) enqueue(msg models.MatchMessage) {
	p.inboxMu.Lock()
	defer p.inboxMu.Unlock()
	if len(p.inbox) >= maxInbox {
		log.Printf("[MATCH] ⚠️ Inbox full for match %s, dropping message from %s", p.id, msg.UserID)
		return
	}
	p.inbox = append(p.inbox, msg)
}

func (p *matchProcess) drain() []models.MatchMessage {
	p.inboxMu.Lock()
	defer p.inboxMu.Unlock()
	msgs := p.inbox
	p.inbox = nil
	return msgs
}

func (p *matchProcess) addClient(userID string, s Sender) {
	p.clientsMu.Lock()
	defer p.clientsMu.Unlock()
	p.clients[userID] = s
}

func (p *matchProcess) removeClient(userID string) bool {
	p.clientsMu.Lock()
	defer p.clientsMu.Unlock()
	if _, ok := p.clients[userID]; !ok {
		return false
	}
	delete(p.clients, userID)
	return true
}

func (p *matchProcess) clientCount() int {
	p.clientsMu.Lock()
	defer p.clientsMu.Unlock()
	return len(p.clients)
}

func (p *matchProcess) closeClients() {
	p.clientsMu.Lock()
	targets := p.clients
	p.clients = make(map[string]Sender)
	p.clientsMu.Unlock()

	for _, c := range targets {
		if c != nil {
			c.Close()
		}
	}
}

// Broadcast sends an envelope to every presence. A client that cannot keep up
// is closed; its socket teardown then leaves the match.
func (p *matchProcess) Broadcast(op models.OpCode, payload []byte) error {
	frame, err := json.Marshal(models.Envelope{OpCode: op, Data: payload})
	if err != nil {
		return err
	}

	p.clientsMu.Lock()
	targets := make(map[string]Sender, len(p.clients))
	for id, c := range p.clients {
		if c != nil {
			targets[id] = c
		}
	}
	p.clientsMu.Unlock()

	for id, c := range targets {
		if !c.Send(frame) {
			log.Printf("[SOCKET] ⚠️ Client %s in match %s is not keeping up, dropping", id, p.id)
			c.Close()
		}
	}
	return nil
}

func (p *matchProcess) UpdateLabel(label models.MatchLabel) error {
	p.registry.mu.Lock()
	p.label = label
	p.registry.mu.Unlock()
	return nil
}
