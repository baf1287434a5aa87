package services

import (
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"sort"
	"sync"

	"tictactoe-arena/models"
)

var errStoreDown = errors.New("store unavailable")

type sent struct {
	op      models.OpCode
	payload []byte
}

type fakeDispatcher struct {
	sent   []sent
	labels []models.MatchLabel
}

func (d *fakeDispatcher) Broadcast(op models.OpCode, payload []byte) error {
	d.sent = append(d.sent, sent{op: op, payload: payload})
	return nil
}

func (d *fakeDispatcher) UpdateLabel(label models.MatchLabel) error {
	d.labels = append(d.labels, label)
	return nil
}

func (d *fakeDispatcher) lastState() models.MatchState {
	var st models.MatchState
	if len(d.sent) == 0 {
		return st
	}
	_ = json.Unmarshal(d.sent[len(d.sent)-1].payload, &st)
	return st
}

type objKey struct{ coll, key, user string }

type memObjects struct {
	mu      sync.Mutex
	data    map[objKey][]byte
	fail    bool
	deleted []string
	log     *callLog
}

func newMemObjects() *memObjects {
	return &memObjects{data: map[objKey][]byte{}}
}

func (m *memObjects) Read(_ context.Context, coll, key, user string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return nil, false, errStoreDown
	}
	v, ok := m.data[objKey{coll, key, user}]
	return v, ok, nil
}

func (m *memObjects) Update(_ context.Context, coll, key, user string, fn func([]byte, bool) ([]byte, error)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return errStoreDown
	}
	k := objKey{coll, key, user}
	cur, ok := m.data[k]
	next, err := fn(cur, ok)
	if err != nil {
		return err
	}
	m.data[k] = next
	return nil
}

func (m *memObjects) Delete(_ context.Context, coll, key, user string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleted = append(m.deleted, user)
	if m.log != nil {
		m.log.calls = append(m.log.calls, "streak")
	}
	if m.fail {
		return errStoreDown
	}
	delete(m.data, objKey{coll, key, user})
	return nil
}

type memRanks struct {
	mu      sync.Mutex
	boards  map[string]map[string]int64
	writes  int
	fail    bool
	removed []string
	log     *callLog
}

func newMemRanks() *memRanks {
	return &memRanks{boards: map[string]map[string]int64{}}
}

func (r *memRanks) Increment(_ context.Context, board, owner string, delta int64) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail {
		return 0, errStoreDown
	}
	r.writes++
	if r.boards[board] == nil {
		r.boards[board] = map[string]int64{}
	}
	r.boards[board][owner] += delta
	return r.boards[board][owner], nil
}

func (r *memRanks) Top(_ context.Context, board string, limit int) ([]models.RankRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail {
		return nil, errStoreDown
	}
	var out []models.RankRecord
	for id, score := range r.boards[board] {
		out = append(out, models.RankRecord{OwnerID: id, Score: score})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *memRanks) Score(_ context.Context, board, owner string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail {
		return 0, errStoreDown
	}
	return r.boards[board][owner], nil
}

func (r *memRanks) Remove(_ context.Context, board, owner string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.removed = append(r.removed, board+":"+owner)
	if r.log != nil {
		r.log.calls = append(r.log.calls, "ranking")
	}
	if r.fail {
		return errStoreDown
	}
	delete(r.boards[board], owner)
	return nil
}

func (r *memRanks) get(board, owner string) int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.boards[board][owner]
}

// callLog records the order cleanup steps run in across fakes.
type callLog struct{ calls []string }

type memAccounts struct {
	log      *callLog
	accounts map[string]*models.Account
	failDel  bool
}

func (a *memAccounts) Ensure(_ context.Context, acc *models.Account) (*models.Account, error) {
	if existing, ok := a.accounts[acc.ID]; ok {
		existing.LastSeen = acc.LastSeen
		return existing, nil
	}
	a.accounts[acc.ID] = acc
	return acc, nil
}

func (a *memAccounts) Get(_ context.Context, id string) (*models.Account, error) {
	return a.accounts[id], nil
}

func (a *memAccounts) SetAvatar(_ context.Context, id, url string) error {
	if acc, ok := a.accounts[id]; ok {
		acc.AvatarURL = &url
	}
	return nil
}

func (a *memAccounts) Delete(_ context.Context, id string) error {
	a.log.calls = append(a.log.calls, "account")
	if a.failDel {
		return errStoreDown
	}
	delete(a.accounts, id)
	return nil
}

func (a *memAccounts) DisplayNames(_ context.Context, ids []string) (map[string]string, error) {
	out := map[string]string{}
	for _, id := range ids {
		if acc, ok := a.accounts[id]; ok {
			out[id] = acc.DisplayName
		}
	}
	return out, nil
}

type memBucket struct {
	log     *callLog
	objects map[string]bool
	fail    bool
}

func (b *memBucket) Upload(_ context.Context, key string, _ *multipart.FileHeader) (string, error) {
	b.objects[key] = true
	return "https://cdn.test/" + key, nil
}

func (b *memBucket) DeletePrefix(_ context.Context, prefix string) (int, error) {
	b.log.calls = append(b.log.calls, "avatars")
	if b.fail {
		return 0, errStoreDown
	}
	n := 0
	for k := range b.objects {
		if len(k) >= len(prefix) && k[:len(prefix)] == prefix {
			delete(b.objects, k)
			n++
		}
	}
	return n, nil
}

type fakeRegistry struct {
	open    map[string]models.MatchLabel
	order   []string
	created int
	listErr error
}

func newFakeRegistry() *fakeRegistry {
	return &fakeRegistry{open: map[string]models.MatchLabel{}}
}

func (r *fakeRegistry) List(_ context.Context, q models.MatchLabel, limit int) ([]string, error) {
	if r.listErr != nil {
		return nil, r.listErr
	}
	var out []string
	for _, id := range r.order {
		if r.open[id] == q {
			out = append(out, id)
			if limit > 0 && len(out) == limit {
				break
			}
		}
	}
	return out, nil
}

func (r *fakeRegistry) Create(_ context.Context, mode models.MatchMode) (string, error) {
	r.created++
	id := "match-" + string(rune('a'+r.created-1))
	r.open[id] = models.MatchLabel{Open: true, Mode: mode}
	r.order = append(r.order, id)
	return id, nil
}
