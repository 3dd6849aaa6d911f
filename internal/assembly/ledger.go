package assembly

import (
	"sync"

	"github.com/cespare/xxhash/v2"
	"github.com/specialistvlad/rf2kit/internal/rf2"
)

const ledgerShards = 64

// Outcome of offering a row to the ledger.
type Outcome int

const (
	// Accepted means the (id, effectiveTime) was new.
	Accepted Outcome = iota
	// Duplicate means an identical row was already recorded.
	Duplicate
	// Conflict means a row with the same (id, effectiveTime) but different
	// content was already recorded.
	Conflict
)

// Ledger records the (id, effectiveTime, hash) triples of one target file
// build. It is safe for concurrent use.
type Ledger struct {
	shards [ledgerShards]ledgerShard
}

type ledgerShard struct {
	mu sync.Mutex
	m  map[string]map[string]uint64
}

func NewLedger() *Ledger {
	l := &Ledger{}
	for i := range l.shards {
		l.shards[i].m = make(map[string]map[string]uint64)
	}
	return l
}

func (l *Ledger) shard(id string) *ledgerShard {
	return &l.shards[xxhash.Sum64String(id)%ledgerShards]
}

func check(times map[string]uint64, et string, hash uint64) (Outcome, bool) {
	h, ok := times[et]
	if !ok {
		return Accepted, false
	}
	if h == hash {
		return Duplicate, true
	}
	return Conflict, true
}

// Record adds the row to the ledger, keeping every effective time per id.
func (l *Ledger) Record(r rf2.Row) Outcome {
	id, et, hash := r.ID(), r.EffectiveTime(), r.Hash()
	s := l.shard(id)
	s.mu.Lock()
	defer s.mu.Unlock()

	times := s.m[id]
	if out, seen := check(times, et, hash); seen {
		return out
	}
	if times == nil {
		times = make(map[string]uint64, 1)
		s.m[id] = times
	}
	times[et] = hash
	return Accepted
}

// Offer keeps a single winner per id: the row with the greatest effective
// time. It reports Duplicate or Conflict only against the current winner.
func (l *Ledger) Offer(r rf2.Row) Outcome {
	id, et, hash := r.ID(), r.EffectiveTime(), r.Hash()
	s := l.shard(id)
	s.mu.Lock()
	defer s.mu.Unlock()

	times := s.m[id]
	if out, seen := check(times, et, hash); seen {
		return out
	}
	for cur := range times {
		if rf2.CompareEffectiveTime(et, cur) <= 0 {
			return Accepted
		}
	}
	s.m[id] = map[string]uint64{et: hash}
	return Accepted
}

// Take removes the winner of id if its effective time is et, and reports
// whether it did.
func (l *Ledger) Take(id, et string) bool {
	s := l.shard(id)
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.m[id][et]; !ok {
		return false
	}
	delete(s.m, id)
	return true
}

// Len returns the number of ids held.
func (l *Ledger) Len() int {
	n := 0
	for i := range l.shards {
		s := &l.shards[i]
		s.mu.Lock()
		n += len(s.m)
		s.mu.Unlock()
	}
	return n
}
