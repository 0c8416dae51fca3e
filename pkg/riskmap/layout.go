package riskmap

import (
	"log"
	"sync"

	"github.com/google/uuid"

	"github.com/agrosafe/farmguard/models"
)

// Session modes.
const (
	ModeViewing = "viewing"
	ModeEditing = "editing"
)

// dragTarget is the newest requested position for one zone.
type dragTarget struct {
	x, y float64
	seq  uint64
}

// LayoutSession drives interactive repositioning of zones on one farm
// map for one user. It is a two-state machine: Viewing (drags rejected)
// and Editing (drags accepted, persisted live).
//
// Drags are not written one-per-pointer-event. Each zone has a
// latest-wins mailbox: an incoming drag overwrites any position not yet
// persisted, and drags arriving with a sequence number at or below the
// newest one seen for that zone are dropped as stale. A single writer
// goroutine drains the mailboxes through the store, so at most one write
// per zone is in flight and a burst of pointer moves collapses into the
// final position. The trade-off is visible staleness, not correctness: a
// position read mid-drag may lag the pointer until the writer catches
// up, which the map view tolerates.
//
// Save is only an acknowledgement plus a flush; the drags already
// persisted everything. Discard throws away undrained mailboxes and
// re-reads the map from the store. Same-zone edits from two sessions are
// last-write-wins with no version check.
type LayoutSession struct {
	svc    *Service
	userID uuid.UUID
	mapID  uuid.UUID

	mu       sync.Mutex
	cond     *sync.Cond
	mode     string
	config   models.MapConfig
	pending  map[uuid.UUID]dragTarget
	lastSeq  map[uuid.UUID]uint64
	inflight int
	closed   bool

	notify chan struct{}
	done   chan struct{}
}

// NewLayoutSession builds a session for an already-loaded map. The map's
// config decides whether edit mode can ever be entered.
func NewLayoutSession(svc *Service, m *models.FarmMap, userID uuid.UUID) *LayoutSession {
	s := &LayoutSession{
		svc:     svc,
		userID:  userID,
		mapID:   m.ID,
		mode:    ModeViewing,
		config:  m.Config.Data(),
		pending: make(map[uuid.UUID]dragTarget),
		lastSeq: make(map[uuid.UUID]uint64),
		notify:  make(chan struct{}, 1),
		done:    make(chan struct{}),
	}
	s.cond = sync.NewCond(&s.mu)
	go s.run()
	return s
}

// Mode returns the current state, "viewing" or "editing".
func (s *LayoutSession) Mode() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

// Config returns the map config captured when the session was created,
// refreshed on Discard. Snap settings come from here rather than a
// store read per pointer move.
func (s *LayoutSession) Config() models.MapConfig {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.config
}

// EnterEdit switches to Editing. Fails when the map config has editing
// disabled. Entering while already editing is a no-op.
func (s *LayoutSession) EnterEdit() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.config.AllowEditing {
		return ErrEditingDisabled
	}
	s.mode = ModeEditing
	return nil
}

// Drag records a new position for a zone. seq is the client's pointer
// event counter; anything at or below the newest seq already seen for
// that zone is stale and silently dropped. Only valid in edit mode.
func (s *LayoutSession) Drag(zoneID uuid.UUID, x, y float64, seq uint64) error {
	s.mu.Lock()
	if s.mode != ModeEditing {
		s.mu.Unlock()
		return ErrNotEditing
	}
	if seq <= s.lastSeq[zoneID] {
		s.mu.Unlock()
		return nil
	}
	s.lastSeq[zoneID] = seq
	s.pending[zoneID] = dragTarget{x: x, y: y, seq: seq}
	s.mu.Unlock()

	select {
	case s.notify <- struct{}{}:
	default:
	}
	return nil
}

// Save flushes any positions still queued, then returns to Viewing. No
// further write happens beyond what the drags already persisted.
func (s *LayoutSession) Save() error {
	s.mu.Lock()
	if s.mode != ModeEditing {
		s.mu.Unlock()
		return ErrNotEditing
	}
	for len(s.pending) > 0 || s.inflight > 0 {
		s.cond.Wait()
	}
	s.mode = ModeViewing
	// each edit cycle gets a fresh counter; clients restart at 1
	s.lastSeq = make(map[uuid.UUID]uint64)
	s.mu.Unlock()
	return nil
}

// Discard drops queued positions, re-reads the map and zones from the
// store and returns to Viewing. Positions already round-tripped stay;
// that is what the re-read reflects.
func (s *LayoutSession) Discard() (*models.FarmMap, error) {
	s.mu.Lock()
	if s.mode != ModeEditing {
		s.mu.Unlock()
		return nil, ErrNotEditing
	}
	s.pending = make(map[uuid.UUID]dragTarget)
	for s.inflight > 0 {
		s.cond.Wait()
	}
	s.mode = ModeViewing
	s.lastSeq = make(map[uuid.UUID]uint64)
	s.mu.Unlock()

	m, err := s.svc.GetFarmMapWithZones(s.mapID, s.userID)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.config = m.Config.Data()
	s.mu.Unlock()
	return m, nil
}

// Close stops the writer goroutine. Pending positions are abandoned.
func (s *LayoutSession) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.mu.Unlock()
	close(s.done)
}

// run is the single writer. It pops one mailbox at a time so a drag
// arriving mid-write for the same zone lands in a fresh mailbox slot and
// gets its own write afterwards.
func (s *LayoutSession) run() {
	for {
		select {
		case <-s.done:
			return
		case <-s.notify:
			for {
				s.mu.Lock()
				if len(s.pending) == 0 {
					s.cond.Broadcast()
					s.mu.Unlock()
					break
				}
				var zoneID uuid.UUID
				var t dragTarget
				for id, d := range s.pending {
					zoneID, t = id, d
					break
				}
				delete(s.pending, zoneID)
				s.inflight++
				s.mu.Unlock()

				if _, err := s.svc.UpdateZonePosition(zoneID, s.userID, t.x, t.y); err != nil {
					// A failed drag write leaves the zone at its last
					// committed position; the next drag or a discard
					// reconciles the view.
					log.Printf("layout: drag write for zone %s failed: %v", zoneID, err)
				}

				s.mu.Lock()
				s.inflight--
				s.cond.Broadcast()
				s.mu.Unlock()
			}
		}
	}
}
