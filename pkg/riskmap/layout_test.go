package riskmap

import (
	"testing"

	"github.com/google/uuid"

	"github.com/agrosafe/farmguard/models"
)

func newEditableSession(t *testing.T) (*Service, *LayoutSession, uuid.UUID, *models.RiskZone) {
	t.Helper()
	svc := newTestService(t)
	userID := uuid.New()
	m, err := svc.GetOrCreateFarmMap(userID)
	if err != nil {
		t.Fatalf("map: %v", err)
	}
	zone, err := svc.CreateZone(userID, validZoneInput(m.ID))
	if err != nil {
		t.Fatalf("zone: %v", err)
	}
	s := NewLayoutSession(svc, m, userID)
	t.Cleanup(s.Close)
	return svc, s, userID, zone
}

func TestLayoutInitialModeIsViewing(t *testing.T) {
	_, s, _, zone := newEditableSession(t)
	if s.Mode() != ModeViewing {
		t.Errorf("mode = %q, want viewing", s.Mode())
	}
	if err := s.Drag(zone.ID, 10, 10, 1); err != ErrNotEditing {
		t.Errorf("drag outside edit mode = %v, want ErrNotEditing", err)
	}
	if err := s.Save(); err != ErrNotEditing {
		t.Errorf("save outside edit mode = %v, want ErrNotEditing", err)
	}
}

func TestLayoutEditGatedByConfig(t *testing.T) {
	svc := newTestService(t)
	userID := uuid.New()
	m, _ := svc.GetOrCreateFarmMap(userID)

	cfg := m.Config.Data()
	cfg.AllowEditing = false
	m.Config = jsonOf(cfg)

	s := NewLayoutSession(svc, m, userID)
	defer s.Close()
	if err := s.EnterEdit(); err != ErrEditingDisabled {
		t.Errorf("expected ErrEditingDisabled, got %v", err)
	}
	if s.Mode() != ModeViewing {
		t.Errorf("mode = %q after refused edit", s.Mode())
	}
}

func TestLayoutDragPersistsOnSave(t *testing.T) {
	svc, s, userID, zone := newEditableSession(t)
	if err := s.EnterEdit(); err != nil {
		t.Fatalf("enter edit: %v", err)
	}

	if err := s.Drag(zone.ID, 120, 90, 1); err != nil {
		t.Fatalf("drag: %v", err)
	}
	if err := s.Drag(zone.ID, 200, 150, 2); err != nil {
		t.Fatalf("drag: %v", err)
	}
	if err := s.Save(); err != nil {
		t.Fatalf("save: %v", err)
	}
	if s.Mode() != ModeViewing {
		t.Errorf("mode after save = %q", s.Mode())
	}

	full, err := svc.GetFarmMapWithZones(zone.FarmMapID, userID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	geom := full.Zones[0].Geometry.Data()
	if geom.X != 200 || geom.Y != 150 {
		t.Errorf("persisted position = (%v,%v), want (200,150)", geom.X, geom.Y)
	}
}

func TestLayoutStaleSequenceDropped(t *testing.T) {
	svc, s, userID, zone := newEditableSession(t)
	if err := s.EnterEdit(); err != nil {
		t.Fatalf("enter edit: %v", err)
	}

	// seq 5 lands first; the delayed seq 3 arriving afterwards is stale
	if err := s.Drag(zone.ID, 300, 300, 5); err != nil {
		t.Fatalf("drag: %v", err)
	}
	if err := s.Drag(zone.ID, 10, 10, 3); err != nil {
		t.Fatalf("stale drag: %v", err)
	}
	if err := s.Save(); err != nil {
		t.Fatalf("save: %v", err)
	}

	full, _ := svc.GetFarmMapWithZones(zone.FarmMapID, userID)
	geom := full.Zones[0].Geometry.Data()
	if geom.X != 300 || geom.Y != 300 {
		t.Errorf("stale drag overwrote newer position: (%v,%v)", geom.X, geom.Y)
	}
}

func TestLayoutIndependentZones(t *testing.T) {
	svc, s, userID, zone := newEditableSession(t)
	other, err := svc.CreateZone(userID, CreateZoneInput{
		FarmMapID:   zone.FarmMapID,
		Name:        "Fuel Store",
		Category:    "Fire",
		RiskLevel:   models.RiskLevelHigh,
		Location:    "Yard",
		Description: "Diesel tank and jerry cans",
	})
	if err != nil {
		t.Fatalf("second zone: %v", err)
	}

	if err := s.EnterEdit(); err != nil {
		t.Fatalf("enter edit: %v", err)
	}
	if err := s.Drag(zone.ID, 50, 50, 1); err != nil {
		t.Fatalf("drag: %v", err)
	}
	if err := s.Drag(other.ID, 500, 400, 1); err != nil {
		t.Fatalf("drag: %v", err)
	}
	if err := s.Save(); err != nil {
		t.Fatalf("save: %v", err)
	}

	full, _ := svc.GetFarmMapWithZones(zone.FarmMapID, userID)
	byID := map[uuid.UUID]models.ZoneGeometry{}
	for _, z := range full.Zones {
		byID[z.ID] = z.Geometry.Data()
	}
	if g := byID[zone.ID]; g.X != 50 || g.Y != 50 {
		t.Errorf("zone position = (%v,%v), want (50,50)", g.X, g.Y)
	}
	if g := byID[other.ID]; g.X != 500 || g.Y != 400 {
		t.Errorf("other zone position = (%v,%v), want (500,400)", g.X, g.Y)
	}
}

func TestLayoutDiscardReloadsFromStore(t *testing.T) {
	svc, s, userID, zone := newEditableSession(t)
	if err := s.EnterEdit(); err != nil {
		t.Fatalf("enter edit: %v", err)
	}
	if err := s.Drag(zone.ID, 77, 88, 1); err != nil {
		t.Fatalf("drag: %v", err)
	}
	if err := s.Save(); err != nil {
		t.Fatalf("save: %v", err)
	}

	// simulate another session moving the zone underneath us
	if _, err := svc.UpdateZonePosition(zone.ID, userID, 5, 5); err != nil {
		t.Fatalf("external move: %v", err)
	}

	if err := s.EnterEdit(); err != nil {
		t.Fatalf("re-enter edit: %v", err)
	}
	m, err := s.Discard()
	if err != nil {
		t.Fatalf("discard: %v", err)
	}
	if s.Mode() != ModeViewing {
		t.Errorf("mode after discard = %q", s.Mode())
	}
	geom := m.Zones[0].Geometry.Data()
	if geom.X != 5 || geom.Y != 5 {
		t.Errorf("discard did not reload store state: (%v,%v)", geom.X, geom.Y)
	}
}

func TestLayoutSequenceResetsPerEditCycle(t *testing.T) {
	svc, s, userID, zone := newEditableSession(t)
	if err := s.EnterEdit(); err != nil {
		t.Fatalf("enter edit: %v", err)
	}
	if err := s.Drag(zone.ID, 100, 100, 5); err != nil {
		t.Fatalf("drag: %v", err)
	}
	if err := s.Save(); err != nil {
		t.Fatalf("save: %v", err)
	}

	// a client restarting its counter at 1 after the previous cycle
	// ended must not be treated as stale
	if err := s.EnterEdit(); err != nil {
		t.Fatalf("re-enter edit: %v", err)
	}
	if err := s.Drag(zone.ID, 250, 175, 1); err != nil {
		t.Fatalf("drag: %v", err)
	}
	if err := s.Save(); err != nil {
		t.Fatalf("save: %v", err)
	}

	full, _ := svc.GetFarmMapWithZones(zone.FarmMapID, userID)
	geom := full.Zones[0].Geometry.Data()
	if geom.X != 250 || geom.Y != 175 {
		t.Errorf("restarted counter was dropped, position = (%v,%v), want (250,175)", geom.X, geom.Y)
	}
}

func TestLayoutConfigCachedAndRefreshedOnDiscard(t *testing.T) {
	svc, s, userID, _ := newEditableSession(t)
	if got, want := s.Config(), models.DefaultMapConfig(); got != want {
		t.Errorf("session config = %+v, want %+v", got, want)
	}

	// change the stored config; the session keeps its snapshot until a
	// discard re-reads the map
	cfg := models.DefaultMapConfig()
	cfg.GridSize = 50
	m, err := svc.repo.FindMapByUser(userID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	m.Config = jsonOf(cfg)
	if err := svc.repo.(*gormRepository).db.Save(m).Error; err != nil {
		t.Fatalf("store config: %v", err)
	}
	if s.Config().GridSize == 50 {
		t.Error("config changed without a discard")
	}

	if err := s.EnterEdit(); err != nil {
		t.Fatalf("enter edit: %v", err)
	}
	if _, err := s.Discard(); err != nil {
		t.Fatalf("discard: %v", err)
	}
	if s.Config().GridSize != 50 {
		t.Errorf("config after discard = %+v, want grid size 50", s.Config())
	}
}

func TestSessionManagerReuse(t *testing.T) {
	svc := newTestService(t)
	userID := uuid.New()
	m, _ := svc.GetOrCreateFarmMap(userID)

	sm := NewSessionManager(svc)
	a := sm.Get(userID, m)
	b := sm.Get(userID, m)
	if a != b {
		t.Error("manager created a second session for the same user")
	}
	if _, ok := sm.Lookup(uuid.New()); ok {
		t.Error("lookup invented a session")
	}
	sm.Drop(userID)
	if _, ok := sm.Lookup(userID); ok {
		t.Error("session survived Drop")
	}
}
