package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/agrosafe/farmguard/middleware"
	"github.com/agrosafe/farmguard/models"
	"github.com/agrosafe/farmguard/pkg/riskmap"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	err = db.AutoMigrate(&models.User{}, &models.Equipment{}, &models.CompletedChecklist{},
		&models.MaintenanceTask{}, &models.FarmMap{}, &models.RiskZone{})
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func authedRequest(t *testing.T, method, target string, body []byte, userID uuid.UUID) *http.Request {
	t.Helper()
	token, err := middleware.GenerateToken(userID.String(), "Test Farmer", "farmer@example.com")
	if err != nil {
		t.Fatalf("token: %v", err)
	}
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder, data interface{}) {
	t.Helper()
	var env struct {
		Data  json.RawMessage `json:"data"`
		Error *string         `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode envelope: %v (%s)", err, rec.Body.String())
	}
	if env.Error != nil {
		t.Fatalf("unexpected error in envelope: %s", *env.Error)
	}
	if data != nil {
		if err := json.Unmarshal(env.Data, data); err != nil {
			t.Fatalf("decode data: %v", err)
		}
	}
}

func TestDashboardScenarioFailedEquipment(t *testing.T) {
	db := newTestDB(t)
	userID := uuid.New()
	if err := db.Create(&models.Equipment{
		UserID:    userID,
		MakeModel: "Case IH Puma",
		Type:      "Tractor",
		Status:    models.StatusFailed,
	}).Error; err != nil {
		t.Fatalf("seed: %v", err)
	}
	// another user's failed gear must not leak into the register
	db.Create(&models.Equipment{
		UserID:    uuid.New(),
		MakeModel: "Neighbour's Baler",
		Type:      "Baler",
		Status:    models.StatusFailed,
	})

	h := NewRiskHandler(db)
	rec := httptest.NewRecorder()
	middleware.JWTMiddleware(http.HandlerFunc(h.Dashboard)).
		ServeHTTP(rec, authedRequest(t, "GET", "/api/v1/risk/dashboard", nil, userID))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	var resp dashboardResponse
	decodeEnvelope(t, rec, &resp)

	if len(resp.Entries) != 1 {
		t.Fatalf("entries = %d, want 1", len(resp.Entries))
	}
	if resp.Entries[0].Severity != "critical" {
		t.Errorf("severity = %q, want critical", resp.Entries[0].Severity)
	}
	if resp.Summary.SafetyScore != 80 {
		t.Errorf("safety score = %d, want 80", resp.Summary.SafetyScore)
	}
	if len(resp.Partial) != 0 {
		t.Errorf("unexpected partial feeds: %v", resp.Partial)
	}
}

func TestDashboardEmptyFeeds(t *testing.T) {
	db := newTestDB(t)
	h := NewRiskHandler(db)
	rec := httptest.NewRecorder()
	middleware.JWTMiddleware(http.HandlerFunc(h.Dashboard)).
		ServeHTTP(rec, authedRequest(t, "GET", "/api/v1/risk/dashboard", nil, uuid.New()))

	var resp dashboardResponse
	decodeEnvelope(t, rec, &resp)
	if len(resp.Entries) != 0 {
		t.Errorf("entries = %d, want 0", len(resp.Entries))
	}
	if resp.Summary.SafetyScore != 100 {
		t.Errorf("safety score = %d, want 100", resp.Summary.SafetyScore)
	}
}

func TestDashboardDegradesFailedFeed(t *testing.T) {
	db := newTestDB(t)
	userID := uuid.New()
	if err := db.Create(&models.Equipment{
		UserID:    userID,
		MakeModel: "Claas Lexion",
		Type:      "Combine",
		Status:    models.StatusFailed,
	}).Error; err != nil {
		t.Fatalf("seed: %v", err)
	}
	// break one feed; the others must still render
	if err := db.Migrator().DropTable(&models.CompletedChecklist{}); err != nil {
		t.Fatalf("drop table: %v", err)
	}

	h := NewRiskHandler(db)
	rec := httptest.NewRecorder()
	middleware.JWTMiddleware(http.HandlerFunc(h.Dashboard)).
		ServeHTTP(rec, authedRequest(t, "GET", "/api/v1/risk/dashboard", nil, userID))

	if rec.Code != http.StatusOK {
		t.Fatalf("a failed feed must not abort the dashboard: status = %d", rec.Code)
	}
	var resp dashboardResponse
	decodeEnvelope(t, rec, &resp)

	if len(resp.Entries) != 1 || resp.Entries[0].Category != "EquipmentRisk" {
		t.Fatalf("surviving feeds did not render: %+v", resp.Entries)
	}
	if resp.Summary.SafetyScore != 80 {
		t.Errorf("safety score = %d, want 80", resp.Summary.SafetyScore)
	}
	if len(resp.Partial) != 1 || resp.Partial[0] != "checklists" {
		t.Errorf("partial = %v, want [checklists]", resp.Partial)
	}
}

func TestDashboardRequiresAuth(t *testing.T) {
	h := NewRiskHandler(newTestDB(t))
	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/v1/risk/dashboard", nil)
	middleware.JWTMiddleware(http.HandlerFunc(h.Dashboard)).ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func newMapRouter(db *gorm.DB) *mux.Router {
	svc := riskmap.NewService(riskmap.NewRepository(db))
	sessions := riskmap.NewSessionManager(svc)
	h := NewMapHandler(svc, sessions)

	r := mux.NewRouter()
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(middleware.JWTMiddleware)
	api.HandleFunc("/risk/map", h.GetMap).Methods("GET")
	api.HandleFunc("/risk/map/zones", h.CreateZone).Methods("POST")
	api.HandleFunc("/risk/map/zones/{id}", h.UpdateZone).Methods("PUT")
	api.HandleFunc("/risk/map/edit", h.EnterEdit).Methods("POST")
	api.HandleFunc("/risk/map/zones/{id}/position", h.DragZone).Methods("POST")
	api.HandleFunc("/risk/map/save", h.SaveLayout).Methods("POST")
	return r
}

func TestMapEndToEnd(t *testing.T) {
	db := newTestDB(t)
	router := newMapRouter(db)
	userID := uuid.New()

	// first visit lazily creates the map
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, authedRequest(t, "GET", "/api/v1/risk/map", nil, userID))
	if rec.Code != http.StatusOK {
		t.Fatalf("get map: %d %s", rec.Code, rec.Body.String())
	}
	var m models.FarmMap
	decodeEnvelope(t, rec, &m)
	if m.UserID != userID {
		t.Fatalf("map owner = %s, want %s", m.UserID, userID)
	}

	// create a zone with a missing description: rejected before the store
	bad, _ := json.Marshal(map[string]string{
		"name": "Silo", "category": "Fall", "riskLevel": "High", "location": "Yard",
	})
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, authedRequest(t, "POST", "/api/v1/risk/map/zones", bad, userID))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("invalid zone: status = %d", rec.Code)
	}

	good, _ := json.Marshal(map[string]string{
		"name": "Silo", "category": "Fall", "riskLevel": "High",
		"location": "Yard", "description": "Unguarded ladder",
	})
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, authedRequest(t, "POST", "/api/v1/risk/map/zones", good, userID))
	if rec.Code != http.StatusCreated {
		t.Fatalf("create zone: %d %s", rec.Code, rec.Body.String())
	}
	var zone models.RiskZone
	decodeEnvelope(t, rec, &zone)

	// drags only work in edit mode
	drag, _ := json.Marshal(dragReq{X: 120, Y: 80, Seq: 1})
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, authedRequest(t, "POST", "/api/v1/risk/map/zones/"+zone.ID.String()+"/position", drag, userID))
	if rec.Code != http.StatusConflict {
		t.Fatalf("drag outside edit mode: status = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, authedRequest(t, "POST", "/api/v1/risk/map/edit", nil, userID))
	if rec.Code != http.StatusOK {
		t.Fatalf("enter edit: %d %s", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, authedRequest(t, "POST", "/api/v1/risk/map/zones/"+zone.ID.String()+"/position", drag, userID))
	if rec.Code != http.StatusAccepted {
		t.Fatalf("drag: %d %s", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, authedRequest(t, "POST", "/api/v1/risk/map/save", nil, userID))
	if rec.Code != http.StatusOK {
		t.Fatalf("save: %d %s", rec.Code, rec.Body.String())
	}

	// the saved position survived the round trip (snapped to the 20px grid)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, authedRequest(t, "GET", "/api/v1/risk/map", nil, userID))
	var reloaded models.FarmMap
	decodeEnvelope(t, rec, &reloaded)
	if len(reloaded.Zones) != 1 {
		t.Fatalf("zones = %d, want 1", len(reloaded.Zones))
	}
	geom := reloaded.Zones[0].Geometry.Data()
	if geom.X != 120 || geom.Y != 80 {
		t.Errorf("position = (%v,%v), want (120,80)", geom.X, geom.Y)
	}
}

func TestUpdateZoneCrossUserViaHTTP(t *testing.T) {
	db := newTestDB(t)
	router := newMapRouter(db)
	owner := uuid.New()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, authedRequest(t, "GET", "/api/v1/risk/map", nil, owner))
	var m models.FarmMap
	decodeEnvelope(t, rec, &m)

	good, _ := json.Marshal(map[string]string{
		"name": "Pond", "category": "Drowning", "riskLevel": "Critical",
		"location": "East field", "description": "Deep water, no fence",
	})
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, authedRequest(t, "POST", "/api/v1/risk/map/zones", good, owner))
	var zone models.RiskZone
	decodeEnvelope(t, rec, &zone)

	patch, _ := json.Marshal(map[string]string{"name": "Hijacked"})
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, authedRequest(t, "PUT", "/api/v1/risk/map/zones/"+zone.ID.String(), patch, uuid.New()))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("cross-user update: status = %d, want 404", rec.Code)
	}

	var kept models.RiskZone
	if err := db.First(&kept, "id = ?", zone.ID).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if kept.Name != "Pond" {
		t.Errorf("row changed: %q", kept.Name)
	}
}
