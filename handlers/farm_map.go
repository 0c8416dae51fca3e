package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/agrosafe/farmguard/middleware"
	"github.com/agrosafe/farmguard/models"
	"github.com/agrosafe/farmguard/pkg/riskmap"
	"github.com/agrosafe/farmguard/utils"
)

// MapHandler serves the farm map, its zones and the edit-mode protocol.
type MapHandler struct {
	svc      *riskmap.Service
	sessions *riskmap.SessionManager
}

func NewMapHandler(svc *riskmap.Service, sessions *riskmap.SessionManager) *MapHandler {
	return &MapHandler{svc: svc, sessions: sessions}
}

// mapResponse decorates the stored map with the session mode and a
// per-zone off-map flag (display only; the store never clamps geometry).
type mapResponse struct {
	*models.FarmMap
	Mode        string      `json:"mode"`
	OffMapZones []uuid.UUID `json:"offMapZones,omitempty"`
}

// GetMap returns the caller's farm map with zones, lazily creating the
// map on first visit.
func (h *MapHandler) GetMap(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return
	}
	m, err := h.svc.GetOrCreateFarmMap(userID)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	full, err := h.svc.GetFarmMapWithZones(m.ID, userID)
	if err != nil {
		writeStoreError(w, err)
		return
	}

	session := h.sessions.Get(userID, full)
	writeData(w, http.StatusOK, buildMapResponse(full, session.Mode()))
}

func buildMapResponse(m *models.FarmMap, mode string) mapResponse {
	var offMap []uuid.UUID
	bounds := m.Bounds.Data()
	for _, z := range m.Zones {
		if !utils.ZoneWithinMap(z.Geometry.Data(), bounds) {
			offMap = append(offMap, z.ID)
		}
	}
	return mapResponse{FarmMap: m, Mode: mode, OffMapZones: offMap}
}

// CreateZone adds a zone to the caller's map. The map id may be omitted;
// it then defaults to the caller's single map.
func (h *MapHandler) CreateZone(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return
	}
	var in riskmap.CreateZoneInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if in.FarmMapID == uuid.Nil {
		m, err := h.svc.GetOrCreateFarmMap(userID)
		if err != nil {
			writeStoreError(w, err)
			return
		}
		in.FarmMapID = m.ID
	}
	zone, err := h.svc.CreateZone(userID, in)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeData(w, http.StatusCreated, zone)
}

// UpdateZone applies a partial update to a zone's attributes, action
// plan or geometry.
func (h *MapHandler) UpdateZone(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return
	}
	zoneID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid zone id")
		return
	}
	var patch riskmap.ZonePatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	zone, err := h.svc.UpdateZone(zoneID, userID, patch)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeData(w, http.StatusOK, zone)
}

func (h *MapHandler) DeleteZone(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return
	}
	zoneID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid zone id")
		return
	}
	if _, err := h.svc.DeleteZone(zoneID, userID); err != nil {
		writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// EnterEdit switches the caller's layout session into edit mode.
func (h *MapHandler) EnterEdit(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return
	}
	m, err := h.svc.GetOrCreateFarmMap(userID)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	session := h.sessions.Get(userID, m)
	if err := session.EnterEdit(); err != nil {
		writeStoreError(w, err)
		return
	}
	writeData(w, http.StatusOK, map[string]string{"mode": session.Mode()})
}

type dragReq struct {
	X   float64 `json:"x"`
	Y   float64 `json:"y"`
	Seq uint64  `json:"seq"`
}

// DragZone records a new position for a zone during edit mode. Writes
// are queued latest-wins and persisted asynchronously; a superseded
// position is never written.
func (h *MapHandler) DragZone(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return
	}
	zoneID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid zone id")
		return
	}
	var req dragReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	session, ok := h.sessions.Lookup(userID)
	if !ok {
		writeError(w, http.StatusConflict, riskmap.ErrNotEditing.Error())
		return
	}

	x, y := utils.SnapPosition(req.X, req.Y, session.Config())
	if err := session.Drag(zoneID, x, y, req.Seq); err != nil {
		writeStoreError(w, err)
		return
	}
	writeData(w, http.StatusAccepted, map[string]float64{"x": x, "y": y})
}

// SaveLayout flushes pending drag writes and leaves edit mode.
func (h *MapHandler) SaveLayout(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return
	}
	session, ok := h.sessions.Lookup(userID)
	if !ok {
		writeError(w, http.StatusConflict, riskmap.ErrNotEditing.Error())
		return
	}
	if err := session.Save(); err != nil {
		writeStoreError(w, err)
		return
	}
	writeData(w, http.StatusOK, map[string]string{"mode": session.Mode()})
}

// DiscardLayout abandons queued positions, reloads the map from the
// store and leaves edit mode.
func (h *MapHandler) DiscardLayout(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return
	}
	session, ok := h.sessions.Lookup(userID)
	if !ok {
		writeError(w, http.StatusConflict, riskmap.ErrNotEditing.Error())
		return
	}
	m, err := session.Discard()
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeData(w, http.StatusOK, buildMapResponse(m, session.Mode()))
}
