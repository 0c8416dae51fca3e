package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"gorm.io/gorm"

	"github.com/agrosafe/farmguard/middleware"
	"github.com/agrosafe/farmguard/models"
)

// ChecklistHandler serves completed checklist runs. Checklist outcomes
// are append-mostly: runs are recorded once and deleted on mistake, never
// edited, so there is no update endpoint.
type ChecklistHandler struct {
	db *gorm.DB
}

func NewChecklistHandler(db *gorm.DB) *ChecklistHandler {
	return &ChecklistHandler{db: db}
}

func (h *ChecklistHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return
	}
	var items []models.CompletedChecklist
	if err := h.db.Where("user_id = ?", userID).Order("completed_at DESC").Find(&items).Error; err != nil {
		writeError(w, http.StatusInternalServerError, "something went wrong")
		return
	}
	writeList(w, items, len(items))
}

func (h *ChecklistHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return
	}
	var item models.CompletedChecklist
	if err := json.NewDecoder(r.Body).Decode(&item); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if item.EquipmentName == "" || item.Status == "" {
		writeError(w, http.StatusBadRequest, "equipment_name and status are required")
		return
	}
	item.UserID = userID
	if err := h.db.Create(&item).Error; err != nil {
		writeError(w, http.StatusInternalServerError, "something went wrong")
		return
	}
	writeData(w, http.StatusCreated, item)
}

func (h *ChecklistHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return
	}
	id := mux.Vars(r)["id"]
	res := h.db.Where("id = ? AND user_id = ?", id, userID).Delete(&models.CompletedChecklist{})
	if res.Error != nil {
		writeError(w, http.StatusInternalServerError, "something went wrong")
		return
	}
	if res.RowsAffected == 0 {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
