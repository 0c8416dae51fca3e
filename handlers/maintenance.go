package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"gorm.io/gorm"

	"github.com/agrosafe/farmguard/middleware"
	"github.com/agrosafe/farmguard/models"
)

type MaintenanceHandler struct {
	db *gorm.DB
}

func NewMaintenanceHandler(db *gorm.DB) *MaintenanceHandler {
	return &MaintenanceHandler{db: db}
}

func (h *MaintenanceHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return
	}
	var items []models.MaintenanceTask
	if err := h.db.Where("user_id = ?", userID).Order("due_date ASC").Find(&items).Error; err != nil {
		writeError(w, http.StatusInternalServerError, "something went wrong")
		return
	}
	writeList(w, items, len(items))
}

func (h *MaintenanceHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return
	}
	var item models.MaintenanceTask
	if err := json.NewDecoder(r.Body).Decode(&item); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if item.Title == "" || item.DueDate == "" {
		writeError(w, http.StatusBadRequest, "title and due_date are required")
		return
	}
	if item.Status == "" {
		item.Status = models.TaskStatusPending
	}
	item.UserID = userID
	if err := h.db.Create(&item).Error; err != nil {
		writeError(w, http.StatusInternalServerError, "something went wrong")
		return
	}
	writeData(w, http.StatusCreated, item)
}

func (h *MaintenanceHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return
	}
	id := mux.Vars(r)["id"]
	var item models.MaintenanceTask
	if err := h.db.Where("id = ? AND user_id = ?", id, userID).First(&item).Error; err != nil {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	rowID := item.ID
	if err := json.NewDecoder(r.Body).Decode(&item); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	// identity and ownership cannot be reassigned through the payload
	item.ID = rowID
	item.UserID = userID
	if err := h.db.Save(&item).Error; err != nil {
		writeError(w, http.StatusInternalServerError, "something went wrong")
		return
	}
	writeData(w, http.StatusOK, item)
}

func (h *MaintenanceHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return
	}
	id := mux.Vars(r)["id"]
	res := h.db.Where("id = ? AND user_id = ?", id, userID).Delete(&models.MaintenanceTask{})
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
