package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"gorm.io/gorm"

	"github.com/agrosafe/farmguard/middleware"
	"github.com/agrosafe/farmguard/models"
)

type EquipmentHandler struct {
	db *gorm.DB
}

func NewEquipmentHandler(db *gorm.DB) *EquipmentHandler {
	return &EquipmentHandler{db: db}
}

func (h *EquipmentHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return
	}
	var items []models.Equipment
	if err := h.db.Where("user_id = ?", userID).Order("created_at ASC").Find(&items).Error; err != nil {
		writeError(w, http.StatusInternalServerError, "something went wrong")
		return
	}
	writeList(w, items, len(items))
}

func (h *EquipmentHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return
	}
	var item models.Equipment
	if err := json.NewDecoder(r.Body).Decode(&item); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if item.MakeModel == "" || item.Status == "" {
		writeError(w, http.StatusBadRequest, "make_model and status are required")
		return
	}
	item.UserID = userID
	if err := h.db.Create(&item).Error; err != nil {
		writeError(w, http.StatusInternalServerError, "something went wrong")
		return
	}
	writeData(w, http.StatusCreated, item)
}

func (h *EquipmentHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return
	}
	id := mux.Vars(r)["id"]
	var item models.Equipment
	if err := h.db.Where("id = ? AND user_id = ?", id, userID).First(&item).Error; err != nil {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	writeData(w, http.StatusOK, item)
}

func (h *EquipmentHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return
	}
	id := mux.Vars(r)["id"]
	var item models.Equipment
	if err := h.db.Where("id = ? AND user_id = ?", id, userID).First(&item).Error; err != nil {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	rowID := item.ID
	if err := json.NewDecoder(r.Body).Decode(&item); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	// identity and ownership cannot be reassigned through the payload;
	// a body carrying another row's id must not retarget the save
	item.ID = rowID
	item.UserID = userID
	if err := h.db.Save(&item).Error; err != nil {
		writeError(w, http.StatusInternalServerError, "something went wrong")
		return
	}
	writeData(w, http.StatusOK, item)
}

func (h *EquipmentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return
	}
	id := mux.Vars(r)["id"]
	res := h.db.Where("id = ? AND user_id = ?", id, userID).Delete(&models.Equipment{})
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
