package handlers

import (
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/agrosafe/farmguard/middleware"
	"github.com/agrosafe/farmguard/models"
	"github.com/agrosafe/farmguard/pkg/risk"
)

// RiskHandler serves the derived risk register and safety score.
type RiskHandler struct {
	db *gorm.DB
}

func NewRiskHandler(db *gorm.DB) *RiskHandler {
	return &RiskHandler{db: db}
}

// dashboardResponse is the full payload the dashboard renders from.
// Partial lists the feeds that failed to load; their contribution
// degrades to empty rather than aborting the whole aggregation.
type dashboardResponse struct {
	Entries []risk.Entry   `json:"entries"`
	Summary risk.Summary   `json:"summary"`
	Skipped []risk.Skipped `json:"skipped,omitempty"`
	Partial []string       `json:"partial,omitempty"`
}

// Dashboard fetches the three feeds concurrently, aggregates them into
// the risk register and scores it.
func (h *RiskHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	equipment, checklists, tasks, partial := h.loadFeeds(userID)
	entries, skipped := risk.Aggregate(equipment, checklists, tasks, time.Now().UTC())
	summary := risk.Score(entries)

	writeData(w, http.StatusOK, dashboardResponse{
		Entries: entries,
		Summary: summary,
		Skipped: skipped,
		Partial: partial,
	})
}

// loadFeeds runs the three feed queries in parallel. A failing feed is
// logged, reported by name and replaced with an empty list; the group
// error is always nil.
func (h *RiskHandler) loadFeeds(userID uuid.UUID) ([]models.Equipment, []models.CompletedChecklist, []models.MaintenanceTask, []string) {
	var (
		equipment  []models.Equipment
		checklists []models.CompletedChecklist
		tasks      []models.MaintenanceTask
		failed     [3]string
	)

	var g errgroup.Group
	g.Go(func() error {
		if err := h.db.Where("user_id = ?", userID).Order("created_at ASC").Find(&equipment).Error; err != nil {
			log.Printf("risk: equipment feed failed: %v", err)
			failed[0] = "equipment"
		}
		return nil
	})
	g.Go(func() error {
		if err := h.db.Where("user_id = ?", userID).Order("completed_at ASC").Find(&checklists).Error; err != nil {
			log.Printf("risk: checklist feed failed: %v", err)
			failed[1] = "checklists"
		}
		return nil
	})
	g.Go(func() error {
		if err := h.db.Where("user_id = ?", userID).Order("due_date ASC").Find(&tasks).Error; err != nil {
			log.Printf("risk: maintenance feed failed: %v", err)
			failed[2] = "maintenance"
		}
		return nil
	})
	// the closures never return an error; failures degrade to empty feeds
	_ = g.Wait()

	var partial []string
	for _, name := range failed {
		if name != "" {
			partial = append(partial, name)
		}
	}
	return equipment, checklists, tasks, partial
}
