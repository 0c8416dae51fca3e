package routes

import (
	"net/http"

	"github.com/gorilla/mux"
	"gorm.io/gorm"

	"github.com/agrosafe/farmguard/handlers"
	"github.com/agrosafe/farmguard/middleware"
	"github.com/agrosafe/farmguard/pkg/riskmap"
)

// RegisterRoutes sets up all application routes
func RegisterRoutes(db *gorm.DB) http.Handler {
	r := mux.NewRouter()

	authHandler := handlers.NewAuthHandler(db)

	// =====================================================
	// Public Routes (no authentication)
	// =====================================================
	r.HandleFunc("/register", authHandler.Register).Methods("POST")
	r.HandleFunc("/login", authHandler.Login).Methods("POST")

	// =====================================================
	// Protected API Routes (require JWT authentication)
	// =====================================================
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(middleware.JWTMiddleware)

	registerFeedRoutes(api, db)
	registerRiskRoutes(api, db)

	return r
}

// registerFeedRoutes wires the equipment, checklist and maintenance
// screens that the risk engine feeds off.
func registerFeedRoutes(api *mux.Router, db *gorm.DB) {
	equipment := handlers.NewEquipmentHandler(db)
	api.HandleFunc("/equipment", equipment.List).Methods("GET")
	api.HandleFunc("/equipment", equipment.Create).Methods("POST")
	api.HandleFunc("/equipment/{id}", equipment.Get).Methods("GET")
	api.HandleFunc("/equipment/{id}", equipment.Update).Methods("PUT")
	api.HandleFunc("/equipment/{id}", equipment.Delete).Methods("DELETE")

	checklists := handlers.NewChecklistHandler(db)
	api.HandleFunc("/checklists", checklists.List).Methods("GET")
	api.HandleFunc("/checklists", checklists.Create).Methods("POST")
	api.HandleFunc("/checklists/{id}", checklists.Delete).Methods("DELETE")

	maintenance := handlers.NewMaintenanceHandler(db)
	api.HandleFunc("/maintenance", maintenance.List).Methods("GET")
	api.HandleFunc("/maintenance", maintenance.Create).Methods("POST")
	api.HandleFunc("/maintenance/{id}", maintenance.Update).Methods("PUT")
	api.HandleFunc("/maintenance/{id}", maintenance.Delete).Methods("DELETE")
}

// registerRiskRoutes wires the risk dashboard, the register export and
// the farm-map zone editor.
func registerRiskRoutes(api *mux.Router, db *gorm.DB) {
	riskHandler := handlers.NewRiskHandler(db)
	api.HandleFunc("/risk/dashboard", riskHandler.Dashboard).Methods("GET")
	api.HandleFunc("/risk/register/export", riskHandler.ExportRegister).Methods("GET")

	svc := riskmap.NewService(riskmap.NewRepository(db))
	sessions := riskmap.NewSessionManager(svc)
	maps := handlers.NewMapHandler(svc, sessions)
	api.HandleFunc("/risk/map", maps.GetMap).Methods("GET")
	api.HandleFunc("/risk/map/zones", maps.CreateZone).Methods("POST")
	api.HandleFunc("/risk/map/zones/{id}", maps.UpdateZone).Methods("PUT")
	api.HandleFunc("/risk/map/zones/{id}", maps.DeleteZone).Methods("DELETE")
	api.HandleFunc("/risk/map/zones/{id}/position", maps.DragZone).Methods("POST")
	api.HandleFunc("/risk/map/edit", maps.EnterEdit).Methods("POST")
	api.HandleFunc("/risk/map/save", maps.SaveLayout).Methods("POST")
	api.HandleFunc("/risk/map/discard", maps.DiscardLayout).Methods("POST")
}
