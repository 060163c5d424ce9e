package handler

import (
	"github.com/Dan9191/finplan-service/internal/config"
	"github.com/Dan9191/finplan-service/internal/middleware"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter wires every route onto a gorilla/mux router
func NewRouter(h *Handler, cfg *config.Config) *mux.Router {
	r := mux.NewRouter()
	r.Use(middleware.RequestLogger(h.log))

	// Public routes
	r.HandleFunc("/health", h.Health).Methods("GET")
	r.HandleFunc("/sessions", h.CreateSession).Methods("POST")
	r.HandleFunc("/capacity", h.Capacity).Methods("POST")
	r.HandleFunc("/reference-rate", h.ReferenceRate).Methods("GET")
	r.Handle("/metrics", promhttp.Handler()).Methods("GET")

	// Session routes
	authRouter := r.PathPrefix("/").Subrouter()
	authRouter.Use(middleware.AuthMiddleware(cfg))
	authRouter.HandleFunc("/capacity/report", h.CapacityReport).Methods("POST")
	authRouter.HandleFunc("/position", h.Position).Methods("GET")
	authRouter.HandleFunc("/position/apply", h.ApplyStrategy).Methods("POST")
	authRouter.HandleFunc("/projection", h.Projection).Methods("GET")
	authRouter.HandleFunc("/projections", h.Projections).Methods("GET")
	authRouter.HandleFunc("/facilities/{facility}/items", h.Facility).Methods("GET")
	authRouter.HandleFunc("/facilities/{facility}/flow", h.FacilityFlow).Methods("GET")
	authRouter.HandleFunc("/facilities/{facility}/items/{direction}", h.AddItem).Methods("POST")
	authRouter.HandleFunc("/facilities/{facility}/items/{direction}/{id:[0-9]+}", h.UpdateItem).Methods("PUT")
	authRouter.HandleFunc("/facilities/{facility}/items/{direction}/{id:[0-9]+}", h.RemoveItem).Methods("DELETE")

	return r
}
