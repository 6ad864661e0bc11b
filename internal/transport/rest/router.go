package rest

import (
	"net/http"
	"os"

	"growwise/internal/service"
	"growwise/internal/transport/rest/handler"
	"growwise/internal/transport/rest/middleware"
	"growwise/internal/transport/ws"

	"github.com/gorilla/mux"
)

// Container holds all dependencies for the router
type Container struct {
	AuthService       *service.AuthService
	AssessmentService *service.AssessmentService
	CurriculumService *service.CurriculumService
	ChatService       *service.ChatService
	ValidatorService  *service.ValidatorService
	WSHub             *ws.Hub
}

// NewRouter creates the API router with all endpoints
func NewRouter(c *Container) http.Handler {
	r := mux.NewRouter()

	// Initialize handlers
	authHandler := handler.NewAuthHandler(c.AuthService)
	assessmentHandler := handler.NewAssessmentHandler(c.AssessmentService)
	curriculumHandler := handler.NewCurriculumHandler(c.CurriculumService)
	chatHandler := handler.NewChatHandler(c.ChatService)
	validatorHandler := handler.NewValidatorHandler(c.ValidatorService)
	wsHandler := ws.NewHandler(c.WSHub, c.AuthService, c.ChatService)

	// Initialize middleware
	authMW := middleware.NewAuthMiddleware(c.AuthService)

	// CORS middleware (apply first)
	r.Use(corsMiddleware)

	// API v1 routes
	v1 := r.PathPrefix("/v1").Subrouter()

	// Public routes
	v1.HandleFunc("/auth/register", authHandler.Register).Methods("POST", "OPTIONS")
	v1.HandleFunc("/auth/login", authHandler.Login).Methods("POST", "OPTIONS")

	// WebSocket routes (token in query param)
	v1.HandleFunc("/ws/chats/{sessionId}", wsHandler.ChatWS).Methods("GET")

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	// Authenticated routes
	userRoutes := v1.NewRoute().Subrouter()
	userRoutes.Use(authMW.RequireUser)

	userRoutes.HandleFunc("/auth/me", authHandler.Me).Methods("GET", "OPTIONS")

	userRoutes.HandleFunc("/assessments", assessmentHandler.Start).Methods("POST", "OPTIONS")
	userRoutes.HandleFunc("/assessments/latest", assessmentHandler.Latest).Methods("GET", "OPTIONS")
	userRoutes.HandleFunc("/assessments/{sessionId}", assessmentHandler.Get).Methods("GET", "OPTIONS")
	userRoutes.HandleFunc("/assessments/{sessionId}/answers", assessmentHandler.SubmitAnswer).Methods("POST", "OPTIONS")
	userRoutes.HandleFunc("/assessments/{sessionId}/exit", assessmentHandler.Exit).Methods("POST", "OPTIONS")
	userRoutes.HandleFunc("/assessments/{sessionId}/result", assessmentHandler.Result).Methods("GET", "OPTIONS")

	userRoutes.HandleFunc("/curricula", curriculumHandler.Generate).Methods("POST", "OPTIONS")
	userRoutes.HandleFunc("/curricula/current", curriculumHandler.Current).Methods("GET", "OPTIONS")
	userRoutes.HandleFunc("/curricula/{pathId}", curriculumHandler.Get).Methods("GET", "OPTIONS")
	userRoutes.HandleFunc("/curricula/{pathId}/content/{contentId}/complete", curriculumHandler.CompleteContent).Methods("POST", "OPTIONS")

	userRoutes.HandleFunc("/chats", chatHandler.Create).Methods("POST", "OPTIONS")
	userRoutes.HandleFunc("/chats/{sessionId}/messages", chatHandler.SendMessage).Methods("POST", "OPTIONS")
	userRoutes.HandleFunc("/chats/{sessionId}/messages", chatHandler.ListMessages).Methods("GET", "OPTIONS")
	userRoutes.HandleFunc("/chats/{sessionId}", chatHandler.Delete).Methods("DELETE", "OPTIONS")

	userRoutes.HandleFunc("/validator/review", validatorHandler.Review).Methods("POST", "OPTIONS")

	return r
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowedOrigins := os.Getenv("CORS_ALLOWED_ORIGINS")
		if allowedOrigins == "" {
			allowedOrigins = "*"
		}

		allowedMethods := os.Getenv("CORS_ALLOWED_METHODS")
		if allowedMethods == "" {
			allowedMethods = "GET, POST, PUT, DELETE, OPTIONS"
		}

		allowedHeaders := os.Getenv("CORS_ALLOWED_HEADERS")
		if allowedHeaders == "" {
			allowedHeaders = "Content-Type, Authorization"
		}

		w.Header().Set("Access-Control-Allow-Origin", allowedOrigins)
		w.Header().Set("Access-Control-Allow-Methods", allowedMethods)
		w.Header().Set("Access-Control-Allow-Headers", allowedHeaders)

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
