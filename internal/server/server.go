package server

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/dukerupert/larder/internal/backup"
	"github.com/dukerupert/larder/internal/handler"
	"github.com/dukerupert/larder/internal/llm"
	"github.com/dukerupert/larder/internal/meals"
	"github.com/dukerupert/larder/internal/middleware"
	"github.com/dukerupert/larder/internal/ordering"
	"github.com/dukerupert/larder/internal/pantry"
	"github.com/dukerupert/larder/internal/planner"
	"github.com/dukerupert/larder/internal/store"
	ws "github.com/dukerupert/larder/internal/websocket"
)

type Config struct {
	// TokenHash is the bcrypt hash of the API bearer token. Empty disables
	// authentication.
	TokenHash string
	// OriginPatterns restricts websocket origins. Empty accepts any.
	OriginPatterns []string
	// MealRateLimit caps LLM-backed requests per client IP per minute.
	MealRateLimit int
	// Backup configures encrypted off-site snapshots. The zero value
	// leaves backups disabled.
	Backup backup.Config
}

type Server struct {
	db          *sql.DB
	hub         *ws.Hub
	validate    *validator.Validate
	categoryH   *handler.CategoryHandler
	pantryH     *handler.PantryHandler
	groceryH    *handler.GroceryHandler
	mealH       *handler.MealHandler
	backupH     *handler.BackupHandler
	backups     *backup.Manager
	rateLimiter *middleware.RateLimiter
	cfg         Config
	logger      *slog.Logger
}

func New(db *sql.DB, gen llm.TextGenerator, cfg Config, logger *slog.Logger) *Server {
	if cfg.MealRateLimit <= 0 {
		cfg.MealRateLimit = 20
	}

	hub := ws.NewHub(logger)
	validate := handler.NewValidator()

	categoryStore := store.NewCategoryStore(db)
	pantryStore := store.NewPantryStore(db)
	groceryStore := store.NewGroceryStore(db)
	mealPlanStore := store.NewMealPlanStore(db)

	reconcile := pantry.NewService(db, logger)
	orderSvc := ordering.NewService(pantryStore, logger)
	mealSvc := meals.NewService(gen, validate, logger)
	plannerSvc := planner.NewService(mealPlanStore)

	backups := backup.NewManager(cfg.Backup, db, store.NewBackupStore(db), func(st backup.Status) {
		hub.Broadcast(ws.NewMessage(ws.EntityBackup, string(st.State), 0, map[string]any{
			"inProgress": st.InProgress,
			"error":      st.Error,
		}))
	}, logger)

	return &Server{
		db:          db,
		hub:         hub,
		validate:    validate,
		categoryH:   handler.NewCategoryHandler(categoryStore, validate, hub, logger),
		pantryH:     handler.NewPantryHandler(pantryStore, categoryStore, reconcile, orderSvc, validate, hub, logger),
		groceryH:    handler.NewGroceryHandler(groceryStore, categoryStore, reconcile, validate, hub, logger),
		mealH:       handler.NewMealHandler(mealSvc, plannerSvc, validate, hub, logger),
		backupH:     handler.NewBackupHandler(backups, logger),
		backups:     backups,
		rateLimiter: middleware.NewRateLimiter(),
		cfg:         cfg,
		logger:      logger,
	}
}

// Hub returns the change-notification hub.
func (s *Server) Hub() *ws.Hub {
	return s.hub
}

// BackupManager returns the backup scheduler so the caller can start and
// stop it alongside the HTTP server.
func (s *Server) BackupManager() *backup.Manager {
	return s.backups
}

func (s *Server) Router() http.Handler {
	outerMux := http.NewServeMux()

	// Public routes (no auth required)
	outerMux.HandleFunc("GET /health", s.healthHandler)
	outerMux.HandleFunc("GET /ws", ws.HandleWebSocket(s.hub, s.cfg.OriginPatterns))

	apiMux := http.NewServeMux()
	s.registerAPIRoutes(apiMux)

	authMiddleware := middleware.RequireToken(s.cfg.TokenHash, s.logger.With("component", "auth"))
	outerMux.Handle("/api/", authMiddleware(apiMux))

	return middleware.RequestLogger(s.logger.With("component", "http"))(outerMux)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	status, code := "ok", http.StatusOK
	if err := s.db.PingContext(r.Context()); err != nil {
		s.logger.Error("health check failed", "error", err)
		status, code = "unavailable", http.StatusServiceUnavailable
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]any{"status": status, "clients": s.hub.ClientCount()})
}

func mealsKey(r *http.Request) string {
	return "meals:" + middleware.RealIP(r)
}

func (s *Server) rateLimitedHandler(h http.HandlerFunc) http.Handler {
	return middleware.RateLimit(s.rateLimiter, mealsKey, s.cfg.MealRateLimit, time.Minute)(h)
}

// rateLimitedDetails keeps the details failure shape on a 429.
func (s *Server) rateLimitedDetails() http.Handler {
	return middleware.RateLimitWith(s.rateLimiter, mealsKey, s.cfg.MealRateLimit, time.Minute, s.mealH.DetailsRateLimited)(http.HandlerFunc(s.mealH.Details))
}

func (s *Server) registerAPIRoutes(mux *http.ServeMux) {
	// Categories
	mux.HandleFunc("GET /api/categories", s.categoryH.List)
	mux.HandleFunc("POST /api/categories", s.categoryH.Create)
	mux.HandleFunc("GET /api/categories/suggest", s.categoryH.Suggest)
	mux.HandleFunc("DELETE /api/categories/{id}", s.categoryH.Delete)

	// Pantry
	mux.HandleFunc("GET /api/pantry-items", s.pantryH.List)
	mux.HandleFunc("POST /api/pantry-items", s.pantryH.Create)
	mux.HandleFunc("DELETE /api/pantry-items", s.pantryH.Clear)
	mux.HandleFunc("GET /api/pantry-items/{id}", s.pantryH.Get)
	mux.HandleFunc("PUT /api/pantry-items/{id}", s.pantryH.Update)
	mux.HandleFunc("DELETE /api/pantry-items/{id}", s.pantryH.Delete)
	mux.HandleFunc("PUT /api/pantry-items/orders", s.pantryH.UpdateOrders)
	mux.HandleFunc("POST /api/pantry-items/orders/normalize", s.pantryH.Normalize)
	mux.HandleFunc("POST /api/pantry-items/move", s.pantryH.Move)
	mux.HandleFunc("POST /api/pantry-items/upsert-from-grocery", s.pantryH.UpsertFromGrocery)
	mux.HandleFunc("POST /api/pantry-items/sync", s.pantryH.Sync)

	// Grocery list
	mux.HandleFunc("GET /api/grocery-list-items", s.groceryH.List)
	mux.HandleFunc("POST /api/grocery-list-items", s.groceryH.Create)
	mux.HandleFunc("GET /api/grocery-list-items/{id}", s.groceryH.Get)
	mux.HandleFunc("PUT /api/grocery-list-items/{id}", s.groceryH.Update)
	mux.HandleFunc("DELETE /api/grocery-list-items/{id}", s.groceryH.Delete)
	mux.HandleFunc("POST /api/grocery-list-items/{id}/toggle", s.groceryH.Toggle)
	mux.HandleFunc("POST /api/grocery-list-items/batch", s.groceryH.CreateMultiple)
	mux.HandleFunc("POST /api/grocery-list-items/from-pantry", s.groceryH.AddFromPantry)
	mux.HandleFunc("DELETE /api/grocery-list-items/by-category", s.groceryH.DeleteByCategory)

	// Meals (LLM backed, rate limited)
	mux.Handle("POST /api/meals/suggestions", s.rateLimitedHandler(s.mealH.Suggest))
	mux.Handle("GET /api/meals/details", s.rateLimitedDetails())

	// Meal planner
	mux.HandleFunc("GET /api/meal-plan", s.mealH.Week)
	mux.HandleFunc("POST /api/meal-plan", s.mealH.Plan)
	mux.HandleFunc("DELETE /api/meal-plan/{id}", s.mealH.Unplan)
	mux.HandleFunc("GET /api/meal-plan/export.ics", s.mealH.Export)

	// Backups
	mux.HandleFunc("GET /api/backups", s.backupH.List)
	mux.HandleFunc("POST /api/backups", s.backupH.Create)
	mux.HandleFunc("GET /api/backups/{id}/download", s.backupH.Download)
}
