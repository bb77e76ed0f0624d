package server

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/dukerupert/chorewheel/internal/handler"
	"github.com/dukerupert/chorewheel/internal/lifecycle"
	"github.com/dukerupert/chorewheel/internal/middleware"
	"github.com/dukerupert/chorewheel/internal/push"
	"github.com/dukerupert/chorewheel/internal/store"
	ws "github.com/dukerupert/chorewheel/internal/websocket"
)

// Config carries the knobs main reads from the environment.
type Config struct {
	VAPIDPublicKey  string
	VAPIDPrivateKey string
	SecureCookies   bool
}

type Server struct {
	db             *sql.DB
	hub            *ws.Hub
	authH          *handler.AuthHandler
	householdH     *handler.HouseholdHandler
	choreH         *handler.ChoreHandler
	badgeH         *handler.BadgeHandler
	leaderboardH   *handler.LeaderboardHandler
	userH          *handler.UserHandler
	pushH          *handler.PushHandler
	sessionStore   *store.SessionStore
	householdStore *store.HouseholdStore
	pushStore      *store.PushStore
	rateLimiter    *middleware.RateLimiter
	pushScheduler  *push.Scheduler
	logger         *slog.Logger
}

func New(db *sql.DB, cfg Config, logger *slog.Logger) *Server {
	hub := ws.NewHub(logger.With("component", "websocket"))

	userStore := store.NewUserStore(db)
	householdStore := store.NewHouseholdStore(db)
	sessionStore := store.NewSessionStore(db)
	choreStore := store.NewChoreStore(db)
	pushStore := store.NewPushStore(db)

	pushLogger := logger.With("component", "push")

	// Push notifications run only when VAPID keys are configured. Without
	// them the lifecycle service gets a nil notifier and badge and reminder
	// pushes are skipped.
	var notifier lifecycle.Notifier
	var pushSched *push.Scheduler
	var pushH *handler.PushHandler
	if cfg.VAPIDPublicKey != "" && cfg.VAPIDPrivateKey != "" {
		pushSvc := push.NewService(cfg.VAPIDPublicKey, cfg.VAPIDPrivateKey)
		dispatcher := push.NewDispatcher(pushSvc, pushStore, choreStore, pushLogger)
		notifier = dispatcher
		pushSched = push.NewScheduler(pushSvc, dispatcher, pushStore, choreStore, pushLogger)
		pushH = handler.NewPushHandler(pushSvc, pushStore, pushLogger)
	}

	svc := lifecycle.NewService(choreStore, userStore, notifier, nil, logger.With("component", "lifecycle"))

	return &Server{
		db:             db,
		hub:            hub,
		authH:          handler.NewAuthHandler(userStore, householdStore, sessionStore, cfg.SecureCookies, logger.With("component", "auth")),
		householdH:     handler.NewHouseholdHandler(householdStore, userStore, sessionStore, logger.With("component", "household")),
		choreH:         handler.NewChoreHandler(choreStore, svc, hub, logger.With("component", "chore")),
		badgeH:         handler.NewBadgeHandler(svc, logger.With("component", "badge")),
		leaderboardH:   handler.NewLeaderboardHandler(userStore, logger.With("component", "leaderboard")),
		userH:          handler.NewUserHandler(userStore, logger.With("component", "user")),
		pushH:          pushH,
		sessionStore:   sessionStore,
		householdStore: householdStore,
		pushStore:      pushStore,
		rateLimiter:    middleware.NewRateLimiter(),
		pushScheduler:  pushSched,
		logger:         logger,
	}
}

// SessionStore returns the session store for cleanup tasks.
func (s *Server) SessionStore() *store.SessionStore {
	return s.sessionStore
}

// PushStore returns the push store for cleanup tasks.
func (s *Server) PushStore() *store.PushStore {
	return s.pushStore
}

// PushScheduler returns the chore reminder scheduler, nil when push is off.
func (s *Server) PushScheduler() *push.Scheduler {
	return s.pushScheduler
}

// RateLimiter returns the rate limiter for cleanup tasks.
func (s *Server) RateLimiter() *middleware.RateLimiter {
	return s.rateLimiter
}

func (s *Server) Router() http.Handler {
	outerMux := http.NewServeMux()

	// Public routes (no auth required)
	outerMux.HandleFunc("POST /api/register", s.rateLimitedHandler(s.authH.Register))
	outerMux.HandleFunc("POST /api/login", s.rateLimitedHandler(s.authH.Login))
	outerMux.HandleFunc("GET /health", s.healthHandler)

	// Authenticated routes that work before a household is selected
	authedMux := http.NewServeMux()
	authedMux.HandleFunc("POST /api/logout", s.authH.Logout)
	authedMux.HandleFunc("GET /api/me", s.userH.Me)
	authedMux.HandleFunc("PUT /api/me/pin", s.userH.SetPIN)
	authedMux.HandleFunc("POST /api/me/pin/verify", s.userH.VerifyPIN)
	authedMux.HandleFunc("POST /api/households", s.householdH.Create)
	authedMux.HandleFunc("POST /api/households/join", s.householdH.Join)
	authedMux.HandleFunc("GET /api/households", s.householdH.ListMine)
	authedMux.HandleFunc("POST /api/households/{id}/switch", s.householdH.Switch)
	authedMux.HandleFunc("GET /api/badges", s.badgeH.Catalog)
	authedMux.HandleFunc("GET /api/badges/progress", s.badgeH.Progress)

	// Routes that need an active household on the session
	householdMux := http.NewServeMux()
	s.registerHouseholdRoutes(householdMux)
	authedMux.Handle("/", middleware.RequireHousehold(householdMux))

	authMiddleware := middleware.RequireAuth(s.sessionStore, s.householdStore)
	outerMux.Handle("/", authMiddleware(authedMux))

	return middleware.RequestLogger(s.logger.With("component", "http"))(outerMux)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) rateLimitedHandler(h http.HandlerFunc) http.HandlerFunc {
	keyFunc := func(r *http.Request) string {
		return middleware.RealIP(r)
	}
	rl := middleware.RateLimit(s.rateLimiter, keyFunc, 10, time.Minute)
	return func(w http.ResponseWriter, r *http.Request) {
		rl(http.HandlerFunc(h)).ServeHTTP(w, r)
	}
}

func (s *Server) registerHouseholdRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/households/current", s.householdH.Get)
	mux.Handle("DELETE /api/households/current", middleware.RequireOwner(http.HandlerFunc(s.householdH.Delete)))
	mux.Handle("DELETE /api/households/members/{id}", middleware.RequireOwner(http.HandlerFunc(s.householdH.RemoveMember)))

	// Chore API routes
	mux.HandleFunc("POST /api/chores", s.choreH.Create)
	mux.HandleFunc("GET /api/chores", s.choreH.List)
	mux.HandleFunc("GET /api/chores/{id}", s.choreH.Get)
	mux.HandleFunc("PUT /api/chores/{id}", s.choreH.Update)
	mux.HandleFunc("DELETE /api/chores/{id}", s.choreH.Delete)
	mux.HandleFunc("POST /api/chores/{id}/complete", s.choreH.Complete)
	mux.HandleFunc("GET /api/chores/{id}/next", s.choreH.PreviewNext)

	// Leaderboard
	mux.HandleFunc("GET /api/leaderboard", s.leaderboardH.Get)

	// Push notification API routes
	if s.pushH != nil {
		mux.HandleFunc("GET /api/push/vapid-key", s.pushH.VAPIDKey)
		mux.HandleFunc("POST /api/push/subscribe", s.pushH.Subscribe)
		mux.HandleFunc("DELETE /api/push/subscriptions/{id}", s.pushH.Unsubscribe)
		mux.HandleFunc("GET /api/push/subscriptions", s.pushH.List)
	}

	// WebSocket
	mux.HandleFunc("GET /ws", ws.HandleWebSocket(s.hub))
}
