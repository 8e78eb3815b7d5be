package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jmoiron/sqlx"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.uber.org/zap"

	"wellbalance/internal/chat"
	_ "wellbalance/internal/docs"
	"wellbalance/internal/handlers"
	mw "wellbalance/internal/middleware"
	"wellbalance/internal/services"
)

type Options struct {
	DB          *sqlx.DB
	Logger      *zap.Logger
	Clock       services.Clock
	JWTSecret   []byte
	CORSOrigins []string
	// Model is nil when no language model is configured; /api/chat then
	// answers 503 while the rest of the API keeps working.
	Model   chat.Model
	Weather *chat.WeatherClient
}

// New wires services, handlers and middleware into one router.
func New(opts Options) http.Handler {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	origins := opts.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	logs := services.NewDailyLogService(opts.DB, opts.Clock, logger)
	targets := services.NewTargetsService(opts.DB, logger)
	foods := services.NewFoodService(opts.DB, logger)
	dashboard := services.NewDashboardService(logs, targets)

	var assembler *chat.Assembler
	if opts.Model != nil {
		assembler = chat.NewAssembler(opts.Model, opts.Clock, chat.ToolDeps{
			Weather:   opts.Weather,
			Summaries: logs,
			Targets:   targets,
		}, logger)
	}

	authMW := mw.NewAuthMiddleware(opts.JWTSecret)
	authHandler := handlers.NewAuthHandler(opts.DB, authMW, logger)
	mealHandler := handlers.NewMealHandler(logs, logger)
	foodHandler := handlers.NewFoodHandler(foods, logger)
	dashboardHandler := handlers.NewDashboardHandler(dashboard, logger)
	profileHandler := handlers.NewProfileHandler(opts.DB, targets, logger)
	chatHandler := handlers.NewChatHandler(assembler, logger)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(mw.ZapRequestLogger(logger))
	r.Use(mw.ZapRecoverer(logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link", "X-Vercel-Ai-Ui-Message-Stream"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/healthz", healthz(opts.DB))
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	r.Route("/api", func(api chi.Router) {
		api.Post("/auth/signup", authHandler.Signup)
		api.Post("/auth/login", authHandler.Login)
		api.Get("/foods", foodHandler.List)
		api.Get("/foods/{id}/portion", foodHandler.Portion)

		api.Group(func(opt chi.Router) {
			opt.Use(authMW.OptionalAuth)
			opt.Post("/foods/custom", foodHandler.CreateCustom)
			opt.Post("/chat", chatHandler.Chat)
		})

		api.Group(func(pr chi.Router) {
			pr.Use(authMW.RequireAuth)
			pr.Post("/meal-items", mealHandler.AddMealItem)
			pr.Get("/daily-logs", mealHandler.List)
			pr.Get("/daily-logs/summary", mealHandler.Summary)
			pr.Get("/dashboard", dashboardHandler.Get)
			pr.Get("/profile", profileHandler.Get)
			pr.Put("/profile/targets", profileHandler.UpdateTargets)
		})
	})
	return r
}

func healthz(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := db.PingContext(r.Context()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"status":"unavailable"}`))
			return
		}
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}
}
