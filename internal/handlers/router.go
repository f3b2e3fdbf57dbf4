package handlers

import (
	"database/sql"
	"net/http"

	"github.com/assettrack/assettrack/internal/audit"
	"github.com/assettrack/assettrack/internal/config"
	"github.com/assettrack/assettrack/internal/imaging"
	"github.com/assettrack/assettrack/internal/middleware"
	"github.com/assettrack/assettrack/internal/models"
	"github.com/assettrack/assettrack/internal/repo"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter wires the full HTTP surface. All /v1 routes except /v1/auth
// require a valid token; role checks sit on the mutating admin and
// manager routes.
func NewRouter(database *sql.DB, cfg config.Config) http.Handler {
	items := repo.NewItemRepo(database)
	locations := repo.NewLocationRepo(database)
	log := repo.NewAssignmentLog(database)
	audits := repo.NewAuditRepo(database)
	disposals := repo.NewDisposalRepo(database)
	users := repo.NewUserRepo(database)

	engine := &audit.Engine{DB: database, Items: items, Audits: audits, Log: log}

	authH := &AuthHandler{Users: users, Secret: []byte(cfg.JWTSecret), ExpireHours: cfg.JWTExpireHours}
	itemH := &ItemHandler{Items: items, Log: log}
	locationH := &LocationHandler{Locations: locations}
	moveH := &MoveHandler{Items: items, Locations: locations, Log: log}
	auditH := &AuditHandler{Engine: engine}
	disposalH := &DisposalHandler{Disposals: disposals}
	userH := &UserHandler{Users: users}
	exportH := &ExportHandler{Engine: engine, Items: items, Locations: locations, Log: log}
	importH := &ImportHandler{Items: items}
	photoH := &PhotoHandler{Items: items, Store: &imaging.Store{Dir: cfg.PhotoDir}}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(middleware.RequestLog)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Prometheus)
	r.Use(middleware.SecurityHeaders(cfg.TLSEnabled()))
	r.Use(middleware.CORS(cfg.CORSAllowedOrigins))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		if err := database.PingContext(r.Context()); err != nil {
			JSONError(w, "database unreachable", http.StatusServiceUnavailable)
			return
		}
		JSON(w, map[string]string{"status": "ok"}, http.StatusOK)
	})
	r.Method("GET", "/metrics", promhttp.Handler())

	fs := http.StripPrefix("/photos/", http.FileServer(http.Dir(cfg.PhotoDir)))
	r.Get("/photos/*", fs.ServeHTTP)

	r.Route("/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(middleware.AuthRateLimiter().Middleware)
			r.Use(middleware.MaxBytes(middleware.DefaultMaxBodyBytes))
			r.Post("/auth/login", authH.Login)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.JWT([]byte(cfg.JWTSecret)))

			r.Route("/items", func(r chi.Router) {
				r.With(middleware.MaxBytes(middleware.DefaultMaxBodyBytes)).Post("/", itemH.CreateItem)
				r.Get("/", itemH.ListItems)
				r.Get("/export", exportH.ExportItems)
				r.With(middleware.RequireRole(models.RoleManager)).Post("/import", importH.ImportItems)
				r.Get("/{id}", itemH.GetItem)
				r.With(middleware.MaxBytes(middleware.DefaultMaxBodyBytes)).Put("/{id}", itemH.UpdateItem)
				r.Delete("/{id}", itemH.DeleteItem)
				r.Get("/{id}/history", itemH.GetHistory)
				r.Get("/{id}/location", itemH.GetCurrentLocation)
				r.With(middleware.MaxBytes(middleware.DefaultMaxBodyBytes)).Post("/{id}/move", moveH.MoveItem)
				r.Post("/{id}/photo", photoH.UploadPhoto)
				r.With(middleware.RequireRole(models.RoleManager), middleware.MaxBytes(middleware.DefaultMaxBodyBytes)).
					Post("/{id}/dispose", disposalH.DisposeItem)
			})

			r.Route("/locations", func(r chi.Router) {
				r.With(middleware.MaxBytes(middleware.DefaultMaxBodyBytes)).Post("/", locationH.CreateLocation)
				r.Get("/", locationH.ListLocations)
				r.Get("/{id}", locationH.GetLocation)
				r.With(middleware.MaxBytes(middleware.DefaultMaxBodyBytes)).Put("/{id}", locationH.UpdateLocation)
				r.Delete("/{id}", locationH.DeleteLocation)
				r.Get("/{id}/items", locationH.GetItemsAt)
			})

			r.Route("/audits", func(r chi.Router) {
				r.With(middleware.MaxBytes(middleware.DefaultMaxBodyBytes)).Post("/", auditH.CreateAudit)
				r.Get("/", auditH.ListAudits)
				r.Get("/{id}", auditH.GetAudit)
				r.With(middleware.MaxBytes(middleware.DefaultMaxBodyBytes)).Post("/{id}/scan", auditH.ScanItem)
				r.With(middleware.RequireRole(models.RoleManager)).Post("/{id}/close", auditH.CloseAudit)
				r.Get("/{id}/report", auditH.GetReport)
				r.Get("/{id}/report.xlsx", exportH.ExportAuditReport)
			})

			r.Route("/disposals", func(r chi.Router) {
				r.Get("/", disposalH.ListDisposals)
				r.With(middleware.RequireRole(models.RoleManager), middleware.MaxBytes(middleware.DefaultMaxBodyBytes)).
					Post("/bulk", disposalH.BulkDispose)
				r.Get("/{id}", disposalH.GetDisposal)
			})

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole(models.RoleAdmin))
				r.With(middleware.MaxBytes(middleware.DefaultMaxBodyBytes)).Post("/auth/register", authH.Register)
				r.Route("/users", func(r chi.Router) {
					r.Get("/", userH.ListUsers)
					r.Get("/{id}", userH.GetUser)
					r.With(middleware.MaxBytes(middleware.DefaultMaxBodyBytes)).Put("/{id}/role", userH.SetRole)
					r.Delete("/{id}", userH.DeactivateUser)
				})
			})
		})
	})

	return r
}
