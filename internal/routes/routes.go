package routes

import (
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"gear-guard/internal/controllers"
	"gear-guard/internal/listeners"
	"gear-guard/internal/repositories"
	"gear-guard/internal/services"
	"gear-guard/pkg/config"
	"gear-guard/pkg/eventbus"
	"gear-guard/pkg/metrics"
	"gear-guard/pkg/middleware"
	"gear-guard/pkg/service"
	"gear-guard/pkg/utils"
	"gear-guard/pkg/websocket"
)

// Repositories собраны в одну структуру, чтобы тесты могли подменить любой из них.
type Repositories struct {
	Users     repositories.UserRepositoryInterface
	Teams     repositories.TeamRepositoryInterface
	Equipment repositories.EquipmentRepositoryInterface
	Requests  repositories.MaintenanceRequestRepositoryInterface
	Dashboard repositories.DashboardRepositoryInterface
	Cache     repositories.CacheRepositoryInterface
}

func NewRepositories(dbConn *pgxpool.Pool, cache repositories.CacheRepositoryInterface, logger *zap.Logger) *Repositories {
	return &Repositories{
		Users:     repositories.NewUserRepository(dbConn, logger),
		Teams:     repositories.NewTeamRepository(dbConn, logger),
		Equipment: repositories.NewEquipmentRepository(dbConn, logger),
		Requests:  repositories.NewMaintenanceRequestRepository(dbConn, logger),
		Dashboard: repositories.NewDashboardRepository(dbConn, logger),
		Cache:     cache,
	}
}

type Deps struct {
	Repos    *Repositories
	JWT      service.JWTService
	Bus      *eventbus.Bus
	Hub      *websocket.Hub
	Notifier services.NotificationServiceInterface
	Metrics  *metrics.Metrics
	Config   *config.Config
	Logger   *zap.Logger
}

func InitRouter(e *echo.Echo, d Deps) {
	d.Logger.Info("InitRouter: Начало создания маршрутов")

	repos := d.Repos
	timeout := d.Config.Server.RequestTimeout
	authMW := middleware.NewAuthMiddleware(d.JWT, repos.Users, d.Logger)

	// --- 1. СЕРВИСЫ ---
	requestService := services.NewMaintenanceRequestService(repos.Requests, repos.Equipment, repos.Users, d.Bus, d.Logger)
	durationService := services.NewDurationLogger(repos.Requests, d.Bus, d.Logger)
	equipmentService := services.NewEquipmentService(repos.Equipment, repos.Requests, d.Bus, d.Logger)
	importService := services.NewEquipImportService(repos.Equipment, repos.Teams, d.Logger)
	teamService := services.NewTeamService(repos.Teams, repos.Users, repos.Equipment, d.Logger)
	dashboardService := services.NewDashboardService(repos.Dashboard, repos.Teams, d.Logger)
	authService := services.NewAuthService(repos.Users, repos.Teams, repos.Cache, d.JWT, d.Logger)
	reportService := services.NewReportService(requestService, d.Logger)
	statsCache := repositories.NewDashboardStatsCache(repos.Cache, d.Config.Dashboard.CacheTTL)

	// --- 2. СЛУШАТЕЛИ СОБЫТИЙ ---
	listeners.NewNotificationListener(d.Notifier, repos.Users, d.Logger).Register(d.Bus)
	listeners.NewCacheListener(statsCache, d.Logger).Register(d.Bus)
	listeners.NewWebSocketListener(d.Hub).Register(d.Bus)

	// --- 3. КОНТРОЛЛЕРЫ ---
	authCtrl := controllers.NewAuthController(authService, timeout, d.Logger)
	requestCtrl := controllers.NewMaintenanceRequestController(requestService, durationService, d.Metrics, timeout, d.Logger)
	reportCtrl := controllers.NewReportController(reportService, timeout, d.Logger)
	equipmentCtrl := controllers.NewEquipmentController(equipmentService, importService, timeout, d.Logger)
	teamCtrl := controllers.NewTeamController(teamService, timeout, d.Logger)
	dashboardCtrl := controllers.NewDashboardController(dashboardService, statsCache, timeout, d.Logger)
	wsCtrl := controllers.NewWebSocketController(d.Hub, authMW, d.Config.Server.CORSOrigins, d.Logger)

	// --- 4. РОУТЕРЫ ---
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, utils.HTTPResponse{Status: true, Message: "ok"})
	})
	e.GET("/metrics", echo.WrapHandler(d.Metrics.Handler()))
	e.GET("/ws", wsCtrl.ServeWs)

	api := e.Group("/api")
	loginLimiter := middleware.NewIPRateLimiter(rate.Limit(d.Config.RateLimit.PerSecond), d.Config.RateLimit.Burst)
	runAuthRouter(api, authCtrl, authMW, middleware.RateLimit(loginLimiter, d.Metrics))

	secureGroup := api.Group("", authMW.Auth)
	runMaintenanceRequestRouter(secureGroup, requestCtrl, reportCtrl)
	runEquipmentRouter(secureGroup, equipmentCtrl)
	runTeamRouter(secureGroup, teamCtrl)
	runDashboardRouter(secureGroup, dashboardCtrl)

	d.Logger.Info("INIT_ROUTER: Создание маршрутов завершено")
}
