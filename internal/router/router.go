package router

import (
	"strings"
	"time"

	"building-backend/internal/admin"
	"building-backend/internal/apierror"
	"building-backend/internal/audit"
	"building-backend/internal/auth"
	"building-backend/internal/chat"
	"building-backend/internal/config"
	"building-backend/internal/logging"
	"building-backend/internal/models"
	"building-backend/internal/notify"
	"building-backend/internal/payments"
	"building-backend/internal/units"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type Deps struct {
	Config   *config.Config
	DB       *gorm.DB
	Issuer   *auth.TokenIssuer
	Notifier notify.Publisher
	Log      *logrus.Logger
}

func New(d Deps) *fiber.App {
	if d.Notifier == nil {
		d.Notifier = notify.Nop{}
	}

	app := fiber.New(fiber.Config{
		AppName:      "building-backend",
		ErrorHandler: apierror.Handler(d.Log),
	})

	app.Use(recover.New())
	app.Use(requestid.New(requestid.Config{Generator: uuid.NewString}))
	app.Use(logging.Middleware(d.Log, auth.CurrentUserID))
	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(d.Config.AllowedOrigins(), ","),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET,POST,PATCH,OPTIONS",
	}))

	api := app.Group("/api")

	// Public
	api.Get("/health", healthHandler(d.DB))
	api.Post("/auth/login", limiter.New(limiter.Config{
		Max:        d.Config.LoginRateLimit,
		Expiration: time.Minute,
		LimitReached: func(c *fiber.Ctx) error {
			return fiber.NewError(fiber.StatusTooManyRequests, "too many login attempts")
		},
	}), auth.LoginHandler(d.DB, d.Issuer))

	// Protected
	protected := api.Group("", auth.JWTMiddleware(d.Issuer))

	superAdmin := auth.RequireRole(models.RoleSuperAdmin)
	buildingAdmin := auth.RequireRole(models.RoleBuildingAdmin)
	anyAdmin := auth.RequireRole(models.RoleSuperAdmin, models.RoleBuildingAdmin)

	protected.Get("/auth/me", auth.MeHandler(d.DB))

	// Accounts
	protected.Post("/admins/create", superAdmin, admin.CreateBuildingAdminHandler(d.DB, d.Log))
	protected.Post("/residents/create", buildingAdmin, admin.CreateResidentHandler(d.DB, d.Log))

	// Units
	protected.Get("/units", units.ListUnitsHandler(d.DB))
	protected.Post("/units", buildingAdmin, units.CreateUnitHandler(d.DB))
	protected.Get("/units/:id", units.GetUnitHandler(d.DB))
	protected.Patch("/units/:id", buildingAdmin, units.UpdateUnitHandler(d.DB))
	protected.Get("/units/:id/debt", units.UnitDebtHandler(d.DB))

	// Payments
	protected.Get("/payments", payments.ListPaymentsHandler(d.DB))
	protected.Post("/payments", buildingAdmin, payments.CreatePaymentHandler(d.DB, d.Notifier, d.Log))
	protected.Patch("/payments/:id/status", buildingAdmin, payments.UpdatePaymentStatusHandler(d.DB, d.Notifier, d.Log))

	// Chat
	protected.Get("/chats/:unitId/messages", chat.ListMessagesHandler(d.DB))
	protected.Post("/chats/:unitId/messages", chat.SendMessageHandler(d.DB, d.Notifier, d.Log))

	// Audit
	protected.Get("/audit-logs", anyAdmin, audit.ListAuditLogsHandler(d.DB))

	return app
}

// GET /api/health
func healthHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.PingContext(c.Context())
		}
		if err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "unavailable"})
		}
		return c.JSON(fiber.Map{"status": "ok"})
	}
}
