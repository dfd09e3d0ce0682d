package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"building-backend/internal/config"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/sirupsen/logrus"
)

const serviceName = "building-backend"

// New builds the process logger. Unknown levels fall back to info.
func New(cfg config.LogConfig, out io.Writer) *logrus.Logger {
	logger := logrus.New()
	if out == nil {
		out = os.Stdout
	}
	logger.SetOutput(out)

	level, err := logrus.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil {
		logger.Warnf("invalid log level %q, defaulting to info", cfg.Level)
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	switch strings.ToLower(cfg.Format) {
	case "json":
		logger.SetFormatter(&logrus.JSONFormatter{})
	default:
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	logger.AddHook(&serviceHook{})
	return logger
}

type serviceHook struct{}

func (h *serviceHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

func (h *serviceHook) Fire(entry *logrus.Entry) error {
	if _, ok := entry.Data["service"]; !ok {
		entry.Data["service"] = serviceName
	}
	return nil
}

// UserIDFunc lets the request logger attach the authenticated user without
// importing the auth package.
type UserIDFunc func(c *fiber.Ctx) (uint, bool)

// Middleware logs one entry per request. It must run after the requestid
// middleware, and it hands handler errors to the app's ErrorHandler itself.
func Middleware(logger *logrus.Logger, userID UserIDFunc) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		// Render errors here so the logged status is the one the client gets.
		if err := c.Next(); err != nil {
			if herr := c.App().ErrorHandler(c, err); herr != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}
		status := c.Response().StatusCode()

		fields := logrus.Fields{
			"request_id": c.Locals(requestid.ConfigDefault.ContextKey),
			"method":     c.Method(),
			"path":       c.Path(),
			"status":     status,
			"latency_ms": time.Since(start).Milliseconds(),
			"ip":         c.IP(),
		}
		if userID != nil {
			if id, ok := userID(c); ok {
				fields["user_id"] = id
			}
		}

		entry := logger.WithFields(fields)
		switch {
		case status >= fiber.StatusInternalServerError:
			entry.Error("request failed")
		case status >= fiber.StatusBadRequest:
			entry.Warn("request rejected")
		default:
			entry.Info("request handled")
		}

		return nil
	}
}
