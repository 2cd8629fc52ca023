package logger

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/lmittmann/tint"
)

type Options struct {
	// Level is one of debug, info, warn, error. Defaults to info.
	Level string
	// Format is "json" or "text". Text output is colored by tint.
	Format string
	Output io.Writer
}

var global *slog.Logger

func New(opts Options) *slog.Logger {
	out := opts.Output
	if out == nil {
		out = os.Stdout
	}
	level := ParseLevel(opts.Level)

	if strings.EqualFold(opts.Format, "json") {
		return slog.New(slog.NewJSONHandler(out, &slog.HandlerOptions{Level: level}))
	}
	return slog.New(tint.NewHandler(out, &tint.Options{
		Level:      level,
		TimeFormat: time.Kitchen,
	}))
}

func Init(opts Options) {
	global = New(opts)
	slog.SetDefault(global)
}

// Logger returns the process logger, or slog's default before Init.
func Logger() *slog.Logger {
	if global == nil {
		return slog.Default()
	}
	return global
}

func ParseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func emit(level slog.Level, action string, userID string, details map[string]interface{}, err error) {
	attrs := make([]slog.Attr, 0, len(details)+2)
	if userID != "" {
		attrs = append(attrs, slog.String("user_id", userID))
	}
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
	}
	for k, v := range details {
		attrs = append(attrs, slog.Any(k, v))
	}
	Logger().LogAttrs(context.Background(), level, action, attrs...)
}

func Info(action string, details map[string]interface{}) {
	emit(slog.LevelInfo, action, "", details, nil)
}

func InfoWithUser(userID string, action string, details map[string]interface{}) {
	emit(slog.LevelInfo, action, userID, details, nil)
}

func Warn(action string, details map[string]interface{}) {
	emit(slog.LevelWarn, action, "", details, nil)
}

func WarnWithUser(userID string, action string, details map[string]interface{}) {
	emit(slog.LevelWarn, action, userID, details, nil)
}

func Error(action string, err error, details map[string]interface{}) {
	emit(slog.LevelError, action, "", details, err)
}

func ErrorWithUser(userID string, action string, err error, details map[string]interface{}) {
	emit(slog.LevelError, action, userID, details, err)
}

// GetUserIDFromContext returns the authenticated user's id stored by the auth
// middleware, or "" for anonymous requests.
func GetUserIDFromContext(c *fiber.Ctx) string {
	if id, ok := c.Locals("userID").(string); ok {
		return id
	}
	return ""
}

var sensitiveFields = []string{"password", "password_confirmation", "token", "access_token", "refresh_token", "secret"}

func redactSensitiveFields(jsonMap map[string]interface{}) {
	for _, field := range sensitiveFields {
		if _, exists := jsonMap[field]; exists {
			jsonMap[field] = "[REDACTED]"
		}
	}
}

func GetRequestBodySummary(c *fiber.Ctx) string {
	body := c.Body()
	if len(body) == 0 {
		return "empty"
	}

	if len(body) > 1024 {
		return fmt.Sprintf("large (%d bytes)", len(body))
	}

	var jsonMap map[string]interface{}
	if err := json.Unmarshal(body, &jsonMap); err == nil {
		redactSensitiveFields(jsonMap)
		if jsonBytes, err := json.Marshal(jsonMap); err == nil {
			if len(jsonBytes) > 200 {
				return string(jsonBytes[:200]) + "..."
			}
			return string(jsonBytes)
		}
	}

	return fmt.Sprintf("binary (%d bytes)", len(body))
}

func GenerateRequestID() string {
	return uuid.New().String()
}
