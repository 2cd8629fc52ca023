package handlers

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/billsplit/backend/internal/apperr"
	"github.com/billsplit/backend/pkg/logger"
	"github.com/billsplit/backend/pkg/utils"
)

// responder writes application errors into the response envelope. Causes of
// internal errors are included only when debug is set.
type responder struct {
	debug bool
}

func (r responder) fail(c *fiber.Ctx, err error) error {
	appErr := apperr.As(err)

	var cause error
	if appErr.Kind == apperr.KindInternal {
		logger.ErrorWithUser(logger.GetUserIDFromContext(c), "request_failed", err, map[string]interface{}{
			"method": c.Method(),
			"path":   c.Path(),
		})
		if r.debug {
			cause = appErr.Err
		}
	}

	return utils.ErrorWithDetails(c, appErr.Status(), appErr.Message, appErr.Fields, cause)
}

// ErrorHandler renders errors that escape handlers: unmatched routes, wrong
// methods and recovered panics.
func ErrorHandler(debug bool) fiber.ErrorHandler {
	r := responder{debug: debug}
	return func(c *fiber.Ctx, err error) error {
		var fe *fiber.Error
		if errors.As(err, &fe) {
			switch fe.Code {
			case fiber.StatusNotFound:
				return utils.Error(c, fiber.StatusNotFound, "Endpoint not found. The requested API route does not exist.")
			case fiber.StatusMethodNotAllowed:
				msg := fmt.Sprintf("Method %s is not allowed for this route. Allowed methods: %s",
					c.Method(), allowedMethods(c.App(), c.Path()))
				return utils.Error(c, fiber.StatusMethodNotAllowed, msg)
			default:
				return utils.Error(c, fe.Code, fe.Message)
			}
		}
		return r.fail(c, err)
	}
}

// allowedMethods lists the methods registered for routes matching path.
func allowedMethods(app *fiber.App, path string) string {
	seen := map[string]bool{}
	var methods []string
	for _, route := range app.GetRoutes(true) {
		if seen[route.Method] || route.Method == fiber.MethodHead {
			continue
		}
		if routeMatches(route.Path, path) {
			seen[route.Method] = true
			methods = append(methods, route.Method)
		}
	}
	if len(methods) == 0 {
		return "Unknown"
	}
	return strings.Join(methods, ", ")
}

func routeMatches(pattern, path string) bool {
	ps := strings.Split(strings.Trim(pattern, "/"), "/")
	xs := strings.Split(strings.Trim(path, "/"), "/")
	if len(ps) != len(xs) {
		return false
	}
	for i := range ps {
		if strings.HasPrefix(ps[i], ":") {
			continue
		}
		if ps[i] != xs[i] {
			return false
		}
	}
	return true
}
