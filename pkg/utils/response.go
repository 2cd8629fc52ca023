package utils

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
)

func requestInfo(c *fiber.Ctx) fiber.Map {
	return fiber.Map{
		"ip":     c.IP(),
		"method": c.Method(),
		"url":    c.BaseURL() + c.OriginalURL(),
	}
}

func Success(c *fiber.Ctx, status int, message string, data interface{}) error {
	return c.Status(status).JSON(fiber.Map{
		"status":     true,
		"statusCode": status,
		"request":    requestInfo(c),
		"message":    message,
		"data":       data,
	})
}

func Created(c *fiber.Ctx, message string, data interface{}) error {
	return Success(c, fiber.StatusCreated, message, data)
}

func Error(c *fiber.Ctx, status int, message string) error {
	return ErrorWithDetails(c, status, message, nil, nil)
}

// ErrorWithDetails writes an error envelope. Field errors go under "errors"
// when non-empty; cause is rendered under "debug" only when non-nil.
func ErrorWithDetails(c *fiber.Ctx, status int, message string, fields map[string][]string, cause error) error {
	body := fiber.Map{
		"status":     false,
		"statusCode": status,
		"request":    requestInfo(c),
		"message":    message,
	}
	if len(fields) > 0 {
		body["errors"] = fields
	}
	if cause != nil {
		body["debug"] = fiber.Map{
			"exception": fmt.Sprintf("%T", cause),
			"error":     cause.Error(),
		}
	}
	return c.Status(status).JSON(body)
}
