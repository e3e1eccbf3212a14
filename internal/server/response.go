package server

import (
	"github.com/gofiber/fiber/v3"
)

// jsonError returns an error response with the given HTTP status code.
func jsonError(c fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"error": message,
	})
}

// jsonFailure reports a failed pipeline run with its details and log output.
func jsonFailure(c fiber.Ctx, err error, output string) error {
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error":   "Processing failed",
		"details": err.Error(),
		"output":  output,
	})
}
