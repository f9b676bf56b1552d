package utils

import (
	apperrors "oruswallet/internal/errors"
	"oruswallet/internal/logger"

	"github.com/gofiber/fiber/v2"
)

// Respond sends a JSON response with the specified status code.
func Respond(c *fiber.Ctx, status int, data interface{}) error {
	return c.Status(status).JSON(data)
}

// Success sends a successful JSON response.
func Success(c *fiber.Ctx, data interface{}) error {
	return Respond(c, fiber.StatusOK, data)
}

// Created sends a JSON response with status 201.
func Created(c *fiber.Ctx, data interface{}) error {
	return Respond(c, fiber.StatusCreated, data)
}

// Message sends {"message": msg} with the given status.
func Message(c *fiber.Ctx, status int, msg string) error {
	return Respond(c, status, fiber.Map{"message": msg})
}

// BadRequest sends a JSON error response with status 400.
func BadRequest(c *fiber.Ctx, message string) error {
	return Message(c, fiber.StatusBadRequest, message)
}

// Unauthorized sends a JSON error response with status 401.
func Unauthorized(c *fiber.Ctx, message string) error {
	return Message(c, fiber.StatusUnauthorized, message)
}

// StatusFor maps a domain error kind to an HTTP status.
func StatusFor(err error) int {
	switch apperrors.KindOf(err) {
	case apperrors.KindValidation:
		return fiber.StatusBadRequest
	case apperrors.KindAuthorization:
		return fiber.StatusUnauthorized
	case apperrors.KindInsufficientFunds:
		return fiber.StatusPaymentRequired
	case apperrors.KindNotFound:
		return fiber.StatusNotFound
	case apperrors.KindConflict, apperrors.KindInvalidStateTransition:
		return fiber.StatusConflict
	case apperrors.KindPartialFailureReversed:
		return fiber.StatusOK
	default:
		return fiber.StatusInternalServerError
	}
}

// Error writes err as {"message": ...}. Internal errors are logged and
// never echoed to the client.
func Error(c *fiber.Ctx, err error) error {
	status := StatusFor(err)
	if status == fiber.StatusInternalServerError {
		logger.WithField("path", c.Path()).Errorf("request failed: %v", err)
	}
	return Message(c, status, apperrors.Message(err))
}
