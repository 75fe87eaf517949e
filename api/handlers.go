package api

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/papercomputeco/measures/pkg/decoder"
	"github.com/papercomputeco/measures/pkg/history"
	"github.com/papercomputeco/measures/pkg/storage"
)

// ErrInvalidSequence is the client-facing message for input that fails validation.
const ErrInvalidSequence = "Invalid sequence"

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// ConvertResponse is the body of a successful conversion.
type ConvertResponse struct {
	Sequence  string `json:"sequence"`
	Processed []int  `json:"processed"`
}

// HistoryResponse lists the audit log, newest first.
type HistoryResponse struct {
	History []*storage.Record `json:"history"`
}

// SecureHistoryResponse lists the encrypted-at-rest history, oldest first.
type SecureHistoryResponse struct {
	SecureHistory []history.Entry `json:"secure_history"`
}

// handlePing returns a simple health check response.
func (s *Server) handlePing(c *fiber.Ctx) error {
	return c.JSON("pong")
}

// handleConvertMeasurements validates and decodes the "input" query
// parameter. A successful conversion is recorded in the audit log, appended
// to the secure history and published as an event.
func (s *Server) handleConvertMeasurements(c *fiber.Ctx) error {
	input := c.Query("input")

	res, err := s.converter.Convert(c.Context(), input)
	if err != nil {
		var verr *decoder.ValidationError
		var derr *decoder.DecodeError
		switch {
		case errors.As(err, &verr):
			return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: ErrInvalidSequence})
		case errors.As(err, &derr):
			return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: err.Error()})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "failed to record conversion"})
		}
	}

	return c.JSON(ConvertResponse{
		Sequence:  res.Sequence,
		Processed: res.Processed,
	})
}

// handleHistory returns the audit log, newest first.
func (s *Server) handleHistory(c *fiber.Ctx) error {
	records, err := s.converter.AuditLog(c.Context())
	if err != nil {
		s.logger.Error("failed to list history", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "failed to list history"})
	}

	return c.JSON(HistoryResponse{History: records})
}

// handleSecureHistory returns a snapshot of the in-memory secure history.
func (s *Server) handleSecureHistory(c *fiber.Ctx) error {
	return c.JSON(SecureHistoryResponse{SecureHistory: s.converter.SecureHistory()})
}
