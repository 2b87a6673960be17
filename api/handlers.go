package api

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/amberhq/amber/pkg/record"
	"github.com/amberhq/amber/pkg/storage"
	"github.com/amberhq/amber/pkg/worker"
)

// ErrorResponse is the JSON body returned on request failures.
type ErrorResponse struct {
	Error string `json:"error"`
}

// CaptureRequest is the body of POST /capture.
type CaptureRequest struct {
	// Text is the source text to scan.
	Text string `json:"text"`

	// Indicators are the patterns to anchor context windows on.
	Indicators []string `json:"indicators"`

	// SourceFile names the origin file, if any.
	SourceFile string `json:"source_file,omitempty"`

	// SessionID names the origin session, if any.
	SessionID string `json:"session_id,omitempty"`

	// SourceDate is the origin timestamp (RFC 3339), if any.
	SourceDate string `json:"source_date,omitempty"`
}

// CaptureResponse is the body of a synchronous POST /capture.
type CaptureResponse struct {
	Count   int                     `json:"count"`
	Records []*record.ContextRecord `json:"records"`
}

// BridgeRequest is the body of POST /bridges.
type BridgeRequest struct {
	FromSessionID string `json:"from_session_id"`
	ToSessionID   string `json:"to_session_id"`
}

// handlePing returns a simple health check response.
func (s *Server) handlePing(c *fiber.Ctx) error {
	return c.JSON("pong")
}

// handleCapture extracts context records from the posted text. With
// ?async=true the job is queued on the worker pool and the handler returns
// 202 immediately; otherwise extraction runs inline and the records are
// returned.
func (s *Server) handleCapture(c *fiber.Ctx) error {
	var req CaptureRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "invalid request body"})
	}

	if strings.TrimSpace(req.Text) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "text is required"})
	}
	if len(req.Indicators) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "at least one indicator is required"})
	}

	source := record.SourceInfo{
		File:      req.SourceFile,
		SessionID: req.SessionID,
	}
	if req.SourceDate != "" {
		date, err := time.Parse(time.RFC3339, req.SourceDate)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "source_date must be RFC 3339"})
		}
		source.Date = date
	}

	if c.QueryBool("async") {
		if s.pool == nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(ErrorResponse{Error: "async capture unavailable"})
		}

		ok := s.pool.Enqueue(worker.Job{
			Text:       req.Text,
			Indicators: req.Indicators,
			Source:     source,
		})
		if !ok {
			return c.Status(fiber.StatusServiceUnavailable).JSON(ErrorResponse{Error: "capture queue full"})
		}

		return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"status": "queued"})
	}

	records, err := s.extractor.Extract(c.Context(), req.Text, req.Indicators, source)
	if err != nil {
		s.logger.Error("capture failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "capture failed"})
	}

	return c.JSON(CaptureResponse{
		Count:   len(records),
		Records: records,
	})
}

// handleGetRecord returns a single context record by id.
func (s *Server) handleGetRecord(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "id parameter required"})
	}

	rec, err := s.store.Retrieve(c.Context(), id)
	if err != nil {
		s.logger.Error("retrieve failed", zap.String("id", id), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "retrieve failed"})
	}
	if rec == nil {
		return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{Error: "record not found"})
	}

	return c.JSON(rec)
}

// handleDeleteRecord removes a record from every tier.
func (s *Server) handleDeleteRecord(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "id parameter required"})
	}

	if err := s.store.Delete(c.Context(), id); err != nil {
		s.logger.Error("delete failed", zap.String("id", id), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "delete failed"})
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// handleSearch runs a semantic search (with text fallback) over stored
// records. Query params: q (required), limit, tags (comma-separated).
func (s *Server) handleSearch(c *fiber.Ctx) error {
	query := c.Query("q")
	if query == "" {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "q parameter required"})
	}

	limit := 10
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "limit must be a positive integer"})
		}
		limit = parsed
	}

	var tags []string
	if raw := c.Query("tags"); raw != "" {
		for _, tag := range strings.Split(raw, ",") {
			if tag = strings.TrimSpace(tag); tag != "" {
				tags = append(tags, tag)
			}
		}
	}

	records, err := s.store.Search(c.Context(), query, limit, tags)
	if err != nil {
		s.logger.Error("search failed", zap.String("query", query), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "search failed"})
	}

	return c.JSON(fiber.Map{
		"count":   len(records),
		"records": records,
	})
}

// handleCreateBridge builds and persists a context bridge between two
// sessions.
func (s *Server) handleCreateBridge(c *fiber.Ctx) error {
	var req BridgeRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "invalid request body"})
	}

	if req.FromSessionID == "" || req.ToSessionID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "from_session_id and to_session_id are required"})
	}

	bridgeRec, err := s.bridger.Bridge(c.Context(), req.FromSessionID, req.ToSessionID)
	if err != nil {
		s.logger.Error("bridge failed",
			zap.String("from", req.FromSessionID),
			zap.String("to", req.ToSessionID),
			zap.Error(err),
		)
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "bridge failed"})
	}

	return c.Status(fiber.StatusCreated).JSON(bridgeRec)
}

// handleGetBridge returns a bridge record by id.
func (s *Server) handleGetBridge(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "id parameter required"})
	}

	bridgeRec, err := s.store.GetBridge(c.Context(), id)
	if err != nil {
		var notFound storage.ErrNotFound
		if errors.As(err, &notFound) {
			return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{Error: "bridge not found"})
		}
		s.logger.Error("bridge lookup failed", zap.String("id", id), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "bridge lookup failed"})
	}

	return c.JSON(bridgeRec)
}

// handleStats returns row counts from the durable store.
func (s *Server) handleStats(c *fiber.Ctx) error {
	stats, err := s.store.Stats(c.Context())
	if err != nil {
		s.logger.Error("stats failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "stats failed"})
	}

	return c.JSON(stats)
}
