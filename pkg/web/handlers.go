package web

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	"github.com/teslashibe/go-focus/pkg/attention"
	"github.com/teslashibe/go-focus/pkg/hub"
)

func (s *Server) handleStatus(c *fiber.Ctx) error {
	s.mu.RLock()
	status := s.status
	s.mu.RUnlock()
	return c.JSON(status)
}

func (s *Server) handleHistory(c *fiber.Ctx) error {
	s.mu.RLock()
	history := make([]float64, len(s.history))
	copy(history, s.history)
	s.mu.RUnlock()
	return c.JSON(fiber.Map{"history": history})
}

// handleRecords returns emitted records, oldest first. ?limit=N keeps the
// newest N.
func (s *Server) handleRecords(c *fiber.Ctx) error {
	s.mu.RLock()
	records := make([]attention.Record, len(s.records))
	copy(records, s.records)
	s.mu.RUnlock()

	if limit := c.QueryInt("limit", 0); limit > 0 && limit < len(records) {
		records = records[len(records)-limit:]
	}
	return c.JSON(records)
}

func (s *Server) handleWS(h *hub.Hub) func(*websocket.Conn) {
	return func(conn *websocket.Conn) {
		hub.NewClient(h, conn).Run()
	}
}
