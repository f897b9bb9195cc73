package api

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/papercomputeco/relay/pkg/journal"
)

const defaultJournalLimit = 50

// handleJournal returns the most recent proxied calls, newest first.
func (s *Server) handleJournal(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", defaultJournalLimit)
	if limit <= 0 {
		limit = defaultJournalLimit
	}

	entries, err := s.journal.Recent(c.UserContext(), limit)
	if err != nil {
		s.logger.Error("failed to read journal", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "failed to read journal", Kind: "journal"})
	}
	if entries == nil {
		entries = []*journal.Entry{}
	}

	return c.JSON(map[string]any{
		"count":   len(entries),
		"entries": entries,
	})
}
