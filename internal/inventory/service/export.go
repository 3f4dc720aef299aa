package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"strconv"
	"time"

	"github.com/inelac/inventory-backend/internal/inventory/repository"
	"github.com/inelac/inventory-backend/pkg/logger"
)

// ExportService renders ledger ranges as CSV for download.
type ExportService struct {
	ledger *repository.LedgerRepository
	logger *logger.Logger
}

// NewExportService creates a new export service
func NewExportService(ledger *repository.LedgerRepository, log *logger.Logger) *ExportService {
	return &ExportService{ledger: ledger, logger: log}
}

var exportHeader = []string{
	"date", "item_code", "description", "lot_or_part_number",
	"movement_kind", "quantity", "physical_existence_after",
	"actor_id", "warehouse",
}

// LedgerCSV returns the ledger entries between start and end rendered as
// CSV, oldest first. The range is widened to whole days.
func (s *ExportService) LedgerCSV(ctx context.Context, start, end time.Time) ([]byte, error) {
	entries, err := s.ledger.QueryRange(ctx, start, end)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(exportHeader); err != nil {
		return nil, err
	}

	for _, e := range entries {
		record := []string{
			e.CreatedAt.Format(time.RFC3339),
			strconv.Itoa(e.ItemCode),
			e.Description,
			e.LotOrPartNumber,
			e.MovementKind,
			strconv.Itoa(e.Quantity),
			strconv.Itoa(e.PhysicalExistenceAfter),
			e.ActorID,
			e.WarehouseLabel,
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}

	s.logger.Info().
		Int("entries", len(entries)).
		Time("start", start).
		Time("end", end).
		Msg("ledger exported")

	return buf.Bytes(), nil
}
