package report

import (
	"context"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"factory-planner/internal/storage"
)

type Storage interface {
	GetScheduleBlocks(ctx context.Context, orderStatus string) ([]*storage.ScheduleBlock, error)
}

type Service struct {
	storage Storage
}

func New(storage Storage) *Service {
	return &Service{storage: storage}
}

// GenerateTimeline renders the in-production schedule as an xlsx sheet:
// one row per execution, grouped by order, with both the scheduled and
// the actual window.
func (s *Service) GenerateTimeline(ctx context.Context) ([]byte, error) {
	const op = "service.report.GenerateTimeline"

	blocks, err := s.storage.GetScheduleBlocks(ctx, storage.StatusInProduction)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := "Production timeline"
	f.SetSheetName("Sheet1", sheet)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Bold: true},
		Fill:   excelize.Fill{Type: "pattern", Color: []string{"E0E0E0"}, Pattern: 1},
		Border: []excelize.Border{{Type: "bottom", Color: "000000", Style: 2}},
	})

	headers := []string{"Order", "Model", "Step", "Machine", "Semifinished",
		"Scheduled start", "Scheduled end", "Actual start", "Actual end", "Assignee"}

	for i, name := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, name)
	}

	lastCol, _ := excelize.CoordinatesToCellName(len(headers), 1)
	f.SetCellStyle(sheet, "A1", lastCol, headerStyle)

	for i, b := range blocks {
		row := i + 2
		assignee := ""
		if b.AssigneeName != nil {
			assignee = *b.AssigneeName
		}

		values := []interface{}{
			b.OrderID,
			b.ModelName,
			b.StepIndex,
			b.MachineName,
			b.SemifinishedName,
			b.ScheduledStart.Format(time.DateOnly),
			b.ScheduledEnd.Format(time.DateOnly),
			b.ActualStart.Format(time.DateOnly),
			b.ActualEnd.Format(time.DateOnly),
			assignee,
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			f.SetCellValue(sheet, cell, v)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("%s: write buffer: %w", op, err)
	}

	return buf.Bytes(), nil
}
