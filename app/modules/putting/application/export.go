package puttingservice

import (
	"context"
	"fmt"

	leaguedomain "github.com/Black-And-White-Club/frolf-club/app/modules/league/domain"
	puttingdomain "github.com/Black-And-White-Club/frolf-club/app/modules/putting/domain"
	"github.com/xuri/excelize/v2"
)

const XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

const standingsSheet = "Standings"

// ExportXLSX renders the current standings as a workbook.
func (s *PuttingService) ExportXLSX(ctx context.Context) ([]byte, error) {
	return run(s, ctx, "ExportXLSX", "", func(ctx context.Context) ([]byte, error) {
		l, err := s.store.Read(ctx)
		if err != nil {
			return nil, err
		}
		return BuildStandingsWorkbook(l.Putting)
	})
}

// BuildStandingsWorkbook writes one row per player: rank, name, pool, each round
// total, adjustment and cumulative total.
func BuildStandingsWorkbook(p leaguedomain.PuttingLeague) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", standingsSheet); err != nil {
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}

	header := []any{"Rank", "Player", "Pool"}
	for round := 1; round <= p.Settings.CurrentRound; round++ {
		header = append(header, fmt.Sprintf("Round %d", round))
	}
	header = append(header, "Adjustment", "Total")
	if err := writeRow(f, 1, header); err != nil {
		return nil, err
	}

	for i, st := range puttingdomain.Leaderboard(p, "") {
		row := []any{st.Rank, st.Name, string(st.Pool)}
		for _, t := range st.RoundTotals {
			row = append(row, t)
		}
		row = append(row, st.Adjustment, st.Total)
		if err := writeRow(f, i+2, row); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func writeRow(f *excelize.File, row int, values []any) error {
	for col, v := range values {
		cell, err := excelize.CoordinatesToCellName(col+1, row)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(standingsSheet, cell, v); err != nil {
			return fmt.Errorf("failed to set %s: %w", cell, err)
		}
	}
	return nil
}
