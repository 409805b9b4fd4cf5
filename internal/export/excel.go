// Package export renders the ledger as a two-sheet xlsx report: every trade
// record on one sheet, per-trader statistics on the other. Labels and value
// translations match the zh-CN display strings of the web UI.
package export

import (
	"fmt"
	"time"

	"github.com/Jay666-max/shapan/internal/models"
	"github.com/Jay666-max/shapan/internal/stats"
	"github.com/xuri/excelize/v2"
)

const (
	SheetTrades = "交易记录"
	SheetStats  = "交易员统计"
)

var (
	tradeHeaders = []interface{}{"时间", "交易员", "方向", "开仓价", "平仓价", "数量", "剩余数量", "盈亏", "状态", "类型"}
	statsHeaders = []interface{}{"交易员", "总交易次数", "成功交易", "胜率", "总盈亏"}
)

// Filename returns the report filename for a download started at now.
func Filename(now time.Time) string {
	return fmt.Sprintf("火箭班沙盘pk交易记录_%s.xlsx", now.Format("20060102_150405"))
}

// Workbook builds the report from a ledger snapshot.
func Workbook(records []models.Record, traders []models.Trader) (*excelize.File, error) {
	f := excelize.NewFile()

	if err := f.SetSheetName("Sheet1", SheetTrades); err != nil {
		return nil, fmt.Errorf("failed to name trade sheet: %w", err)
	}
	if _, err := f.NewSheet(SheetStats); err != nil {
		return nil, fmt.Errorf("failed to create stats sheet: %w", err)
	}

	if err := writeTradeSheet(f, records, traders); err != nil {
		return nil, err
	}
	if err := writeStatsSheet(f, records, traders); err != nil {
		return nil, err
	}

	return f, nil
}

func writeTradeSheet(f *excelize.File, records []models.Record, traders []models.Trader) error {
	names := traderNames(traders)

	if err := f.SetSheetRow(SheetTrades, "A1", &tradeHeaders); err != nil {
		return fmt.Errorf("failed to write trade headers: %w", err)
	}

	for i, r := range records {
		var closePrice, profit interface{} = "-", "-"
		if r.ClosePrice != nil {
			closePrice = *r.ClosePrice
		}
		if r.Profit != nil {
			profit = *r.Profit
		}

		row := []interface{}{
			formatTimestamp(r.Timestamp),
			names.name(r.TraderID),
			directionLabel(r.Direction),
			r.OpenPrice,
			closePrice,
			r.Quantity,
			r.RemainingQuantity,
			profit,
			statusLabel(r.Status, r.RemainingQuantity),
			kindLabel(r),
		}

		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(SheetTrades, cell, &row); err != nil {
			return fmt.Errorf("failed to write trade row %d: %w", i+2, err)
		}
	}

	return styleAmounts(f, SheetTrades, len(records), "D", "E", "H")
}

func writeStatsSheet(f *excelize.File, records []models.Record, traders []models.Trader) error {
	if err := f.SetSheetRow(SheetStats, "A1", &statsHeaders); err != nil {
		return fmt.Errorf("failed to write stats headers: %w", err)
	}

	for i, trader := range traders {
		s := stats.ForTrader(records, trader.ID)
		row := []interface{}{
			trader.Name,
			s.TotalTrades,
			s.SuccessfulTrades,
			fmt.Sprintf("%.1f%%", s.WinRate),
			s.TotalProfit,
		}

		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(SheetStats, cell, &row); err != nil {
			return fmt.Errorf("failed to write stats row %d: %w", i+2, err)
		}
	}

	return styleAmounts(f, SheetStats, len(traders), "E")
}

// styleAmounts applies the two-fractional-digit display format to the given
// amount columns over all data rows.
func styleAmounts(f *excelize.File, sheet string, rows int, columns ...string) error {
	if rows == 0 {
		return nil
	}

	numFmt := "#,##0.00"
	style, err := f.NewStyle(&excelize.Style{CustomNumFmt: &numFmt})
	if err != nil {
		return fmt.Errorf("failed to create amount style: %w", err)
	}

	for _, col := range columns {
		top := fmt.Sprintf("%s2", col)
		bottom := fmt.Sprintf("%s%d", col, rows+1)
		if err := f.SetCellStyle(sheet, top, bottom, style); err != nil {
			return fmt.Errorf("failed to style %s column %s: %w", sheet, col, err)
		}
	}
	return nil
}

// traderNames resolves display names, falling back to 交易员<id> for record
// trader ids missing from the roster.
func traderNames(traders []models.Trader) fallbackNames {
	names := make(fallbackNames, len(traders))
	for _, t := range traders {
		names[t.ID] = t.Name
	}
	return names
}

type fallbackNames map[string]string

func (n fallbackNames) name(id string) string {
	if name, ok := n[id]; ok {
		return name
	}
	return "交易员" + id
}

func formatTimestamp(unixMilli int64) string {
	return time.UnixMilli(unixMilli).Format("2006/01/02 15:04:05")
}

func directionLabel(d models.Direction) string {
	if d == models.Long {
		return "做多"
	}
	return "做空"
}

func statusLabel(status models.Status, remaining int) string {
	if remaining == 0 {
		return "无持仓"
	}
	switch status {
	case models.StatusOpen:
		return "持仓中"
	case models.StatusPartiallyClosed:
		return "部分平仓"
	default:
		return "已平仓"
	}
}

func kindLabel(r models.Record) string {
	if r.Kind == models.KindCloseEvent {
		return "平仓记录"
	}
	return "开仓记录"
}
