package datamanager

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"
	"gopkg.in/yaml.v3"
)

const recordSheet = "排便记录"

var xlsxHeaders = []string{"开始时间", "结束时间", "时长(秒)", "颜色", "状态", "形状", "分量", "备注"}

// ExportXLSX 把当前记录写成一张工作表，时间按 loc 格式化。
func (m *Manager) ExportXLSX(w io.Writer, loc *time.Location) error {
	if loc == nil {
		loc = time.Local
	}
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(recordSheet)
	if err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("drop default sheet: %w", err)
	}

	for i, h := range xlsxHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(recordSheet, cell, h)
	}
	for idx, r := range m.store.Records() {
		row := []any{
			time.UnixMilli(r.StartTime).In(loc).Format("2006-01-02 15:04:05"),
			time.UnixMilli(r.EndTime).In(loc).Format("2006-01-02 15:04:05"),
			r.Duration,
			string(r.Color),
			string(r.Status),
			string(r.Shape),
			string(r.Amount),
			r.Note,
		}
		cell, _ := excelize.CoordinatesToCellName(1, idx+2)
		if err := f.SetSheetRow(recordSheet, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", idx+2, err)
		}
	}

	f.SetColWidth(recordSheet, "A", "B", 20)
	f.SetColWidth(recordSheet, "C", "G", 10)
	f.SetColWidth(recordSheet, "H", "H", 30)

	return f.Write(w)
}

// ExportYAML 以 YAML 输出与 Export 相同内容的快照。
func (m *Manager) ExportYAML(ctx context.Context, w io.Writer) error {
	data, err := m.Export(ctx)
	if err != nil {
		return err
	}
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("decode snapshot: %w", err)
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode yaml: %w", err)
	}
	return enc.Close()
}
