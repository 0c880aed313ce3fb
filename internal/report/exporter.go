package report

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

// SheetName is the only sheet in an exported workbook.
const SheetName = "Attendance Report"

// ErrEmptyReport means there was nothing to export. Callers surface it as a
// warning; no file is produced.
var ErrEmptyReport = errors.New("no attendance records to export")

// ErrUnsafeFileName is returned by SaveTo for a name that would leave dir.
var ErrUnsafeFileName = errors.New("unsafe export file name")

// Exporter serializes tables into xlsx workbooks.
type Exporter struct {
	logger *zap.Logger
}

// NewExporter creates an Exporter.
func NewExporter(logger *zap.Logger) *Exporter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Exporter{logger: logger}
}

// Workbook builds the workbook for t. The caller closes it.
func (e *Exporter) Workbook(t Table) (*excelize.File, error) {
	if len(t.Rows) == 0 {
		return nil, ErrEmptyReport
	}

	f := excelize.NewFile()
	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	if err := e.fill(f, t); err != nil {
		_ = f.Close()
		return nil, err
	}
	return f, nil
}

func (e *Exporter) fill(f *excelize.File, t Table) error {
	header := make([]any, len(t.Header))
	for i, h := range t.Header {
		header[i] = h
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("header style: %w", err)
	}
	last, err := excelize.CoordinatesToCellName(len(t.Header), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(SheetName, "A1", last, bold); err != nil {
		return fmt.Errorf("apply header style: %w", err)
	}

	for i, row := range t.Rows {
		cells := make([]any, len(row))
		for j, v := range row {
			cells[j] = v
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(SheetName, cell, &cells); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}

	lastCol, _, err := excelize.SplitCellName(last)
	if err != nil {
		return err
	}
	return f.SetColWidth(SheetName, "A", lastCol, 18)
}

// WriteTo streams the workbook for t into w.
func (e *Exporter) WriteTo(w io.Writer, t Table) (int64, error) {
	f, err := e.Workbook(t)
	if err != nil {
		return 0, err
	}
	defer func() { _ = f.Close() }()

	n, err := f.WriteTo(w)
	if err != nil {
		return n, fmt.Errorf("write workbook: %w", err)
	}
	e.logger.Info("report exported", zap.Int("rows", len(t.Rows)), zap.String("format", string(t.Format)))
	return n, nil
}

// SaveTo writes the workbook into dir under t.FileName and returns the path.
func (e *Exporter) SaveTo(dir string, t Table) (string, error) {
	f, err := e.Workbook(t)
	if err != nil {
		return "", err
	}
	defer func() { _ = f.Close() }()

	name := t.FileName()
	if filepath.Base(name) != name {
		return "", fmt.Errorf("%w: %q", ErrUnsafeFileName, name)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create export dir: %w", err)
	}
	path := filepath.Join(dir, name)
	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("save workbook: %w", err)
	}
	e.logger.Info("report saved", zap.String("path", path), zap.Int("rows", len(t.Rows)))
	return path, nil
}
