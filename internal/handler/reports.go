package handler

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"rfid-attendance/internal/attendance"
	"rfid-attendance/internal/auth"
	"rfid-attendance/internal/report"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// reportParams is the query string shared by every report route.
type reportParams struct {
	Type   string `form:"type"`
	Start  string `form:"start"`
	End    string `form:"end"`
	UserID string `form:"userId"`
	Format string `form:"format"`
}

// table aggregates the log for the request's range and builds the rows.
func (h *Handler) table(c *gin.Context) (report.Table, []attendance.Record, bool) {
	var p reportParams
	if err := c.ShouldBindQuery(&p); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid query"})
		return report.Table{}, nil, false
	}
	format, err := report.ParseFormat(p.Format)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return report.Table{}, nil, false
	}
	start, end, err := report.RangeFor(report.Period(p.Type), h.now(), h.settings.Location, p.Start, p.End)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return report.Table{}, nil, false
	}

	q := attendance.ReportQuery{Start: start, End: end, UserID: p.UserID}
	records := attendance.Aggregate(h.Records.ListRecords(), q, h.settings.Location)
	return report.BuildTable(records, h.Users, format, q, h.settings.Location), records, true
}

// Report previews the aggregated report as JSON.
func (h *Handler) Report(c *gin.Context) {
	t, records, ok := h.table(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"start":    t.Start,
		"end":      t.End,
		"fileName": t.FileName(),
		"header":   t.Header,
		"rows":     t.Rows,
		"records":  records,
	})
}

// ExportReport streams the workbook as a download.
func (h *Handler) ExportReport(c *gin.Context) {
	t, _, ok := h.table(c)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if _, err := h.Exporter.WriteTo(&buf, t); err != nil {
		h.Metrics.ObserveExport("download", resultOf(err))
		h.respondError(c, err)
		return
	}
	h.Metrics.ObserveExport("download", "ok")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", t.FileName()))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

// EnqueueExport hands the workbook to the export worker.
func (h *Handler) EnqueueExport(c *gin.Context) {
	t, _, ok := h.table(c)
	if !ok {
		return
	}
	if len(t.Rows) == 0 {
		h.Metrics.ObserveExport("job", "empty")
		h.respondError(c, report.ErrEmptyReport)
		return
	}

	job := report.Job{ID: uuid.NewString(), RequestedAt: h.now().UTC(), Table: t}
	if s, ok := auth.SessionFrom(c); ok {
		job.RequestedBy = s.User.Username
	}
	msg, err := job.Message()
	if err != nil {
		h.respondError(c, err)
		return
	}
	if err := h.Queue.Publish(c.Request.Context(), msg); err != nil {
		h.logger(c).Error("queue publish failed", zap.String("job_id", job.ID), zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "export queue unavailable"})
		return
	}
	c.JSON(http.StatusAccepted, gin.H{
		"jobId":    job.ID,
		"fileName": t.FileName(),
		"download": "/v1/reports/files/" + t.FileName(),
	})
}

// DownloadExport serves a workbook written by the export worker.
func (h *Handler) DownloadExport(c *gin.Context) {
	name := c.Param("name")
	if name != filepath.Base(name) || !strings.HasPrefix(name, "Attendance_Report") || filepath.Ext(name) != ".xlsx" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid file name"})
		return
	}
	path := filepath.Join(h.settings.ExportDir, name)
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			c.JSON(http.StatusNotFound, gin.H{"error": "export not ready"})
			return
		}
		h.respondError(c, err)
		return
	}
	c.FileAttachment(path, name)
}

func resultOf(err error) string {
	if errors.Is(err, report.ErrEmptyReport) {
		return "empty"
	}
	return "error"
}
