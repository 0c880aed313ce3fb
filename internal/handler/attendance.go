package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"rfid-attendance/internal/attendance"
)

type scanRequest struct {
	Token string `json:"token"`
}

// Scan resolves an RFID token into an attendance record.
func (h *Handler) Scan(c *gin.Context) {
	var req scanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	res, err := h.Scanner.Scan(c.Request.Context(), req.Token)
	if errors.Is(err, attendance.ErrUnknownTag) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error(), "notice": res.Notice})
		return
	}
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.Metrics.SetRecords(h.Records.Len())
	h.logger(c).Debug("scan accepted", zap.String("record_id", res.Record.ID))
	c.JSON(http.StatusCreated, res)
}

// ScannerState returns what the scanner display currently shows.
func (h *Handler) ScannerState(c *gin.Context) {
	c.JSON(http.StatusOK, h.Scanner.State())
}

// Dashboard returns today's counters and the most recent records.
func (h *Handler) Dashboard(c *gin.Context) {
	records := h.Records.ListRecords()
	c.JSON(http.StatusOK, gin.H{
		"summary": attendance.Summarize(records, h.now(), h.settings.Location),
		"recent":  attendance.Recent(records, h.settings.RecentLimit),
		"scanner": h.Scanner.State(),
	})
}

// ListAttendance filters the log by name substring and optional date.
func (h *Handler) ListAttendance(c *gin.Context) {
	q := attendance.ListQuery{Search: c.Query("search"), Date: c.Query("date")}
	if err := attendance.ValidateDate(q.Date); err != nil {
		h.respondError(c, err)
		return
	}
	records := attendance.Filter(h.Records.ListRecords(), q, h.settings.Location)
	c.JSON(http.StatusOK, gin.H{"records": records, "count": len(records)})
}
