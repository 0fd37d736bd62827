package handlers

import (
	"encoding/csv"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/glenwood/beacon/internal/api"
	"github.com/glenwood/beacon/internal/database"
)

// HistoryHandler serves the persisted alert history: a paged JSON list
// for the admin console and flat CSV/XLSX exports for compliance filing.
type HistoryHandler struct {
	history *database.HistoryStore
}

// NewHistoryHandler creates a new history handler.
func NewHistoryHandler(history *database.HistoryStore) *HistoryHandler {
	return &HistoryHandler{history: history}
}

// exportColumns is the flat schema shared by both export formats.
var exportColumns = []string{
	"id", "uuid", "mode", "action", "zone", "started_at",
	"triggered_by", "resolved_at", "resolved_by", "total_acks",
}

// SetupRoutes sets up history routes.
func (h *HistoryHandler) SetupRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/alerts/history", h.handleList)
	mux.HandleFunc("/api/alerts/history/export", h.handleExport)
}

// handleList handles GET /api/alerts/history with pagination.
func (h *HistoryHandler) handleList(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		api.RespondError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	p := api.ParsePagination(r)
	records, total, err := h.history.ListAlertRecords(p.Offset(), p.PerPage)
	if err != nil {
		log.Printf("HistoryHandler: failed to list history: %v", err)
		api.RespondError(w, http.StatusInternalServerError, "Failed to list alert history")
		return
	}

	api.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"alerts":      records,
		"total":       total,
		"page":        p.Page,
		"per_page":    p.PerPage,
		"total_pages": p.TotalPages(total),
	})
}

// handleExport handles GET /api/alerts/history/export?format=csv|xlsx.
// Exports are full dumps, newest first; history volume is a few rows per
// school day so streaming pagination is not worth the complexity.
func (h *HistoryHandler) handleExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		api.RespondError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	records, err := h.history.AllAlertRecords()
	if err != nil {
		log.Printf("HistoryHandler: failed to load history for export: %v", err)
		api.RespondError(w, http.StatusInternalServerError, "Failed to export alert history")
		return
	}

	filename := fmt.Sprintf("alert-history-%s", time.Now().Format("2006-01-02"))

	switch r.URL.Query().Get("format") {
	case "", "csv":
		h.exportCSV(w, records, filename)
	case "xlsx":
		h.exportXLSX(w, records, filename)
	default:
		api.RespondError(w, http.StatusBadRequest, "Unsupported export format, use csv or xlsx")
	}
}

func (h *HistoryHandler) exportCSV(w http.ResponseWriter, records []database.AlertRecord, filename string) {
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename+".csv"))

	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(exportColumns); err != nil {
		log.Printf("HistoryHandler: CSV export failed: %v", err)
		return
	}
	for _, rec := range records {
		if err := cw.Write(exportRow(rec)); err != nil {
			log.Printf("HistoryHandler: CSV export failed: %v", err)
			return
		}
	}
}

func (h *HistoryHandler) exportXLSX(w http.ResponseWriter, records []database.AlertRecord, filename string) {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Alert History"
	f.SetSheetName("Sheet1", sheet)

	for col, name := range exportColumns {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		f.SetCellValue(sheet, cell, name)
	}
	for row, rec := range records {
		for col, value := range exportRow(rec) {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			f.SetCellValue(sheet, cell, value)
		}
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename+".xlsx"))

	if err := f.Write(w); err != nil {
		log.Printf("HistoryHandler: XLSX export failed: %v", err)
	}
}

// exportRow flattens one record into export column order.
func exportRow(rec database.AlertRecord) []string {
	resolvedAt := ""
	if rec.ResolvedAt != nil {
		resolvedAt = strconv.FormatInt(*rec.ResolvedAt, 10)
	}
	totalAcks := ""
	if rec.TotalAcks != nil {
		totalAcks = strconv.Itoa(*rec.TotalAcks)
	}
	return []string{
		strconv.FormatUint(uint64(rec.ID), 10),
		rec.UUID,
		rec.Mode,
		rec.Action,
		rec.Zone,
		strconv.FormatInt(rec.StartedAt, 10),
		rec.TriggeredBy,
		resolvedAt,
		rec.ResolvedBy,
		totalAcks,
	}
}
