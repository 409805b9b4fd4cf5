package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/Jay666-max/shapan/internal/export"
	"github.com/Jay666-max/shapan/internal/ledger"
	"github.com/Jay666-max/shapan/internal/models"
	"github.com/Jay666-max/shapan/internal/stats"
	"go.uber.org/zap"
)

// APIHandler holds dependencies for the API endpoints.
type APIHandler struct {
	log    *zap.Logger
	ledger *ledger.Ledger
}

// NewAPIHandler creates a new APIHandler.
func NewAPIHandler(log *zap.Logger, l *ledger.Ledger) *APIHandler {
	return &APIHandler{log: log, ledger: l}
}

// Routes registers the API endpoints on a mux.
func (h *APIHandler) Routes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/trades", h.ListTrades)
	mux.HandleFunc("POST /api/trades", h.OpenTrade)
	mux.HandleFunc("GET /api/trades/{id}/preview", h.PreviewClose)
	mux.HandleFunc("POST /api/trades/{id}/close", h.CloseTrade)
	mux.HandleFunc("POST /api/reset", h.Reset)
	mux.HandleFunc("GET /api/traders", h.ListTraders)
	mux.HandleFunc("PUT /api/traders/{id}", h.RenameTrader)
	mux.HandleFunc("GET /api/stats", h.Statistics)
	mux.HandleFunc("GET /api/export", h.Export)
}

// OpenTradeRequest is the body of POST /api/trades.
type OpenTradeRequest struct {
	Trader    string  `json:"trader"`
	Direction string  `json:"direction"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
}

// CloseTradeRequest is the body of POST /api/trades/{id}/close.
type CloseTradeRequest struct {
	ClosePrice    float64 `json:"close_price"`
	CloseQuantity int     `json:"close_quantity"`
}

// RenameTraderRequest is the body of PUT /api/traders/{id}.
type RenameTraderRequest struct {
	Name string `json:"name"`
}

// TraderStatistics pairs a roster entry with its summary.
type TraderStatistics struct {
	Trader models.Trader `json:"trader"`
	Stats  stats.Summary `json:"stats"`
}

// StatisticsResponse is the structure for the /api/stats endpoint.
type StatisticsResponse struct {
	Traders []TraderStatistics `json:"traders"`
	Overall stats.Summary      `json:"overall"`
}

// ListTrades returns the full ordered record sequence.
func (h *APIHandler) ListTrades(w http.ResponseWriter, r *http.Request) {
	records, err := h.ledger.Records()
	if err != nil {
		h.log.Error("Failed to load trade records", zap.Error(err))
		http.Error(w, "Failed to load trades", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, records)
}

// OpenTrade opens a new position.
func (h *APIHandler) OpenTrade(w http.ResponseWriter, r *http.Request) {
	var req OpenTradeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Price <= 0 || req.Quantity <= 0 {
		http.Error(w, "Price and quantity must be positive", http.StatusBadRequest)
		return
	}

	position, err := h.ledger.Open(req.Trader, models.Direction(req.Direction), req.Price, req.Quantity)
	if err != nil {
		h.writeLedgerError(w, "open trade", err)
		return
	}
	writeJSON(w, http.StatusCreated, position)
}

// PreviewClose returns the profit a close would realize, for the confirmation
// step before committing it. Nothing is mutated.
func (h *APIHandler) PreviewClose(w http.ResponseWriter, r *http.Request) {
	price, err1 := strconv.ParseFloat(r.URL.Query().Get("price"), 64)
	quantity, err2 := strconv.Atoi(r.URL.Query().Get("quantity"))
	if err1 != nil || err2 != nil {
		http.Error(w, "Invalid price or quantity", http.StatusBadRequest)
		return
	}

	profit, err := h.ledger.PreviewClose(r.PathValue("id"), price, quantity)
	if err != nil {
		h.writeLedgerError(w, "preview close", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]float64{"projected_profit": profit})
}

// CloseTrade closes all or part of a position and returns the close event.
func (h *APIHandler) CloseTrade(w http.ResponseWriter, r *http.Request) {
	var req CloseTradeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.ClosePrice <= 0 || req.CloseQuantity <= 0 {
		http.Error(w, "Close price and quantity must be positive", http.StatusBadRequest)
		return
	}

	event, err := h.ledger.Close(r.PathValue("id"), req.ClosePrice, req.CloseQuantity)
	if err != nil {
		h.writeLedgerError(w, "close trade", err)
		return
	}
	writeJSON(w, http.StatusCreated, event)
}

// Reset clears all trade records; the trader roster is untouched.
func (h *APIHandler) Reset(w http.ResponseWriter, r *http.Request) {
	if err := h.ledger.Reset(); err != nil {
		h.log.Error("Failed to reset ledger", zap.Error(err))
		http.Error(w, "Failed to reset ledger", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListTraders returns the current roster.
func (h *APIHandler) ListTraders(w http.ResponseWriter, r *http.Request) {
	traders, err := h.ledger.Traders()
	if err != nil {
		h.log.Error("Failed to load traders", zap.Error(err))
		http.Error(w, "Failed to load traders", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, traders)
}

// RenameTrader updates a trader's display name.
func (h *APIHandler) RenameTrader(w http.ResponseWriter, r *http.Request) {
	var req RenameTraderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.ledger.RenameTrader(r.PathValue("id"), req.Name); err != nil {
		h.writeLedgerError(w, "rename trader", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Statistics returns per-trader summaries plus the overall one, recomputed
// from the current snapshot.
func (h *APIHandler) Statistics(w http.ResponseWriter, r *http.Request) {
	records, err := h.ledger.Records()
	if err != nil {
		h.log.Error("Failed to load records for statistics", zap.Error(err))
		http.Error(w, "Failed to calculate statistics", http.StatusInternalServerError)
		return
	}
	traders, err := h.ledger.Traders()
	if err != nil {
		h.log.Error("Failed to load traders for statistics", zap.Error(err))
		http.Error(w, "Failed to calculate statistics", http.StatusInternalServerError)
		return
	}

	response := StatisticsResponse{Overall: stats.Overall(records)}
	for _, trader := range traders {
		response.Traders = append(response.Traders, TraderStatistics{
			Trader: trader,
			Stats:  stats.ForTrader(records, trader.ID),
		})
	}
	writeJSON(w, http.StatusOK, response)
}

// Export streams the two-sheet xlsx report.
func (h *APIHandler) Export(w http.ResponseWriter, r *http.Request) {
	records, err := h.ledger.Records()
	if err != nil {
		h.log.Error("Failed to load records for export", zap.Error(err))
		http.Error(w, "Failed to export", http.StatusInternalServerError)
		return
	}
	traders, err := h.ledger.Traders()
	if err != nil {
		h.log.Error("Failed to load traders for export", zap.Error(err))
		http.Error(w, "Failed to export", http.StatusInternalServerError)
		return
	}

	workbook, err := export.Workbook(records, traders)
	if err != nil {
		h.log.Error("Failed to build export workbook", zap.Error(err))
		http.Error(w, "Failed to export", http.StatusInternalServerError)
		return
	}
	defer workbook.Close()

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition",
		"attachment; filename*=UTF-8''"+url.PathEscape(export.Filename(time.Now())))
	if err := workbook.Write(w); err != nil {
		h.log.Error("Failed to stream export workbook", zap.Error(err))
	}
}

// writeLedgerError maps ledger sentinel errors onto HTTP status codes.
func (h *APIHandler) writeLedgerError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, ledger.ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, ledger.ErrInvalidArgument):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		h.log.Error("Ledger operation failed", zap.String("op", op), zap.Error(err))
		http.Error(w, "Internal error", http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
