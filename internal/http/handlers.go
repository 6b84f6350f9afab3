package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"inari/internal/codec"
	"inari/internal/core"
	"inari/internal/log"
	"inari/internal/services"
	"inari/internal/storage"
)

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleListWallets(w http.ResponseWriter, r *http.Request) {
	wallets, err := s.store.ListWallets(r.Context(), r.URL.Query().Get("archived") == "true")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeDocuments(w, r, wallets, codec.EncodeWallet)
}

func (s *Server) handleGetWallet(w http.ResponseWriter, r *http.Request) {
	id, ok := walletID(w, r)
	if !ok {
		return
	}
	wallet, err := s.store.GetWallet(r.Context(), id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	doc, err := codec.EncodeWallet(wallet)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeRaw(w, http.StatusOK, doc)
}

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	id, ok := walletID(w, r)
	if !ok {
		return
	}
	categories, err := s.store.ListCategories(r.Context(), id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeDocuments(w, r, categories, codec.EncodeCategory)
}

// handleListTransactions accepts optional kind and period (YYYY-MM) filters.
func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	id, ok := walletID(w, r)
	if !ok {
		return
	}
	filter := storage.TransactionFilter{WalletID: id}

	q := r.URL.Query()
	if kind := strings.TrimSpace(q.Get("kind")); kind != "" {
		switch kind {
		case core.KindOneTime, core.KindRecurring, core.KindSpreadOut, core.KindExpectation:
			filter.Kind = kind
		default:
			writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown kind %q", kind))
			return
		}
	}
	if p := strings.TrimSpace(q.Get("period")); p != "" {
		period, err := core.ParseBudgetPeriod(p)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		filter.From = period.FirstDay(nil)
		filter.To = period.Next().FirstDay(nil)
	}

	txs, err := s.store.ListTransactions(r.Context(), filter)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeDocuments(w, r, txs, codec.EncodeTransaction)
}

type reportLine struct {
	CategoryID string           `json:"categoryID"`
	Name       string           `json:"name"`
	Color      string           `json:"color"`
	Spent      decimal.Decimal  `json:"spent"`
	OwnerShare decimal.Decimal  `json:"ownerShare"`
	Limit      *decimal.Decimal `json:"limit,omitempty"`
	Remaining  *decimal.Decimal `json:"remaining,omitempty"`
	OverBudget bool             `json:"overBudget"`
}

type reportResponse struct {
	WalletID   string          `json:"walletID"`
	Currency   string          `json:"currency"`
	Period     string          `json:"period"`
	Lines      []reportLine    `json:"lines"`
	Unassigned decimal.Decimal `json:"unassigned"`
	Total      decimal.Decimal `json:"total"`
}

// handleReport builds the monthly report; period defaults to the current one.
func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	id, ok := walletID(w, r)
	if !ok {
		return
	}
	period := core.CurrentPeriod(s.clock)
	if p := strings.TrimSpace(r.URL.Query().Get("period")); p != "" {
		var err error
		if period, err = core.ParseBudgetPeriod(p); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	report, err := s.reports.MonthlyReport(r.Context(), id, period)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toReportResponse(report))
}

func toReportResponse(report *services.MonthlyReport) reportResponse {
	resp := reportResponse{
		WalletID:   report.Wallet.ID().String(),
		Currency:   report.Wallet.Currency().Code(),
		Period:     report.Period.String(),
		Lines:      make([]reportLine, 0, len(report.Lines)),
		Unassigned: report.Unassigned,
		Total:      report.Total,
	}
	for _, l := range report.Lines {
		line := reportLine{
			CategoryID: l.Category.ID().String(),
			Name:       l.Category.Name(),
			Color:      l.Category.Color().Hex(),
			Spent:      l.Spent,
			OwnerShare: l.OwnerShare,
			OverBudget: l.OverBudget(),
		}
		if l.HasBudget {
			limit, remaining := l.Limit, l.Remaining()
			line.Limit, line.Remaining = &limit, &remaining
		}
		resp.Lines = append(resp.Lines, line)
	}
	return resp
}

func walletID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid wallet id")
		return uuid.Nil, false
	}
	return id, true
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, storage.ErrNotFound) {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	log.FromContext(r.Context()).ErrorContext(r.Context(), "Request failed",
		"path", r.URL.Path,
		log.FieldError, err)
	writeError(w, http.StatusInternalServerError, "internal error")
}

// writeDocuments writes items as a JSON array of codec documents.
func writeDocuments[T any](w http.ResponseWriter, r *http.Request, items []T, encode func(T) ([]byte, error)) {
	docs := make([]json.RawMessage, 0, len(items))
	for _, item := range items {
		doc, err := encode(item)
		if err != nil {
			log.FromContext(r.Context()).ErrorContext(r.Context(), "Failed to encode document", log.FieldError, err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		docs = append(docs, doc)
	}
	writeJSON(w, http.StatusOK, docs)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeRaw(w, status, body)
}

func writeRaw(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(body)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	body, _ := json.Marshal(map[string]string{"error": msg})
	writeRaw(w, status, body)
}
