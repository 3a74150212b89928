package accounting

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
	"github.com/go-playground/validator/v10"

	"github.com/ledgerbook/ledgerbook/internal/accounting/reports"
	"github.com/ledgerbook/ledgerbook/internal/platform/httpx"
)

const (
	reportRateLimit  = 30
	reportRateWindow = time.Minute
)

// ReportGenerator produces financial statements.
type ReportGenerator interface {
	Generate(ctx context.Context, req ReportRequest) (reports.FinancialReport, error)
}

// Handler exposes the statement API.
type Handler struct {
	logger    *slog.Logger
	service   ReportGenerator
	validator *validator.Validate
	rateLimit func(http.Handler) http.Handler
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, service ReportGenerator) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	limiter := httprate.Limit(reportRateLimit, reportRateWindow,
		httprate.WithKeyFuncs(httprate.KeyByIP, bookKey),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			httpx.RespondError(w, httpx.ErrRateLimited)
		}),
	)
	return &Handler{
		logger:    logger,
		service:   service,
		validator: validator.New(),
		rateLimit: limiter,
	}
}

// MountRoutes registers the statement routes.
func (h *Handler) MountRoutes(r chi.Router) {
	if h == nil {
		return
	}
	r.Group(func(r chi.Router) {
		r.Use(h.rateLimit)
		r.Get("/books/{bookID}/reports/{reportType}", h.handleReport)
	})
}

func bookKey(r *http.Request) (string, error) {
	return "book:" + chi.URLParam(r, "bookID"), nil
}

type reportQuery struct {
	BookID string `validate:"required,max=64"`
	Start  string `validate:"required,datetime=2006-01-02"`
	End    string `validate:"required,datetime=2006-01-02"`
}

func (h *Handler) handleReport(w http.ResponseWriter, r *http.Request) {
	reportType, err := reports.ParseReportType(chi.URLParam(r, "reportType"))
	if err != nil {
		h.respondError(w, err)
		return
	}
	query := reportQuery{
		BookID: chi.URLParam(r, "bookID"),
		Start:  r.URL.Query().Get("start"),
		End:    r.URL.Query().Get("end"),
	}
	if err := h.validator.Struct(query); err != nil {
		var fields validator.ValidationErrors
		if errors.As(err, &fields) && len(fields) > 0 {
			err = fmt.Errorf("%w: %s failed %s", httpx.ErrValidation, fields[0].Field(), fields[0].Tag())
		}
		h.respondError(w, err)
		return
	}
	period, err := ParsePeriod(query.Start, query.End)
	if err != nil {
		h.respondError(w, err)
		return
	}

	report, err := h.service.Generate(r.Context(), ReportRequest{
		BookID: query.BookID,
		Type:   reportType,
		Period: period,
	})
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, report)
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInvalidPeriod), errors.Is(err, ErrBookRequired), errors.Is(err, httpx.ErrValidation):
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	case errors.Is(err, reports.ErrUnknownReportType):
		httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, ErrUpstreamUnavailable):
		h.logger.Warn("report request failed upstream", slog.Any("error", err))
		httpx.RespondError(w, httpx.ErrUnavailable)
	default:
		h.logger.Error("report request failed", slog.Any("error", err))
		httpx.RespondError(w, err)
	}
}
