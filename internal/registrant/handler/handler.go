package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"regdesk/internal/export"
	"regdesk/internal/registrant/models"
	"regdesk/internal/registrant/service"
	id "regdesk/pkg/domain"
	"regdesk/pkg/platform/httputil"
	"regdesk/pkg/platform/privacy"
	"regdesk/pkg/requestcontext"
)

// Service defines the registrant operations the HTTP layer needs.
// Returns domain objects, not HTTP response DTOs.
type Service interface {
	Submit(ctx context.Context, cmd *service.SubmitCommand) (*service.SubmitResult, error)
	List(ctx context.Context) ([]*models.Registrant, error)
	Get(ctx context.Context, registrantID id.RegistrantID) (*models.Registrant, error)
	UpdatePaymentStatus(ctx context.Context, email, status string) (*models.Registrant, error)
	Export(ctx context.Context, format export.Format) (*service.ExportFile, error)
	SyncSheets(ctx context.Context) (int, error)
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Post("/submit-form", h.HandleSubmit)
	r.Get("/registered-users", h.HandleList)
	r.Get("/user/{id}", h.HandleGet)
	r.Post("/update-payment-status", h.HandleUpdatePaymentStatus)
	r.Get("/export-excel", h.HandleExportExcel)
	r.Get("/export-csv", h.HandleExportCSV)
	r.Post("/export-sheets", h.HandleSyncSheets)
}

// HandleSubmit stores a registration and, for "Pay Now", returns a payment QR code.
func (h *Handler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[SubmitRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	res, err := h.service.Submit(ctx, req.ToCommand())
	if err != nil {
		h.logger.ErrorContext(ctx, "submit registration failed",
			"error", err,
			"request_id", requestID,
			"email", privacy.MaskEmail(req.Email),
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, toSubmitResponse(res))
}

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	all, err := h.service.List(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "list registrants failed", "error", err, "request_id", requestID)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, all)
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	registrantID, err := id.ParseRegistrantID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	registrant, err := h.service.Get(ctx, registrantID)
	if err != nil {
		h.logger.ErrorContext(ctx, "get registrant failed", "error", err, "request_id", requestID, "registrant_id", registrantID)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, registrant)
}

func (h *Handler) HandleUpdatePaymentStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[UpdatePaymentStatusRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	registrant, err := h.service.UpdatePaymentStatus(ctx, req.Email, req.PaymentStatus)
	if err != nil {
		h.logger.ErrorContext(ctx, "update payment status failed",
			"error", err,
			"request_id", requestID,
			"email", privacy.MaskEmail(req.Email),
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, &UpdatePaymentStatusResponse{
		Message: messagePaymentUpdated,
		User:    registrant,
	})
}

func (h *Handler) HandleExportExcel(w http.ResponseWriter, r *http.Request) {
	h.handleExport(w, r, export.FormatXLSX)
}

func (h *Handler) HandleExportCSV(w http.ResponseWriter, r *http.Request) {
	h.handleExport(w, r, export.FormatCSV)
}

func (h *Handler) handleExport(w http.ResponseWriter, r *http.Request, format export.Format) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	file, err := h.service.Export(ctx, format)
	if err != nil {
		h.logger.ErrorContext(ctx, "export failed", "error", err, "request_id", requestID, "format", format)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteAttachment(w, file.Filename, file.ContentType, file.Body)
}

// HandleSyncSheets pushes the full export to the configured Google Sheet.
func (h *Handler) HandleSyncSheets(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	rows, err := h.service.SyncSheets(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "sheets sync failed", "error", err, "request_id", requestID)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, &SheetsSyncResponse{
		Message: messageSheetsSynced,
		Rows:    rows,
	})
}
