package service

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"time"

	"regdesk/internal/export"
	"regdesk/internal/platform/tracer"
	registrantmetrics "regdesk/internal/registrant/metrics"
	"regdesk/internal/registrant/models"
	id "regdesk/pkg/domain"
	dErrors "regdesk/pkg/domain-errors"
	"regdesk/pkg/platform/privacy"
	"regdesk/pkg/platform/sentinel"
	"regdesk/pkg/requestcontext"
)

type Store interface {
	Create(ctx context.Context, r *models.Registrant) error
	ListAll(ctx context.Context) ([]*models.Registrant, error)
	FindByID(ctx context.Context, registrantID id.RegistrantID) (*models.Registrant, error)
	CountByEmail(ctx context.Context, email string) (int, error)
	UpdatePaymentStatus(ctx context.Context, email string, status models.PaymentStatus, now time.Time) (*models.Registrant, error)
}

// QRRenderer turns a registrant name into a payment QR data URI.
type QRRenderer interface {
	QRCodeFor(registrantName string) (string, error)
}

// SheetsMirror receives a full copy of the export on demand.
type SheetsMirror interface {
	Sync(ctx context.Context, rows []export.FlatRow) error
}

// Service orchestrates registrant submission, lookup, payment updates and
// exports. Store errors are translated to domain errors here and nowhere else.
type Service struct {
	store    Store
	qr       QRRenderer
	sheets   SheetsMirror
	logger   *slog.Logger
	metrics  *registrantmetrics.Metrics
	tracer   tracer.Tracer
	location *time.Location
}

func New(store Store, qr QRRenderer, opts ...Option) *Service {
	s := &Service{
		store:    store,
		qr:       qr,
		logger:   slog.New(slog.DiscardHandler),
		tracer:   tracer.NewNoop(),
		location: time.UTC,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Submit stores a new registrant. Payment status comes from the payment
// option alone; a QR code is rendered only for "Pay Now".
func (s *Service) Submit(ctx context.Context, cmd *SubmitCommand) (_ *SubmitResult, err error) {
	ctx, span := s.tracer.Start(ctx, tracer.SpanSubmit)
	defer func() { span.End(err) }()

	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	now := requestcontext.Now(ctx)
	children := cmd.Children
	if children == nil {
		children = []models.Dependent{}
	}
	r := &models.Registrant{
		ID:            id.NewRegistrantID(),
		FullName:      cmd.FullName,
		HouseName:     cmd.HouseName,
		Place:         cmd.Place,
		Parish:        cmd.Parish,
		Email:         cmd.Email,
		Phone:         cmd.Phone,
		DOB:           cmd.DOB,
		Experience:    cmd.Experience,
		Accommodation: cmd.Accommodation,
		HomeLocation:  cmd.HomeLocation,
		Gender:        cmd.Gender,
		Category:      cmd.Category,
		SpouseName:    cmd.SpouseName,
		SpousePhone:   cmd.SpousePhone,
		NumChildren:   cmd.NumChildren,
		Children:      children,
		PaymentStatus: models.PaymentStatusForOption(cmd.PaymentOption),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	span.SetAttributes(
		tracer.String(tracer.AttrRegistrantID, r.ID.String()),
		tracer.String(tracer.AttrPaymentStatus, string(r.PaymentStatus)),
	)

	if err := s.store.Create(ctx, r); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to save registrant")
	}
	s.incrementRegistration(r.PaymentStatus)
	s.logger.InfoContext(ctx, "registrant submitted",
		"registrant_id", r.ID,
		"email", privacy.MaskEmail(r.Email),
		"payment_status", r.PaymentStatus,
	)

	result := &SubmitResult{Registrant: r}
	if cmd.PaymentOption != models.PaymentOptionPayNow {
		return result, nil
	}

	start := time.Now()
	qrCode, err := s.qr.QRCodeFor(r.FullName)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to encode payment qr code")
	}
	s.observeQRRender(start)
	span.AddEvent(tracer.EventQRRendered)
	result.QRCode = qrCode
	return result, nil
}

// List returns every registrant in insertion order, or an empty slice.
func (s *Service) List(ctx context.Context) (_ []*models.Registrant, err error) {
	ctx, span := s.tracer.Start(ctx, tracer.SpanList)
	defer func() { span.End(err) }()

	all, err := s.store.ListAll(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list registrants")
	}
	if all == nil {
		all = []*models.Registrant{}
	}
	span.SetAttributes(tracer.Int64(tracer.AttrRecordCount, int64(len(all))))
	return all, nil
}

func (s *Service) Get(ctx context.Context, registrantID id.RegistrantID) (_ *models.Registrant, err error) {
	ctx, span := s.tracer.Start(ctx, tracer.SpanGet,
		tracer.String(tracer.AttrRegistrantID, registrantID.String()),
	)
	defer func() { span.End(err) }()

	if registrantID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "registrant ID required")
	}
	r, err := s.store.FindByID(ctx, registrantID)
	if err != nil {
		return nil, wrapRegistrantErr(err, "registrant not found", "failed to load registrant")
	}
	return r, nil
}

// UpdatePaymentStatus overwrites the payment status of the most recently
// created registrant with the given email. Repeating the call with the same
// inputs leaves the same stored state.
func (s *Service) UpdatePaymentStatus(ctx context.Context, email, rawStatus string) (_ *models.Registrant, err error) {
	ctx, span := s.tracer.Start(ctx, tracer.SpanUpdatePaymentStatus,
		tracer.String(tracer.AttrEmailHash, tracer.HashEmail(email)),
	)
	defer func() { span.End(err) }()

	if models.NormalizeEmail(email) == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "email is required")
	}
	status, err := models.ParsePaymentStatus(rawStatus)
	if err != nil {
		return nil, err
	}

	matches, err := s.store.CountByEmail(ctx, email)
	if err != nil {
		s.logger.WarnContext(ctx, "failed to count registrants by email", "error", err)
	} else if matches > 1 {
		span.SetAttributes(tracer.Int64(tracer.AttrMatchCount, int64(matches)))
		s.logger.WarnContext(ctx, "multiple registrants share email, updating most recent",
			"email", privacy.MaskEmail(email),
			"matches", matches,
		)
	}

	r, err := s.store.UpdatePaymentStatus(ctx, email, status, requestcontext.Now(ctx))
	if err != nil {
		return nil, wrapRegistrantErr(err, "no registrant found with that email", "failed to update payment status")
	}
	s.incrementPaymentUpdate(status)
	s.logger.InfoContext(ctx, "payment status updated",
		"registrant_id", r.ID,
		"email", privacy.MaskEmail(r.Email),
		"payment_status", status,
	)
	return r, nil
}

// Export renders every registrant in the given format. An empty collection
// fails with not_found before any file is produced.
func (s *Service) Export(ctx context.Context, format export.Format) (_ *ExportFile, err error) {
	ctx, span := s.tracer.Start(ctx, tracer.SpanExport,
		tracer.String(tracer.AttrExportFormat, string(format)),
	)
	defer func() { span.End(err) }()

	rows, err := s.exportRows(ctx)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(tracer.Int64(tracer.AttrRecordCount, int64(len(rows))))

	var buf bytes.Buffer
	if err := format.Write(&buf, rows); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to write export")
	}
	s.incrementExport(string(format))
	return &ExportFile{
		Filename:    format.Filename(),
		ContentType: format.ContentType(),
		Body:        buf.Bytes(),
		Rows:        len(rows),
	}, nil
}

// SyncSheets overwrites the configured Google Sheets tab with the export.
// It returns the number of data rows written.
func (s *Service) SyncSheets(ctx context.Context) (_ int, err error) {
	ctx, span := s.tracer.Start(ctx, tracer.SpanSheetsSync)
	defer func() { span.End(err) }()

	if s.sheets == nil {
		return 0, dErrors.New(dErrors.CodeUnavailable, "sheets mirror is not configured")
	}
	rows, err := s.exportRows(ctx)
	if err != nil {
		return 0, err
	}
	if err := s.sheets.Sync(ctx, rows); err != nil {
		if errors.Is(err, sentinel.ErrUnavailable) {
			return 0, dErrors.Wrap(err, dErrors.CodeUnavailable, "sheets mirror is temporarily unavailable")
		}
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to sync sheets mirror")
	}
	s.incrementExport("sheets")
	return len(rows), nil
}

func (s *Service) exportRows(ctx context.Context) ([]export.FlatRow, error) {
	all, err := s.store.ListAll(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list registrants")
	}
	if len(all) == 0 {
		return nil, dErrors.New(dErrors.CodeNotFound, "No users found")
	}
	return export.ToRows(all, s.location), nil
}

func wrapRegistrantErr(err error, notFoundMsg, internalMsg string) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, notFoundMsg)
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, internalMsg)
}

func (s *Service) incrementRegistration(status models.PaymentStatus) {
	if s.metrics != nil {
		s.metrics.IncrementRegistration(string(status))
	}
}

func (s *Service) incrementPaymentUpdate(status models.PaymentStatus) {
	if s.metrics != nil {
		s.metrics.IncrementPaymentUpdate(string(status))
	}
}

func (s *Service) incrementExport(format string) {
	if s.metrics != nil {
		s.metrics.IncrementExport(format)
	}
}

func (s *Service) observeQRRender(start time.Time) {
	if s.metrics != nil {
		s.metrics.ObserveQRRender(start)
	}
}
