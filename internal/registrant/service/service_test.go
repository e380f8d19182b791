package service

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/xuri/excelize/v2"
	"go.uber.org/mock/gomock"

	"regdesk/internal/export"
	"regdesk/internal/platform/tracer"
	"regdesk/internal/registrant/models"
	id "regdesk/pkg/domain"
	dErrors "regdesk/pkg/domain-errors"
	"regdesk/pkg/platform/sentinel"
	fixtures "regdesk/pkg/testutil"
)

func (s *ServiceSuite) TestSubmit() {
	s.Run("pay later stores No and renders nothing", func() {
		var stored *models.Registrant
		s.mockStore.EXPECT().Create(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ any, r *models.Registrant) error {
				stored = r
				return nil
			})

		res, err := s.service.Submit(s.ctx, s.submitCommand("Pay Later"))

		s.Require().NoError(err)
		s.Empty(res.QRCode)
		s.Equal(models.PaymentStatusNo, res.Registrant.PaymentStatus)
		s.Same(stored, res.Registrant)
		s.False(stored.ID.IsNil())
		s.Equal(s.now, stored.CreatedAt)
		s.Equal(s.now, stored.UpdatedAt)
		s.NotNil(stored.Children)
	})

	s.Run("pay now stores Yes and renders qr", func() {
		s.mockStore.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)
		s.mockQR.EXPECT().QRCodeFor("Anna Joseph").Return("data:image/png;base64,AAAA", nil)

		res, err := s.service.Submit(s.ctx, s.submitCommand("Pay Now"))

		s.Require().NoError(err)
		s.Equal(models.PaymentStatusYes, res.Registrant.PaymentStatus)
		s.Equal("data:image/png;base64,AAAA", res.QRCode)
	})

	s.Run("missing email is rejected before the store", func() {
		cmd := s.submitCommand("Pay Now")
		cmd.Email = "  "

		_, err := s.service.Submit(s.ctx, cmd)

		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("negative child count is rejected", func() {
		cmd := s.submitCommand("")
		cmd.NumChildren = -1

		_, err := s.service.Submit(s.ctx, cmd)

		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("store failure is internal", func() {
		s.mockStore.EXPECT().Create(gomock.Any(), gomock.Any()).Return(errors.New("connection reset"))

		_, err := s.service.Submit(s.ctx, s.submitCommand("Pay Now"))

		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeInternal))
		s.Equal("failed to save registrant", err.Error())
	})

	s.Run("qr failure is internal", func() {
		s.mockStore.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)
		s.mockQR.EXPECT().QRCodeFor(gomock.Any()).Return("", errors.New("content too long"))

		_, err := s.service.Submit(s.ctx, s.submitCommand("Pay Now"))

		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeInternal))
	})

	// the qr failure case was still persisted, so it counts
	s.Equal(2.0, testutil.ToFloat64(s.metrics.Registrations.WithLabelValues("Yes")))
	s.Equal(1.0, testutil.ToFloat64(s.metrics.Registrations.WithLabelValues("No")))
}

func (s *ServiceSuite) TestList() {
	s.Run("nil from store becomes empty slice", func() {
		s.mockStore.EXPECT().ListAll(gomock.Any()).Return(nil, nil)

		all, err := s.service.List(s.ctx)

		s.Require().NoError(err)
		s.NotNil(all)
		s.Empty(all)
	})

	s.Run("store failure is internal", func() {
		s.mockStore.EXPECT().ListAll(gomock.Any()).Return(nil, errors.New("boom"))

		_, err := s.service.List(s.ctx)

		s.True(dErrors.HasCode(err, dErrors.CodeInternal))
	})
}

func (s *ServiceSuite) TestGet() {
	s.Run("found", func() {
		r := fixtures.NewRegistrantBuilder().Build()
		s.mockStore.EXPECT().FindByID(gomock.Any(), r.ID).Return(r, nil)

		got, err := s.service.Get(s.ctx, r.ID)

		s.Require().NoError(err)
		s.Equal(r, got)
	})

	s.Run("not found", func() {
		s.mockStore.EXPECT().FindByID(gomock.Any(), gomock.Any()).Return(nil, sentinel.ErrNotFound)

		_, err := s.service.Get(s.ctx, id.NewRegistrantID())

		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("store failure is internal", func() {
		s.mockStore.EXPECT().FindByID(gomock.Any(), gomock.Any()).Return(nil, errors.New("boom"))

		_, err := s.service.Get(s.ctx, id.NewRegistrantID())

		s.True(dErrors.HasCode(err, dErrors.CodeInternal))
	})

	s.Run("nil id is invalid input", func() {
		_, err := s.service.Get(s.ctx, id.RegistrantID{})

		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})
}

func (s *ServiceSuite) TestUpdatePaymentStatus() {
	s.Run("case-folds status and passes raw email to store", func() {
		updated := fixtures.NewRegistrantBuilder().WithEmail("a@b.com").WithPaymentStatus("yes").Build()
		s.mockStore.EXPECT().CountByEmail(gomock.Any(), "  A@B.com ").Return(1, nil)
		s.mockStore.EXPECT().UpdatePaymentStatus(gomock.Any(), "  A@B.com ", models.PaymentStatus("yes"), s.now).Return(updated, nil)

		got, err := s.service.UpdatePaymentStatus(s.ctx, "  A@B.com ", "YES")

		s.Require().NoError(err)
		s.Equal(updated, got)
		s.Equal(1.0, testutil.ToFloat64(s.metrics.PaymentUpdates.WithLabelValues("yes")))
	})

	s.Run("warns when several registrants share the email", func() {
		s.logs.Reset()
		updated := fixtures.NewRegistrantBuilder().WithEmail("dup@b.com").Build()
		s.mockStore.EXPECT().CountByEmail(gomock.Any(), "dup@b.com").Return(3, nil)
		s.mockStore.EXPECT().UpdatePaymentStatus(gomock.Any(), "dup@b.com", models.PaymentStatus("no"), s.now).Return(updated, nil)

		_, err := s.service.UpdatePaymentStatus(s.ctx, "dup@b.com", "no")

		s.Require().NoError(err)
		s.Contains(s.logs.String(), "multiple registrants share email")
		s.Contains(s.logs.String(), "matches=3")
		s.NotContains(s.logs.String(), "dup@b.com")
	})

	s.Run("count failure does not block the update", func() {
		updated := fixtures.NewRegistrantBuilder().Build()
		s.mockStore.EXPECT().CountByEmail(gomock.Any(), gomock.Any()).Return(0, errors.New("boom"))
		s.mockStore.EXPECT().UpdatePaymentStatus(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(updated, nil)

		_, err := s.service.UpdatePaymentStatus(s.ctx, "anna@example.org", "yes")

		s.NoError(err)
	})

	s.Run("missing email", func() {
		_, err := s.service.UpdatePaymentStatus(s.ctx, "   ", "yes")

		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
		s.Equal("email is required", err.Error())
	})

	s.Run("missing status", func() {
		_, err := s.service.UpdatePaymentStatus(s.ctx, "a@b.com", "")

		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("unknown status", func() {
		_, err := s.service.UpdatePaymentStatus(s.ctx, "a@b.com", "paid")

		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("no match", func() {
		s.mockStore.EXPECT().CountByEmail(gomock.Any(), gomock.Any()).Return(0, nil)
		s.mockStore.EXPECT().UpdatePaymentStatus(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, sentinel.ErrNotFound)

		_, err := s.service.UpdatePaymentStatus(s.ctx, "ghost@b.com", "yes")

		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func (s *ServiceSuite) TestExport() {
	s.Run("empty collection is not found", func() {
		s.mockStore.EXPECT().ListAll(gomock.Any()).Return([]*models.Registrant{}, nil)

		file, err := s.service.Export(s.ctx, export.FormatXLSX)

		s.Nil(file)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
		s.Equal("No users found", err.Error())
	})

	s.Run("xlsx has one data row per registrant", func() {
		regs := []*models.Registrant{
			fixtures.NewRegistrantBuilder().WithName("Anna").Build(),
			fixtures.NewRegistrantBuilder().WithName("Ben").WithChild("Mia", 7, "F").WithChild("Leo", 4, "M").Build(),
		}
		s.mockStore.EXPECT().ListAll(gomock.Any()).Return(regs, nil)

		file, err := s.service.Export(s.ctx, export.FormatXLSX)

		s.Require().NoError(err)
		s.Equal("registered_users.xlsx", file.Filename)
		s.Equal(export.XLSXContentType, file.ContentType)
		s.Equal(2, file.Rows)

		f, err := excelize.OpenReader(bytes.NewReader(file.Body))
		s.Require().NoError(err)
		rows, err := f.GetRows(export.SheetName)
		s.Require().NoError(err)
		s.Len(rows, 3)
		s.Equal("N/A", rows[1][len(export.Columns)-1])
		s.Contains(rows[2][len(export.Columns)-1], "Mia")
		s.Contains(rows[2][len(export.Columns)-1], "Leo")
	})

	s.Run("csv", func() {
		s.mockStore.EXPECT().ListAll(gomock.Any()).Return([]*models.Registrant{fixtures.NewRegistrantBuilder().Build()}, nil)

		file, err := s.service.Export(s.ctx, export.FormatCSV)

		s.Require().NoError(err)
		s.Equal("registered_users.csv", file.Filename)
		s.True(strings.HasPrefix(string(file.Body), "ID,FullName,"))
	})

	s.Run("store failure is internal", func() {
		s.mockStore.EXPECT().ListAll(gomock.Any()).Return(nil, errors.New("boom"))

		_, err := s.service.Export(s.ctx, export.FormatCSV)

		s.True(dErrors.HasCode(err, dErrors.CodeInternal))
	})

	s.Run("unknown format is internal", func() {
		s.mockStore.EXPECT().ListAll(gomock.Any()).Return([]*models.Registrant{fixtures.NewRegistrantBuilder().Build()}, nil)

		_, err := s.service.Export(s.ctx, export.Format("pdf"))

		s.True(dErrors.HasCode(err, dErrors.CodeInternal))
	})

	s.Equal(1.0, testutil.ToFloat64(s.metrics.Exports.WithLabelValues("xlsx")))
	s.Equal(1.0, testutil.ToFloat64(s.metrics.Exports.WithLabelValues("csv")))
}

func (s *ServiceSuite) TestSyncSheets() {
	s.Run("writes every row", func() {
		regs := []*models.Registrant{fixtures.NewRegistrantBuilder().Build(), fixtures.NewRegistrantBuilder().Build()}
		s.mockStore.EXPECT().ListAll(gomock.Any()).Return(regs, nil)
		s.mockSheets.EXPECT().Sync(gomock.Any(), gomock.Len(2)).Return(nil)

		n, err := s.service.SyncSheets(s.ctx)

		s.Require().NoError(err)
		s.Equal(2, n)
	})

	s.Run("empty collection is not found", func() {
		s.mockStore.EXPECT().ListAll(gomock.Any()).Return(nil, nil)

		_, err := s.service.SyncSheets(s.ctx)

		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("mirror failure is internal", func() {
		s.mockStore.EXPECT().ListAll(gomock.Any()).Return([]*models.Registrant{fixtures.NewRegistrantBuilder().Build()}, nil)
		s.mockSheets.EXPECT().Sync(gomock.Any(), gomock.Any()).Return(errors.New("403"))

		_, err := s.service.SyncSheets(s.ctx)

		s.True(dErrors.HasCode(err, dErrors.CodeInternal))
	})

	s.Run("open mirror circuit is unavailable", func() {
		s.mockStore.EXPECT().ListAll(gomock.Any()).Return([]*models.Registrant{fixtures.NewRegistrantBuilder().Build()}, nil)
		s.mockSheets.EXPECT().Sync(gomock.Any(), gomock.Any()).Return(fmt.Errorf("sheets circuit open: %w", sentinel.ErrUnavailable))

		_, err := s.service.SyncSheets(s.ctx)

		s.True(dErrors.HasCode(err, dErrors.CodeUnavailable))
	})

	s.Run("unconfigured mirror is unavailable", func() {
		svc := New(s.mockStore, s.mockQR)

		_, err := svc.SyncSheets(s.ctx)

		s.True(dErrors.HasCode(err, dErrors.CodeUnavailable))
	})
}

func (s *ServiceSuite) TestTracing() {
	rec := tracer.NewRecorder()
	svc := New(s.mockStore, s.mockQR, WithTracer(rec))

	s.mockStore.EXPECT().Create(gomock.Any(), gomock.Any()).Return(errors.New("connection reset"))
	_, err := svc.Submit(s.ctx, s.submitCommand("Pay Later"))
	s.Require().Error(err)

	spans := rec.Spans()
	s.Require().Len(spans, 1)
	s.Equal(tracer.SpanSubmit, spans[0].Name)
	s.Equal("No", spans[0].Attributes[tracer.AttrPaymentStatus])
	s.True(spans[0].Ended)
	s.True(dErrors.HasCode(spans[0].Err, dErrors.CodeInternal))
}
