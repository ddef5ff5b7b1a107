package service

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/sma-timetable/internal/models"
	"github.com/noah-isme/sma-timetable/pkg/export"
	appErrors "github.com/noah-isme/sma-timetable/pkg/errors"
)

const (
	// TimetableFilename is the attachment name of the generated PDF.
	TimetableFilename = "timetable.pdf"
	// TimetableContentType is the media type of the generated PDF.
	TimetableContentType = "application/pdf"

	cornerHeader = "Day/Period"
	freeLabel    = "Free"
)

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

// ExportService turns timetables into downloadable documents.
type ExportService struct {
	pdf     pdfRenderer
	metrics *MetricsService
	logger  *zap.Logger
}

// NewExportService constructs an export service.
func NewExportService(pdf pdfRenderer, metrics *MetricsService, logger *zap.Logger) *ExportService {
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{pdf: pdf, metrics: metrics, logger: logger}
}

// TimetablePDF renders the timetable as a single-table PDF.
func (s *ExportService) TimetablePDF(tt *models.Timetable) ([]byte, error) {
	if tt == nil {
		return nil, appErrors.Clone(appErrors.ErrInternal, "timetable is nil")
	}
	start := time.Now()
	payload, err := s.pdf.Render(TimetableDataset(tt), "")
	s.metrics.ObserveRender(time.Since(start))
	if err != nil {
		s.logger.Error("timetable pdf render failed", zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render timetable")
	}
	return payload, nil
}

// TimetableDataset lays out one row per day with a "Day/Period" column followed by P1..Pn.
func TimetableDataset(tt *models.Timetable) export.Dataset {
	headers := make([]string, 0, tt.PeriodsPerDay+1)
	headers = append(headers, cornerHeader)
	for p := 0; p < tt.PeriodsPerDay; p++ {
		headers = append(headers, periodLabel(p))
	}

	rows := make([]map[string]string, 0, len(tt.Days))
	for _, day := range tt.Days {
		row := map[string]string{cornerHeader: day}
		for p := 0; p < tt.PeriodsPerDay; p++ {
			row[periodLabel(p)] = SlotLabel(slotAt(tt, day, p))
		}
		rows = append(rows, row)
	}
	return export.Dataset{Headers: headers, Rows: rows}
}

// SlotLabel renders "Free" or "<subject>\n(<teacher>)".
func SlotLabel(slot models.Slot) string {
	if slot.Free() {
		return freeLabel
	}
	return fmt.Sprintf("%s\n(%s)", slot.Entry.Subject, slot.Entry.Teacher)
}

func slotAt(tt *models.Timetable, day string, period int) models.Slot {
	slot, _ := tt.At(day, period)
	return slot
}

func periodLabel(period int) string {
	return fmt.Sprintf("P%d", period+1)
}
