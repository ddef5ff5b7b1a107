package service

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-timetable/internal/models"
	"github.com/noah-isme/sma-timetable/pkg/export"
	appErrors "github.com/noah-isme/sma-timetable/pkg/errors"
)

func sampleTimetable() *models.Timetable {
	tt := models.NewTimetable([]string{"Monday", "Tuesday"}, 4)
	tt.Assign("Monday", 0, models.Entry{Teacher: "Alice", Subject: "Math"})
	tt.Assign("Tuesday", 3, models.Entry{Teacher: "Bob", Subject: "Science"})
	return tt
}

func TestTimetableDataset(t *testing.T) {
	data := TimetableDataset(sampleTimetable())

	assert.Equal(t, []string{"Day/Period", "P1", "P2", "P3", "P4"}, data.Headers)
	require.Len(t, data.Rows, 2)
	assert.Equal(t, "Monday", data.Rows[0]["Day/Period"])
	assert.Equal(t, "Math\n(Alice)", data.Rows[0]["P1"])
	assert.Equal(t, "Free", data.Rows[0]["P2"])
	assert.Equal(t, "Tuesday", data.Rows[1]["Day/Period"])
	assert.Equal(t, "Science\n(Bob)", data.Rows[1]["P4"])
}

func TestExportServiceTimetablePDF(t *testing.T) {
	svc := NewExportService(export.NewPDFExporter(), NewMetricsService(), zap.NewNop())
	out, err := svc.TimetablePDF(sampleTimetable())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
}

type failingRenderer struct{}

func (failingRenderer) Render(data export.Dataset, title string) ([]byte, error) {
	return nil, errors.New("out of memory")
}

func TestExportServiceRenderFailure(t *testing.T) {
	svc := NewExportService(failingRenderer{}, nil, nil)
	_, err := svc.TimetablePDF(sampleTimetable())
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInternal.Code, appErrors.FromError(err).Code)

	_, err = svc.TimetablePDF(nil)
	assert.Error(t, err)
}
