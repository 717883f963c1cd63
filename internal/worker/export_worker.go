package worker

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"lendit/internal/config"
	"lendit/internal/models"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"
)

// BookingReporter supplies the rows for a bookings report.
type BookingReporter interface {
	ListBookingRows(ctx context.Context, from, to time.Time) ([]models.BookingExportRow, error)
}

// ExportWorker consumes export requests from a bounded queue and
// writes xlsx booking reports. Failed exports are retried with
// exponential backoff before being dropped.
type ExportWorker struct {
	reporter    BookingReporter
	cfg         config.ExportConfig
	retryPolicy RetryPolicy
	queue       chan models.ExportRequest
	logger      *zerolog.Logger
}

func NewExportWorker(reporter BookingReporter, cfg config.ExportConfig, retry RetryPolicy, logger *zerolog.Logger) *ExportWorker {
	if retry.MaxRetries == 0 {
		retry.MaxRetries = 3
	}
	if retry.InitialDelay == 0 {
		retry.InitialDelay = 2 * time.Second
	}
	if retry.MaxDelay == 0 {
		retry.MaxDelay = time.Minute
	}
	if retry.BackoffFactor == 0 {
		retry.BackoffFactor = 2
	}

	return &ExportWorker{
		reporter:    reporter,
		cfg:         cfg,
		retryPolicy: retry,
		queue:       make(chan models.ExportRequest, models.ExportQueueSize),
		logger:      logger,
	}
}

// Enqueue schedules an export. It never blocks; a full queue is an
// error surfaced to the caller.
func (w *ExportWorker) Enqueue(req models.ExportRequest) error {
	if !req.From.Before(req.To) {
		return fmt.Errorf("export period must start before it ends")
	}
	select {
	case w.queue <- req:
		return nil
	default:
		return fmt.Errorf("export queue is full")
	}
}

// Start consumes the queue until ctx is done.
func (w *ExportWorker) Start(ctx context.Context) {
	w.logger.Info().Msg("export worker started")
	defer w.logger.Info().Msg("export worker stopped")

	for {
		select {
		case <-ctx.Done():
			return
		case req := <-w.queue:
			w.process(ctx, req)
		}
	}
}

func (w *ExportWorker) process(ctx context.Context, req models.ExportRequest) {
	for attempt := 1; ; attempt++ {
		path, err := w.Export(ctx, req)
		if err == nil {
			w.logger.Info().Str("file_path", path).Int64("requested_by", req.RequestedBy).Msg("bookings report created")
			return
		}

		if attempt >= w.retryPolicy.MaxRetries {
			w.logger.Error().Err(err).Int("attempts", attempt).Msg("export failed, giving up")
			return
		}

		delay := w.retryPolicy.NextDelay(attempt)
		w.logger.Warn().Err(err).Dur("retry_in", delay).Msg("export failed, will retry")
		select {
		case <-ctx.Done():
			return
		case <-time.After(delay):
		}
	}
}

// Export writes one report synchronously and returns the file path.
func (w *ExportWorker) Export(ctx context.Context, req models.ExportRequest) (string, error) {
	if err := os.MkdirAll(w.cfg.Path, 0o755); err != nil {
		return "", fmt.Errorf("error creating export directory: %v", err)
	}

	rows, err := w.reporter.ListBookingRows(ctx, req.From, req.To)
	if err != nil {
		return "", fmt.Errorf("error getting booking rows: %v", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheetName = "Bookings"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		return "", fmt.Errorf("error creating sheet: %v", err)
	}
	f.SetActiveSheet(index)

	_ = f.SetCellValue(sheetName, "A1", fmt.Sprintf("Period: %s - %s",
		req.From.Format("2006-01-02"), req.To.Format("2006-01-02")))
	_ = f.MergeCell(sheetName, "A1", "G1")
	titleStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 14},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	_ = f.SetCellStyle(sheetName, "A1", "A1", titleStyle)

	headers := []string{"ID", "Item", "Owner", "Booker", "Start", "End", "Status"}
	headerStyle, _ := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
		Font: &excelize.Font{Bold: true},
	})
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 2)
		_ = f.SetCellValue(sheetName, cell, header)
		_ = f.SetCellStyle(sheetName, cell, cell, headerStyle)
	}

	for i, row := range rows {
		n := i + 3
		_ = f.SetCellValue(sheetName, fmt.Sprintf("A%d", n), row.BookingID)
		_ = f.SetCellValue(sheetName, fmt.Sprintf("B%d", n), row.ItemName)
		_ = f.SetCellValue(sheetName, fmt.Sprintf("C%d", n), row.OwnerName)
		_ = f.SetCellValue(sheetName, fmt.Sprintf("D%d", n), row.BookerName)
		_ = f.SetCellValue(sheetName, fmt.Sprintf("E%d", n), row.Start.Format("2006-01-02 15:04"))
		_ = f.SetCellValue(sheetName, fmt.Sprintf("F%d", n), row.End.Format("2006-01-02 15:04"))
		_ = f.SetCellValue(sheetName, fmt.Sprintf("G%d", n), string(row.Status))
	}

	_ = f.SetColWidth(sheetName, "A", "A", 8)
	_ = f.SetColWidth(sheetName, "B", "D", 20)
	_ = f.SetColWidth(sheetName, "E", "F", 18)
	_ = f.SetColWidth(sheetName, "G", "G", 12)

	_ = f.DeleteSheet("Sheet1")

	fileName := fmt.Sprintf("bookings_%s_to_%s.xlsx",
		req.From.Format("2006-01-02"), req.To.Format("2006-01-02"))
	filePath := filepath.Join(w.cfg.Path, fileName)

	if err := f.SaveAs(filePath); err != nil {
		return "", fmt.Errorf("error saving file: %v", err)
	}
	return filePath, nil
}
