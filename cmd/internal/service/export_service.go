package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"leadfinder/cmd/internal/domain/entity"
	"leadfinder/cmd/internal/infrastructure/export"
	"leadfinder/cmd/internal/logging"
)

var ErrNothingToExport = errors.New("no companies to export")

// Uploader copies finished exports to remote storage.
type Uploader interface {
	Upload(ctx context.Context, data []byte, filename string) (string, error)
}

type ExportResult struct {
	Path      string
	Count     int
	RemoteKey string
}

type ExportService struct {
	OutputDir string
	History   HistoryRepository
	Uploader  Uploader
	Logger    logging.Logger
	Now       func() time.Time
}

// NewExportService writes exports under outputDir. uploader may be nil.
func NewExportService(outputDir string, history HistoryRepository, uploader Uploader, logger logging.Logger) *ExportService {
	return &ExportService{
		OutputDir: outputDir,
		History:   history,
		Uploader:  uploader,
		Logger:    logger,
		Now:       time.Now,
	}
}

func (e *ExportService) ExportCSV(ctx context.Context, companies []*entity.Company) (*ExportResult, error) {
	return e.write(ctx, export.KindCSV, len(companies), func(w io.Writer) error {
		return export.WriteCSV(w, companies)
	})
}

func (e *ExportService) ExportHubSpot(ctx context.Context, companies []*entity.Company) (*ExportResult, error) {
	return e.write(ctx, export.KindHubSpot, len(companies), func(w io.Writer) error {
		return export.WriteHubSpot(w, companies)
	})
}

func (e *ExportService) ExportOutreach(ctx context.Context, companies []*entity.Company, emails []string) (*ExportResult, error) {
	if len(companies) != len(emails) {
		return nil, fmt.Errorf("invalid data for outreach email export: %d companies, %d emails", len(companies), len(emails))
	}
	return e.write(ctx, export.KindOutreach, len(companies), func(w io.Writer) error {
		return export.WriteOutreach(w, companies, emails)
	})
}

func (e *ExportService) write(ctx context.Context, kind string, count int, render func(io.Writer) error) (*ExportResult, error) {
	if count == 0 {
		return nil, ErrNothingToExport
	}

	var buf bytes.Buffer
	if err := render(&buf); err != nil {
		return nil, fmt.Errorf("render %s export: %w", kind, err)
	}

	if err := os.MkdirAll(e.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	now := e.Now()
	path := filepath.Join(e.OutputDir, export.FileName(kind, now))
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return nil, fmt.Errorf("write %s: %w", path, err)
	}

	err := e.History.RecordExport(&entity.ExportRecord{
		ExportType:  kind,
		FilePath:    path,
		RecordCount: count,
		ExportedAt:  now.UnixMilli(),
	})
	if err != nil {
		e.Logger.Errorf("failed to record %s export: %v", kind, err)
	}

	result := &ExportResult{Path: path, Count: count}
	if e.Uploader != nil {
		key, err := e.Uploader.Upload(ctx, buf.Bytes(), filepath.Base(path))
		if err != nil {
			e.Logger.Errorf("failed to upload %s: %v", path, err)
		} else {
			result.RemoteKey = key
		}
	}

	e.Logger.Infof("Exported %d records to %s", count, path)
	return result, nil
}
