package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"

	"github.com/marisa-playground/labeling-service/internal/models"
	"github.com/marisa-playground/labeling-service/internal/repository"
)

const (
	ExportFormatJSON = "json"
	ExportFormatCSV  = "csv"
	ExportFormatXLSX = "xlsx"
)

// Фиксированные колонки плоских форматов; дальше идут колонки-вопросы.
var exportFixedColumns = []string{"file_name", "file_type", "file_url", "consolidated_at", "notes"}

type ExportService interface {
	ExportJSON(ctx context.Context, poolID string) ([]models.ExportRecord, error)
	ExportCSV(ctx context.Context, poolID string) ([]byte, error)
	ExportXLSX(ctx context.Context, poolID string) ([]byte, error)
}

type exportService struct {
	poolRepo repository.PoolRepository
	taskRepo repository.TaskRepository
	logger   zerolog.Logger
}

func NewExportService(poolRepo repository.PoolRepository, taskRepo repository.TaskRepository, logger zerolog.Logger) ExportService {
	return &exportService{
		poolRepo: poolRepo,
		taskRepo: taskRepo,
		logger:   logger,
	}
}

func (s *exportService) buildRecords(ctx context.Context, poolID string) ([]models.ExportRecord, []string, error) {
	exists, err := s.poolRepo.Exists(ctx, poolID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to check pool existence: %w", err)
	}
	if !exists {
		return nil, nil, errors.New("pool not found")
	}

	rows, err := s.taskRepo.GetExportRows(ctx, poolID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get export rows: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil, errors.New("nothing consolidated")
	}

	records, questions := AssembleExportRecords(rows)
	return records, questions, nil
}

// AssembleExportRecords сворачивает join-строки в записи по задачам и
// возвращает объединение текстов вопросов по всем задачам (порядок
// стабильный). Задача без ответа на какой-то вопрос просто не имеет этого
// поля в своей карте.
func AssembleExportRecords(rows []repository.ExportRow) ([]models.ExportRecord, []string) {
	var records []models.ExportRecord
	index := make(map[string]int)
	questionSet := make(map[string]bool)
	var questions []string

	for _, row := range rows {
		i, ok := index[row.TaskID]
		if !ok {
			records = append(records, models.ExportRecord{
				FileName:       row.FileName,
				FileType:       row.FileType,
				FileURL:        row.FileURL,
				ConsolidatedAt: row.ConsolidatedAt,
				Notes:          row.Notes,
				Answers:        make(map[string]string),
			})
			i = len(records) - 1
			index[row.TaskID] = i
		}

		if row.QuestionText == "" {
			continue
		}
		if !questionSet[row.QuestionText] {
			questionSet[row.QuestionText] = true
			questions = append(questions, row.QuestionText)
		}

		value := row.Value
		if value == "" {
			value = row.FreeText
		}
		records[i].Answers[row.QuestionText] = value
	}

	sort.Strings(questions)
	return records, questions
}

func (s *exportService) ExportJSON(ctx context.Context, poolID string) ([]models.ExportRecord, error) {
	records, _, err := s.buildRecords(ctx, poolID)
	return records, err
}

func (s *exportService) ExportCSV(ctx context.Context, poolID string) ([]byte, error) {
	records, questions, err := s.buildRecords(ctx, poolID)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	header := append(append([]string{}, exportFixedColumns...), questions...)
	if err := writer.Write(header); err != nil {
		return nil, fmt.Errorf("failed to write csv header: %w", err)
	}

	for _, record := range records {
		row := flattenRecord(record, questions)
		if err := writer.Write(row); err != nil {
			return nil, fmt.Errorf("failed to write csv row: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("failed to flush csv: %w", err)
	}

	return buf.Bytes(), nil
}

func (s *exportService) ExportXLSX(ctx context.Context, poolID string) ([]byte, error) {
	records, questions, err := s.buildRecords(ctx, poolID)
	if err != nil {
		return nil, err
	}

	file := excelize.NewFile()
	defer file.Close()

	const sheet = "Consolidated"
	if err := file.SetSheetName("Sheet1", sheet); err != nil {
		return nil, fmt.Errorf("failed to rename sheet: %w", err)
	}

	header := append(append([]string{}, exportFixedColumns...), questions...)
	for col, name := range header {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return nil, err
		}
		if err := file.SetCellValue(sheet, cell, name); err != nil {
			return nil, err
		}
	}

	for i, record := range records {
		row := flattenRecord(record, questions)
		for col, value := range row {
			cell, err := excelize.CoordinatesToCellName(col+1, i+2)
			if err != nil {
				return nil, err
			}
			if err := file.SetCellValue(sheet, cell, value); err != nil {
				return nil, err
			}
		}
	}

	var buf bytes.Buffer
	if err := file.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to write xlsx: %w", err)
	}

	return buf.Bytes(), nil
}

func flattenRecord(record models.ExportRecord, questions []string) []string {
	row := []string{
		record.FileName,
		record.FileType,
		record.FileURL,
		record.ConsolidatedAt.Format(time.RFC3339),
		record.Notes,
	}
	for _, question := range questions {
		row = append(row, record.Answers[question])
	}
	return row
}
