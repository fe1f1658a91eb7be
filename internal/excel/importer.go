package excel

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/example/wortkarten/internal/deck"
	"github.com/example/wortkarten/pkg/models"
	"github.com/xuri/excelize/v2"
)

// ImportConfig defines the import configuration
type ImportConfig struct {
	FilePath  string    // Path to the Excel or CSV file
	Columns   [7]string // German, English 1-3, Example 1-3
	SheetName string    // Name of the sheet to import
	StartRow  int       // The row to start importing from (1-based index)
}

// DefaultImportConfig returns the default import configuration
func DefaultImportConfig(path string) ImportConfig {
	return ImportConfig{
		FilePath:  path,
		Columns:   [7]string{"A", "B", "C", "D", "E", "F", "G"},
		SheetName: DefaultSheet,
		StartRow:  2, // By default, start from the second row (skip header)
	}
}

// ImportResult holds the result of an import operation
type ImportResult struct {
	TotalProcessed int
	Created        int
	Updated        int
	Skipped        int
	Errors         []string
}

// Import reads flashcards from an Excel or CSV file into the store.
// Existing words are updated field by field, new words are appended and
// invalid rows are skipped. The caller saves the store.
func Import(store *deck.Store, config ImportConfig) (*ImportResult, error) {
	rows, err := readRows(config)
	if err != nil {
		return nil, err
	}

	result := &ImportResult{
		Errors: make([]string, 0),
	}

	for i, row := range rows {
		rowNum := i + 1
		// Skip header rows
		if rowNum < config.StartRow {
			continue
		}
		if isBlank(row) {
			continue
		}

		result.TotalProcessed++
		if err := processRow(store, draftFromRow(row, config), result); err != nil {
			result.Skipped++
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: %v", rowNum, err))
		}
	}

	return result, nil
}

// readRows loads every row of the sheet or CSV file
func readRows(config ImportConfig) ([][]string, error) {
	if strings.ToLower(filepath.Ext(config.FilePath)) == ".csv" {
		return readCSV(config.FilePath)
	}

	f, err := excelize.OpenFile(config.FilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %v", err)
	}
	defer f.Close()

	sheet := config.SheetName
	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to get rows: %v", err)
	}
	return rows, nil
}

func readCSV(path string) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %v", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1 // Allow variable number of fields
	reader.LazyQuotes = true

	var rows [][]string
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error reading CSV: %v", err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func draftFromRow(row []string, config ImportConfig) models.Draft {
	var cells [7]string
	for i, column := range config.Columns {
		if column == "" {
			continue
		}
		if colIdx := columnToIndex(column); colIdx < len(row) {
			cells[i] = row[colIdx]
		}
	}
	return models.Draft{
		German:   cells[0],
		English1: cells[1],
		English2: cells[2],
		English3: cells[3],
		Example1: cells[4],
		Example2: cells[5],
		Example3: cells[6],
	}
}

// processRow updates the matching card or creates a new one
func processRow(store *deck.Store, draft models.Draft, result *ImportResult) error {
	if existing, ok := store.FindByGerman(draft.German); ok {
		// keep the stored spelling of the word
		draft.German = ""
		existing.Apply(draft)
		result.Updated++
		return nil
	}

	card, err := draft.Flashcard()
	if err != nil {
		return err
	}
	store.Add(card)
	result.Created++
	return nil
}

func isBlank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// Helper function to convert Excel column letter to index
func columnToIndex(column string) int {
	column = strings.ToUpper(column)
	index := 0
	for i := 0; i < len(column); i++ {
		index = index*26 + int(column[i]-'A'+1)
	}
	return index - 1
}
