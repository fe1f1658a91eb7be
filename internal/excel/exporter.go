// Package excel exchanges flashcards with spreadsheets (.xlsx and .csv).
package excel

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/example/wortkarten/pkg/models"
	"github.com/xuri/excelize/v2"
)

// DefaultSheet is the sheet written by Export and read by default
const DefaultSheet = "Sheet1"

// Header is the first row of every exported file
var Header = []string{"German", "English 1", "English 2", "English 3", "Example 1", "Example 2", "Example 3"}

// Export writes the cards to path, as CSV when the extension is .csv and as
// an Excel workbook otherwise
func Export(cards []*models.Flashcard, path string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %v", path, err)
	}
	defer file.Close()

	if strings.ToLower(filepath.Ext(path)) == ".csv" {
		err = WriteCSV(cards, file)
	} else {
		err = WriteXLSX(cards, file)
	}
	if err != nil {
		return err
	}
	return file.Close()
}

// WriteXLSX renders the cards as an Excel workbook
func WriteXLSX(cards []*models.Flashcard, w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetRow(DefaultSheet, "A1", &Header); err != nil {
		return fmt.Errorf("failed to write header: %v", err)
	}
	for i, card := range cards {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := record(card)
		if err := f.SetSheetRow(DefaultSheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write %q: %v", card.German, err)
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %v", err)
	}
	return nil
}

// WriteCSV renders the cards as CSV with a header row
func WriteCSV(cards []*models.Flashcard, w io.Writer) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(Header); err != nil {
		return err
	}
	for _, card := range cards {
		if err := writer.Write(record(card)); err != nil {
			return fmt.Errorf("failed to write %q: %v", card.German, err)
		}
	}
	writer.Flush()
	return writer.Error()
}

func record(card *models.Flashcard) []string {
	return []string{
		card.German,
		card.English[0], card.English[1], card.English[2],
		card.Examples[0], card.Examples[1], card.Examples[2],
	}
}
