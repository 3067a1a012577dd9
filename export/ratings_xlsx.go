package export

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/xuri/excelize/v2"

	"ratingserver/internal/domain/repositories"
)

var ratingHeaders = []string{"Провайдер", "Рейтинг", "Отзывов", "Источник", "Обновлено (UTC)"}

// WriteRatingsXLSX записывает рейтинги в xlsx: по листу на каждый вид, листы по алфавиту
func WriteRatingsXLSX(w io.Writer, kinds map[string][]repositories.RatingRecord) error {
	f := excelize.NewFile()
	defer f.Close()

	names := make([]string, 0, len(kinds))
	for kind := range kinds {
		names = append(names, kind)
	}
	sort.Strings(names)

	if len(names) == 0 {
		names = append(names, "ratings")
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	for i, kind := range names {
		if i == 0 {
			if err := f.SetSheetName("Sheet1", kind); err != nil {
				return fmt.Errorf("failed to rename sheet: %w", err)
			}
		} else if _, err := f.NewSheet(kind); err != nil {
			return fmt.Errorf("failed to create sheet %s: %w", kind, err)
		}

		if err := writeRatingSheet(f, kind, kinds[kind], headerStyle); err != nil {
			return err
		}
	}

	f.SetActiveSheet(0)

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write xlsx: %w", err)
	}
	return nil
}

func writeRatingSheet(f *excelize.File, sheet string, records []repositories.RatingRecord, headerStyle int) error {
	for i, header := range ratingHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, header); err != nil {
			return fmt.Errorf("failed to write header: %w", err)
		}
		if err := f.SetCellStyle(sheet, cell, cell, headerStyle); err != nil {
			return fmt.Errorf("failed to style header: %w", err)
		}
	}

	for i, record := range records {
		row := i + 2
		values := []interface{}{
			record.ProviderKey,
			record.Value,
			record.ReviewCount,
			record.Source,
			record.LastUpdated.UTC().Format(time.RFC3339),
		}
		for col, value := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return fmt.Errorf("failed to write %s row %d: %w", sheet, row, err)
			}
		}
	}

	for i := range ratingHeaders {
		col, _ := excelize.ColumnNumberToName(i + 1)
		if err := f.SetColWidth(sheet, col, col, 18); err != nil {
			return fmt.Errorf("failed to set column width: %w", err)
		}
	}
	return nil
}
