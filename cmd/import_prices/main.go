package main

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/ledongthuc/pdf"
	"gorm.io/gorm"

	"menucost/internal/config"
	"menucost/internal/db"
	"menucost/internal/units"
	"menucost/models"
)

// priceLinePattern matches supplier price-list lines of the form
// "Olive Oil Extra Virgin  lt  6,50" as they come out of PDF extraction.
var priceLinePattern = regexp.MustCompile(`(?i)^(.+?)\s+(kg|g|lt|ml)\s+([0-9]+(?:[.,][0-9]+)?)\s*$`)

type priceRecord struct {
	Name         string
	Category     string
	Unit         string
	PricePerUnit float64
}

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: import_prices <price-list.csv|price-list.pdf>")
		os.Exit(1)
	}

	if err := run(os.Args[1]); err != nil {
		fmt.Fprintf(os.Stderr, "import failed: %v\n", err)
		os.Exit(1)
	}
}

func run(path string) error {
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("price list path must not be empty")
	}

	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("locate price list: %w", err)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	database, err := db.Initialize(cfg.Database)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}

	if err := db.AutoMigrate(database); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	records, skipped, err := readPriceList(path)
	if err != nil {
		return fmt.Errorf("read price list: %w", err)
	}

	imported := 0
	for idx, record := range records {
		if err := database.Transaction(func(tx *gorm.DB) error {
			return upsertIngredient(tx, record)
		}); err != nil {
			return fmt.Errorf("record %d (%s): %w", idx+1, record.Name, err)
		}
		imported++
	}

	fmt.Fprintf(os.Stdout, "Imported %d ingredient prices from %s (%d lines skipped)\n",
		imported, filepath.Base(path), skipped)
	return nil
}

func upsertIngredient(tx *gorm.DB, record priceRecord) error {
	var existing models.Ingredient
	err := tx.Where("lower(name) = ?", strings.ToLower(record.Name)).First(&existing).Error
	switch {
	case err == nil:
		updates := map[string]any{
			"unit":           record.Unit,
			"price_per_unit": record.PricePerUnit,
		}
		if record.Category != "" {
			updates["category"] = record.Category
		}
		if err := tx.Model(&existing).Updates(updates).Error; err != nil {
			return fmt.Errorf("update ingredient %q: %w", record.Name, err)
		}
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		ingredient := models.Ingredient{
			Name:         record.Name,
			Category:     record.Category,
			Unit:         record.Unit,
			PricePerUnit: record.PricePerUnit,
		}
		if err := tx.Create(&ingredient).Error; err != nil {
			return fmt.Errorf("create ingredient %q: %w", record.Name, err)
		}
		return nil
	default:
		return fmt.Errorf("find ingredient %q: %w", record.Name, err)
	}
}

func readPriceList(path string) ([]priceRecord, int, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return readCSV(path)
	case ".pdf":
		return readPDF(path)
	default:
		return nil, 0, fmt.Errorf("unsupported price list format %q", filepath.Ext(path))
	}
}

func readCSV(path string) ([]priceRecord, int, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, 0, err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.TrimLeadingSpace = true
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, 0, err
	}

	if len(rows) == 0 {
		return nil, 0, errors.New("csv is empty")
	}

	header := rows[0]
	column := make(map[string]int, len(header))
	for idx, key := range header {
		column[strings.ToLower(strings.TrimSpace(key))] = idx
	}
	for _, required := range []string{"name", "unit", "price"} {
		if _, ok := column[required]; !ok {
			return nil, 0, fmt.Errorf("csv missing %q column", required)
		}
	}

	cell := func(row []string, key string) string {
		idx, ok := column[key]
		if !ok || idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}

	records := make([]priceRecord, 0, len(rows)-1)
	skipped := 0
	for _, row := range rows[1:] {
		if len(row) == 0 {
			continue
		}

		record, err := buildRecord(cell(row, "name"), cell(row, "category"), cell(row, "unit"), cell(row, "price"))
		if err != nil {
			skipped++
			continue
		}
		records = append(records, record)
	}

	return records, skipped, nil
}

func readPDF(path string) ([]priceRecord, int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, 0, err
	}

	text, err := extractTextFromPDF(data)
	if err != nil {
		return nil, 0, err
	}

	records, skipped := parsePriceLines(text)
	return records, skipped, nil
}

func extractTextFromPDF(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}
	var builder strings.Builder
	numPages := reader.NumPage()
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return "", err
		}
		builder.WriteString(text)
		builder.WriteString("\n")
	}
	return builder.String(), nil
}

// parsePriceLines scans extracted PDF text line by line. Supplier lists
// mix headings, totals, and footers in with the actual rows, so anything
// that does not look like "<name> <unit> <price>" is counted as skipped.
func parsePriceLines(text string) ([]priceRecord, int) {
	var records []priceRecord
	skipped := 0
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		match := priceLinePattern.FindStringSubmatch(line)
		if match == nil {
			skipped++
			continue
		}

		record, err := buildRecord(match[1], "", match[2], match[3])
		if err != nil {
			skipped++
			continue
		}
		records = append(records, record)
	}
	return records, skipped
}

func buildRecord(name, category, unit, price string) (priceRecord, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return priceRecord{}, errors.New("name must not be empty")
	}

	normalized := units.Normalize(unit)
	if !units.IsMetricUnit(normalized) {
		return priceRecord{}, fmt.Errorf("unknown unit %q", unit)
	}

	value, err := parsePrice(price)
	if err != nil {
		return priceRecord{}, err
	}
	if value < 0 {
		return priceRecord{}, fmt.Errorf("negative price %q", price)
	}

	return priceRecord{
		Name:         name,
		Category:     strings.TrimSpace(category),
		Unit:         normalized,
		PricePerUnit: value,
	}, nil
}

// parsePrice accepts both dot and comma decimal separators, since
// European supplier lists typically use the latter.
func parsePrice(value string) (float64, error) {
	value = strings.TrimSpace(strings.ReplaceAll(value, ",", "."))
	if value == "" {
		return 0, errors.New("price must not be empty")
	}
	return strconv.ParseFloat(value, 64)
}
