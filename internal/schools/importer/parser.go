package importer

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"backoffice_backend/internal/schools/domain"
	"backoffice_backend/platform/apperr"
)

// Row is one parsed spreadsheet row with its source line for error reports.
type Row struct {
	Line   int
	School domain.School
}

// accentFolder strips the diacritics that appear in Chilean column headers
// and data exports.
var accentFolder = strings.NewReplacer(
	"á", "a", "é", "e", "í", "i", "ó", "o", "ú", "u",
	"Á", "a", "É", "e", "Í", "i", "Ó", "o", "Ú", "u",
	"ñ", "n", "Ñ", "n", "ü", "u", "Ü", "u",
)

// foldHeader normalizes a header cell so "Región", "region" and " REGION "
// all address the same column.
func foldHeader(header string) string {
	return strings.ToLower(strings.TrimSpace(accentFolder.Replace(header)))
}

// columnAliases maps folded header names to canonical columns.
var columnAliases = map[string]string{
	"rbd":       "rbd",
	"nombre":    "nombre",
	"colegio":   "nombre",
	"region":    "region",
	"comuna":    "comuna",
	"direccion": "direccion",
	"telefono":  "telefono",
	"email":     "email",
	"correo":    "email",
}

// Parse reads the upload into rows based on the file extension. The content
// is already fully in memory; the read timeout is enforced by the caller.
func Parse(fileName string, content []byte) ([]Row, error) {
	switch {
	case strings.HasSuffix(strings.ToLower(fileName), ".csv"):
		return parseCSV(bytes.NewReader(content))
	case strings.HasSuffix(strings.ToLower(fileName), ".xlsx"),
		strings.HasSuffix(strings.ToLower(fileName), ".xls"):
		return parseXLSX(bytes.NewReader(content))
	default:
		return nil, apperr.Validation(fmt.Sprintf("unsupported file type: %s", fileName))
	}
}

func parseCSV(r io.Reader) ([]Row, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, apperr.Validation("could not parse CSV: " + err.Error())
	}
	return rowsFromRecords(records)
}

func parseXLSX(r io.Reader) ([]Row, error) {
	file, err := excelize.OpenReader(r)
	if err != nil {
		return nil, apperr.Validation("could not open spreadsheet: " + err.Error())
	}
	defer file.Close()

	sheets := file.GetSheetList()
	if len(sheets) == 0 {
		return nil, apperr.Validation("spreadsheet has no sheets")
	}

	records, err := file.GetRows(sheets[0])
	if err != nil {
		return nil, apperr.Validation("could not read spreadsheet rows: " + err.Error())
	}
	return rowsFromRecords(records)
}

// rowsFromRecords maps the header row onto canonical columns and builds one
// School per data row. Rows without an RBD or name are skipped here; the
// caller reports them as failures.
func rowsFromRecords(records [][]string) ([]Row, error) {
	if len(records) == 0 {
		return nil, apperr.Validation("the file is empty")
	}

	columns := map[string]int{}
	for i, header := range records[0] {
		if canonical, ok := columnAliases[foldHeader(header)]; ok {
			if _, taken := columns[canonical]; !taken {
				columns[canonical] = i
			}
		}
	}
	if _, ok := columns["rbd"]; !ok {
		return nil, apperr.Validation("the file has no RBD column")
	}
	if _, ok := columns["nombre"]; !ok {
		return nil, apperr.Validation("the file has no Nombre column")
	}

	cell := func(record []string, column string) string {
		index, ok := columns[column]
		if !ok || index >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[index])
	}

	rows := make([]Row, 0, len(records)-1)
	for i, record := range records[1:] {
		if len(record) == 0 {
			continue
		}
		school := domain.School{
			RBD:     cell(record, "rbd"),
			Name:    cell(record, "nombre"),
			Region:  cell(record, "region"),
			Comuna:  cell(record, "comuna"),
			Address: cell(record, "direccion"),
			Phone:   cell(record, "telefono"),
			Email:   cell(record, "email"),
		}
		if school.RBD == "" && school.Name == "" {
			continue
		}
		rows = append(rows, Row{Line: i + 2, School: school})
	}

	return rows, nil
}
