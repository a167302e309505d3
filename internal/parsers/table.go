package parsers

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"insurance-reconciliation-service/internal/models"
	"insurance-reconciliation-service/pkg/errors"
	"insurance-reconciliation-service/pkg/logger"
)

// ParseStats reports what happened while reading one file.
type ParseStats struct {
	RowsParsed  int
	RowsSkipped int
	Warnings    []string
}

// TableParser reads CSV files into tables under a TableConfig.
type TableParser struct {
	config *TableConfig
	log    logger.Logger
}

// NewTableParser creates a parser for one table kind.
func NewTableParser(config *TableConfig) (*TableParser, error) {
	if config == nil {
		return nil, errors.New(errors.CategoryConfiguration, errors.CodeInvalidConfig, "table config is nil")
	}
	if err := config.Validate(); err != nil {
		return nil, errors.Wrap(err, errors.CategoryConfiguration, errors.CodeInvalidConfig, "invalid table config")
	}
	return &TableParser{
		config: config,
		log:    logger.GetGlobalLogger().WithComponent("parsers").WithField("table", config.Name),
	}, nil
}

// ParseFile reads a CSV file into a table.
func (p *TableParser) ParseFile(path string) (*models.Table, *ParseStats, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, errors.Wrap(err, errors.CategoryFile, errors.CodeFileNotFound,
				fmt.Sprintf("file not found: %s", path)).
				WithSuggestion("check the file path and try again")
		}
		return nil, nil, errors.Wrap(err, errors.CategoryFile, errors.CodeFilePermission,
			fmt.Sprintf("cannot open file: %s", path))
	}
	defer f.Close()

	table, stats, parseErr := p.Parse(f)
	if parseErr != nil {
		return nil, nil, parseErr
	}

	p.log.WithFields(logger.Fields{
		"file":    path,
		"rows":    stats.RowsParsed,
		"skipped": stats.RowsSkipped,
		"columns": len(table.Columns),
	}).Info("Parsed table")
	return table, stats, nil
}

// Parse reads CSV content from a reader into a table.
func (p *TableParser) Parse(r io.Reader) (*models.Table, *ParseStats, error) {
	reader := csv.NewReader(r)
	reader.Comma = p.config.Delimiter
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	stats := &ParseStats{}

	header, err := reader.Read()
	if err == io.EOF {
		return models.NewTable(nil), stats, nil
	}
	if err != nil {
		return nil, nil, errors.NewParseError(errors.CodeInvalidFormat, "failed to read header row", err)
	}

	var columns []string
	if p.config.HasHeader {
		columns = p.normalizeHeader(header)
	} else {
		columns = make([]string, len(header))
		for i := range header {
			columns[i] = fmt.Sprintf("column_%d", i+1)
		}
	}
	table := models.NewTable(columns)

	if !p.config.HasHeader {
		p.appendRow(table, columns, header, stats)
	}

	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			stats.RowsSkipped++
			stats.Warnings = append(stats.Warnings, fmt.Sprintf("line %d: %v", line, err))
			continue
		}
		p.appendRow(table, columns, record, stats)
	}

	return table, stats, nil
}

func (p *TableParser) appendRow(table *models.Table, columns, record []string, stats *ParseStats) {
	row := make(models.Row, len(columns))
	for i, column := range columns {
		value := ""
		if i < len(record) {
			value = record[i]
			if p.config.TrimSpace {
				value = strings.TrimSpace(value)
			}
		}
		row[column] = value
	}
	table.AddRow(row)
	stats.RowsParsed++
}

// normalizeHeader trims header cells, applies configured aliases and, for
// the internal table, converts legacy export headers to the current
// format.
func (p *TableParser) normalizeHeader(header []string) []string {
	columns := make([]string, len(header))
	for i, h := range header {
		name := strings.TrimSpace(h)
		if alias, ok := p.lookupAlias(name); ok {
			name = alias
		}
		columns[i] = name
	}

	if p.config.Name == "internal" {
		columns = p.renameLegacyHeaders(columns)
	}
	return columns
}

func (p *TableParser) lookupAlias(name string) (string, bool) {
	if len(p.config.ColumnAliases) == 0 {
		return "", false
	}
	lowered := strings.ToLower(name)
	for alias, target := range p.config.ColumnAliases {
		if strings.ToLower(alias) == lowered {
			return target, true
		}
	}
	return "", false
}

// renameLegacyHeaders converts an old-format internal export when the
// legacy marker column is present and the current form is not.
func (p *TableParser) renameLegacyHeaders(columns []string) []string {
	hasMarker := false
	hasCurrent := false
	for _, c := range columns {
		if c == legacyMarkerColumn {
			hasMarker = true
		}
		if c == legacyInternalHeaders[legacyMarkerColumn] {
			hasCurrent = true
		}
	}
	if !hasMarker || hasCurrent {
		return columns
	}

	renamed := 0
	for i, c := range columns {
		if target, ok := legacyInternalHeaders[c]; ok {
			columns[i] = target
			renamed++
		}
	}
	p.log.WithField("renamed", renamed).Info("Converted legacy internal header format")
	return columns
}
