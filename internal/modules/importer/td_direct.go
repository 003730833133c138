package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/arniesaha/portfolio-tracker/internal/domain"
)

// TDDirectParser parses TD Direct Investing activity CSV exports.
//
// The export has a header row; columns are located by name so reordered
// exports still parse. Rows whose activity is not a buy or sell (dividends,
// transfers, fees) are ignored.
type TDDirectParser struct{}

// NewTDDirectParser creates a TD Direct Investing parser
func NewTDDirectParser() *TDDirectParser {
	return &TDDirectParser{}
}

// tdDateFormats are the date layouts seen across TD activity exports.
var tdDateFormats = []string{"2006-01-02", "01/02/2006", "02 Jan 2006"}

// Parse implements Parser
func (p *TDDirectParser) Parse(r io.Reader) ([]ParsedTransaction, []string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read header row: %w", err)
	}

	cols := indexColumns(header)
	for _, required := range []string{"date", "symbol", "quantity", "price"} {
		if _, ok := cols[required]; !ok {
			return nil, nil, fmt.Errorf("missing required column %q", required)
		}
	}

	var txns []ParsedTransaction
	var warnings []string

	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("failed to read row %d: %w", line+1, err)
		}
		line++

		activity := field(record, cols, "activity")
		if activity == "" {
			activity = field(record, cols, "transaction")
		}

		var txType domain.TransactionType
		switch strings.ToUpper(strings.TrimSpace(activity)) {
		case "BUY", "BOUGHT":
			txType = domain.TransactionBuy
		case "SELL", "SOLD":
			txType = domain.TransactionSell
		default:
			continue
		}

		symbol := strings.ToUpper(strings.TrimSpace(field(record, cols, "symbol")))
		if symbol == "" {
			warnings = append(warnings, fmt.Sprintf("row %d: missing symbol, skipped", line))
			continue
		}

		date, err := parseTDDate(field(record, cols, "date"))
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("row %d (%s): %v, skipped", line, symbol, err))
			continue
		}

		quantity, err := decimal.NewFromString(strings.TrimSpace(field(record, cols, "quantity")))
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("row %d (%s): unparseable quantity, skipped", line, symbol))
			continue
		}
		// Sell rows carry negative quantities in some exports.
		quantity = quantity.Abs()

		price, err := decimal.NewFromString(strings.TrimSpace(field(record, cols, "price")))
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("row %d (%s): unparseable price, skipped", line, symbol))
			continue
		}

		fees := decimal.Zero
		if raw := strings.TrimSpace(field(record, cols, "commission")); raw != "" {
			if f, err := decimal.NewFromString(raw); err == nil {
				fees = f.Abs()
			}
		}

		txns = append(txns, ParsedTransaction{
			Symbol:          symbol,
			CompanyName:     strings.TrimSpace(field(record, cols, "description")),
			TransactionType: txType,
			Quantity:        quantity,
			PricePerShare:   price,
			Fees:            fees,
			TransactionDate: date,
			Currency:        strings.ToUpper(strings.TrimSpace(field(record, cols, "currency"))),
		})
	}

	return txns, warnings, nil
}

// indexColumns maps lowercased header names to their positions
func indexColumns(header []string) map[string]int {
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	return cols
}

// field returns the named column from a record, or "" if absent
func field(record []string, cols map[string]int, name string) string {
	i, ok := cols[name]
	if !ok || i >= len(record) {
		return ""
	}
	return record[i]
}

func parseTDDate(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range tdDateFormats {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.Format("2006-01-02"), nil
		}
	}
	return "", fmt.Errorf("unrecognized date %q", raw)
}
