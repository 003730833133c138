package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/arniesaha/portfolio-tracker/internal/domain"
)

// WealthsimpleParser parses Wealthsimple monthly statement CSV exports.
//
// Trades appear as BUY/SELL rows whose description packs the details, e.g.
//
//	NVDA - NVIDIA Corp.: Bought 5.0000 shares (executed at 2025-03-12), FX Rate: 1.4644
//	VDY - Vanguard FTSE Canadian High Dividend Yield Index ETF: Bought 50.0000 shares (executed at 2025-10-21)
//
// The statement amount is in CAD; for USD trades the per-share price is
// recovered by dividing out the FX rate.
type WealthsimpleParser struct{}

// NewWealthsimpleParser creates a Wealthsimple statement parser
func NewWealthsimpleParser() *WealthsimpleParser {
	return &WealthsimpleParser{}
}

var (
	wsActionRe   = regexp.MustCompile(`^([A-Z][A-Z0-9.]*)\s*-\s*(.+?):\s*(Bought|Sold)`)
	wsQuantityRe = regexp.MustCompile(`(?:Bought|Sold)\s+([\d.]+)\s+shares`)
	wsDateRe     = regexp.MustCompile(`executed at (\d{4}-\d{2}-\d{2})`)
	wsFxRateRe   = regexp.MustCompile(`FX Rate:\s*([\d.]+)`)
)

// Parse implements Parser
func (p *WealthsimpleParser) Parse(r io.Reader) ([]ParsedTransaction, []string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read header row: %w", err)
	}

	cols := indexColumns(header)
	for _, required := range []string{"date", "transaction", "description", "amount"} {
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

		rowType := strings.ToUpper(strings.TrimSpace(field(record, cols, "transaction")))
		if rowType != string(domain.TransactionBuy) && rowType != string(domain.TransactionSell) {
			continue
		}

		description := field(record, cols, "description")
		symbol, companyName, quantity, executedDate, fxRate, ok := parseDescription(description)
		if !ok {
			warnings = append(warnings, fmt.Sprintf("row %d: could not parse description %q, skipped", line, description))
			continue
		}

		amount, err := decimal.NewFromString(strings.TrimSpace(field(record, cols, "amount")))
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("row %d (%s): unparseable amount, skipped", line, symbol))
			continue
		}
		if quantity.IsZero() {
			warnings = append(warnings, fmt.Sprintf("row %d (%s): zero quantity, skipped", line, symbol))
			continue
		}

		// Statement amounts are CAD. With an FX rate the trade settled in
		// USD, so divide it back out to get the native per-share price.
		price := amount.Abs().Div(quantity)
		currency := "CAD"
		if !fxRate.IsZero() {
			price = price.Div(fxRate)
			currency = "USD"
		}
		price = price.Round(4)

		// The execution date inside the description is the trade date; the
		// row date is the settlement date.
		date := executedDate
		if date == "" {
			date = strings.TrimSpace(field(record, cols, "date"))
		}

		txns = append(txns, ParsedTransaction{
			Symbol:          symbol,
			CompanyName:     companyName,
			TransactionType: domain.TransactionType(rowType),
			Quantity:        quantity,
			PricePerShare:   price,
			Fees:            decimal.Zero,
			TransactionDate: date,
			Currency:        currency,
		})
	}

	return txns, warnings, nil
}

// parseDescription pulls the trade details out of a statement description.
// ok is false when the description does not describe a share trade.
func parseDescription(description string) (symbol, companyName string, quantity decimal.Decimal, executedDate string, fxRate decimal.Decimal, ok bool) {
	m := wsActionRe.FindStringSubmatch(description)
	if m == nil {
		return "", "", decimal.Zero, "", decimal.Zero, false
	}
	symbol = m[1]
	companyName = strings.TrimSpace(m[2])

	qm := wsQuantityRe.FindStringSubmatch(description)
	if qm == nil {
		return "", "", decimal.Zero, "", decimal.Zero, false
	}
	quantity, err := decimal.NewFromString(qm[1])
	if err != nil {
		return "", "", decimal.Zero, "", decimal.Zero, false
	}

	if dm := wsDateRe.FindStringSubmatch(description); dm != nil {
		executedDate = dm[1]
	}

	if fm := wsFxRateRe.FindStringSubmatch(description); fm != nil {
		if fx, err := decimal.NewFromString(fm[1]); err == nil {
			fxRate = fx
		}
	}

	return symbol, companyName, quantity, executedDate, fxRate, true
}
