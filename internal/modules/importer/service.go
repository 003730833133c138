package importer

import (
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/arniesaha/portfolio-tracker/internal/domain"
	"github.com/arniesaha/portfolio-tracker/internal/modules/costbasis"
)

// HoldingStore is the holdings access the importer needs
type HoldingStore interface {
	GetAllActive() ([]domain.Holding, error)
	GetBySymbol(symbol string) (*domain.Holding, error)
	Create(h *domain.Holding) (int64, error)
	UpdatePosition(id int64, quantity, avgPrice decimal.Decimal) error
}

// TransactionStore is the transactions access the importer needs
type TransactionStore interface {
	GetAll() ([]domain.Transaction, error)
	Create(t *domain.Transaction) (int64, error)
}

// NamedFile pairs an uploaded file's name with its content
type NamedFile struct {
	Name   string
	Reader io.Reader
}

// Service runs the import pipeline: per-file preview, batch aggregation,
// and the confirmed commit.
type Service struct {
	holdings HoldingStore
	txns     TransactionStore
	log      zerolog.Logger
}

// NewService creates a new import service
func NewService(holdings HoldingStore, txns TransactionStore, log zerolog.Logger) *Service {
	return &Service{
		holdings: holdings,
		txns:     txns,
		log:      log.With().Str("service", "importer").Logger(),
	}
}

// PreviewFile parses one uploaded file and classifies its rows without
// writing anything: buy/sell counts, new vs existing symbols against the
// active holdings, and potential duplicates against stored transactions.
func (s *Service) PreviewFile(r io.Reader, platform string) (ImportPreview, error) {
	parser, err := GetParser(platform)
	if err != nil {
		return ImportPreview{}, err
	}

	parsed, warnings, err := parser.Parse(r)
	if err != nil {
		return ImportPreview{}, fmt.Errorf("failed to parse file: %w", err)
	}

	existing, err := s.existingSymbols()
	if err != nil {
		return ImportPreview{}, err
	}
	stored, err := s.storedTransactionKeys()
	if err != nil {
		return ImportPreview{}, err
	}

	preview := ImportPreview{
		Transactions:    []ParsedTransaction{},
		NewSymbols:      []string{},
		ExistingSymbols: []string{},
		Warnings:        warnings,
	}
	if preview.Warnings == nil {
		preview.Warnings = []string{}
	}

	seen := make(map[string]struct{})
	for _, t := range parsed {
		if err := t.Validate(); err != nil {
			preview.Warnings = append(preview.Warnings, fmt.Sprintf("%s %s: %v, excluded", t.Symbol, t.TransactionDate, err))
			continue
		}

		preview.Transactions = append(preview.Transactions, t)
		preview.TotalTransactions++
		switch t.TransactionType {
		case domain.TransactionBuy:
			preview.BuyTransactions++
		case domain.TransactionSell:
			preview.SellTransactions++
		}

		if _, dup := stored[transactionKey(t.Symbol, t.TransactionDate, t.TransactionType, t.Quantity, t.PricePerShare)]; dup {
			preview.PotentialDuplicates++
		}

		if _, ok := seen[t.Symbol]; ok {
			continue
		}
		seen[t.Symbol] = struct{}{}
		if _, ok := existing[t.Symbol]; ok {
			preview.ExistingSymbols = append(preview.ExistingSymbols, t.Symbol)
		} else {
			preview.NewSymbols = append(preview.NewSymbols, t.Symbol)
		}
	}

	return preview, nil
}

// PreviewBatch previews every uploaded file and merges the results.
// Any single file's failure aborts the whole batch: a partial aggregate
// that silently dropped one file's counts would be more misleading than an
// outright error.
func (s *Service) PreviewBatch(files []NamedFile, platform string) (ImportPreview, error) {
	previews := make([]ImportPreview, 0, len(files))
	for _, f := range files {
		p, err := s.PreviewFile(f.Reader, platform)
		if err != nil {
			return ImportPreview{}, fmt.Errorf("preview failed for %s: %w", f.Name, err)
		}
		previews = append(previews, p)
	}
	return Aggregate(previews), nil
}

// Commit parses the uploaded files again and writes the transactions,
// creating or updating holdings with the moving-average cost rule. With
// skipDuplicates set, rows already present in the store (or earlier in the
// same batch) are counted and skipped instead of inserted.
func (s *Service) Commit(files []NamedFile, platform, accountType string, skipDuplicates bool) (*ImportResult, error) {
	parser, err := GetParser(platform)
	if err != nil {
		return nil, err
	}

	stored, err := s.storedTransactionKeys()
	if err != nil {
		return nil, err
	}

	result := &ImportResult{Errors: []string{}, Warnings: []string{}}
	created := make(map[string]struct{})
	updated := make(map[string]struct{})

	for _, f := range files {
		parsed, warnings, err := parser.Parse(f.Reader)
		if err != nil {
			return nil, fmt.Errorf("import failed for %s: %w", f.Name, err)
		}
		result.Warnings = append(result.Warnings, warnings...)

		for _, t := range parsed {
			if err := t.Validate(); err != nil {
				result.Errors = append(result.Errors, fmt.Sprintf("%s: %s %s: %v", f.Name, t.Symbol, t.TransactionDate, err))
				continue
			}

			key := transactionKey(t.Symbol, t.TransactionDate, t.TransactionType, t.Quantity, t.PricePerShare)
			if skipDuplicates {
				if _, dup := stored[key]; dup {
					result.DuplicatesSkipped++
					continue
				}
			}

			if err := s.commitTransaction(t, platform, accountType, created, updated); err != nil {
				result.Errors = append(result.Errors, fmt.Sprintf("%s: %s %s: %v", f.Name, t.Symbol, t.TransactionDate, err))
				continue
			}

			stored[key] = struct{}{}
			result.TransactionsImported++
		}
	}

	result.HoldingsCreated = len(created)
	result.HoldingsUpdated = len(updated)

	s.log.Info().
		Int("imported", result.TransactionsImported).
		Int("holdings_created", result.HoldingsCreated).
		Int("holdings_updated", result.HoldingsUpdated).
		Int("duplicates_skipped", result.DuplicatesSkipped).
		Int("errors", len(result.Errors)).
		Str("platform", platform).
		Msg("Import committed")

	return result, nil
}

// commitTransaction writes one parsed transaction and rolls its effect into
// the holding record.
func (s *Service) commitTransaction(t ParsedTransaction, platform, accountType string, created, updated map[string]struct{}) error {
	holding, err := s.holdings.GetBySymbol(t.Symbol)
	if err != nil {
		return fmt.Errorf("failed to look up holding: %w", err)
	}

	if holding == nil {
		if t.TransactionType == domain.TransactionSell {
			return fmt.Errorf("cannot sell %s: no holding exists", t.Symbol)
		}
		exchange, country := defaultListing(t.Currency)
		h := &domain.Holding{
			Symbol:            t.Symbol,
			CompanyName:       companyNameOrSymbol(t),
			Exchange:          exchange,
			Country:           country,
			Quantity:          decimal.Zero,
			AvgPurchasePrice:  decimal.Zero,
			Currency:          currencyOrDefault(t.Currency),
			FirstPurchaseDate: t.TransactionDate,
			Notes:             importNote(platform, accountType),
			IsActive:          true,
		}
		id, err := s.holdings.Create(h)
		if err != nil {
			return fmt.Errorf("failed to create holding: %w", err)
		}
		h.ID = id
		holding = h
		created[t.Symbol] = struct{}{}
	} else if _, isNew := created[t.Symbol]; !isNew {
		updated[t.Symbol] = struct{}{}
	}

	if t.TransactionType == domain.TransactionSell && holding.Quantity.LessThan(t.Quantity) {
		return fmt.Errorf("cannot sell %s shares of %s, only %s held", t.Quantity, t.Symbol, holding.Quantity)
	}

	if _, err := s.txns.Create(&domain.Transaction{
		HoldingID:       holding.ID,
		Symbol:          t.Symbol,
		TransactionType: t.TransactionType,
		Quantity:        t.Quantity,
		PricePerShare:   t.PricePerShare,
		Fees:            t.Fees,
		TransactionDate: t.TransactionDate,
		Notes:           importNote(platform, accountType),
	}); err != nil {
		return fmt.Errorf("failed to store transaction: %w", err)
	}

	quantity, avgPrice := costbasis.ApplyTrade(holding.Quantity, holding.AvgPurchasePrice, t.TransactionType, t.Quantity, t.PricePerShare)
	if err := s.holdings.UpdatePosition(holding.ID, quantity, avgPrice); err != nil {
		return fmt.Errorf("failed to update holding position: %w", err)
	}
	holding.Quantity = quantity
	holding.AvgPurchasePrice = avgPrice

	return nil
}

func (s *Service) existingSymbols() (map[string]struct{}, error) {
	holdings, err := s.holdings.GetAllActive()
	if err != nil {
		return nil, fmt.Errorf("failed to load holdings: %w", err)
	}
	symbols := make(map[string]struct{}, len(holdings))
	for _, h := range holdings {
		symbols[h.Symbol] = struct{}{}
	}
	return symbols, nil
}

func (s *Service) storedTransactionKeys() (map[string]struct{}, error) {
	txns, err := s.txns.GetAll()
	if err != nil {
		return nil, fmt.Errorf("failed to load transactions: %w", err)
	}
	keys := make(map[string]struct{}, len(txns))
	for _, t := range txns {
		keys[transactionKey(t.Symbol, t.TransactionDate, t.TransactionType, t.Quantity, t.PricePerShare)] = struct{}{}
	}
	return keys, nil
}

// transactionKey identifies a transaction for duplicate detection.
// Quantities and prices are fixed to four decimal places so that values
// round-tripped through storage still match.
func transactionKey(symbol, date string, txType domain.TransactionType, quantity, price decimal.Decimal) string {
	return strings.Join([]string{symbol, date, string(txType), quantity.StringFixed(4), price.StringFixed(4)}, "|")
}

// defaultListing guesses exchange and country from trade currency when the
// export does not say. Canadian trades settle on TSX; everything else
// defaults to NYSE. The holding can be corrected later via the API.
func defaultListing(currency string) (exchange, country string) {
	if strings.EqualFold(currency, "CAD") {
		return "TSX", "CA"
	}
	return "NYSE", "US"
}

func currencyOrDefault(currency string) string {
	if currency == "" {
		return "CAD"
	}
	return currency
}

func companyNameOrSymbol(t ParsedTransaction) string {
	if t.CompanyName != "" {
		return t.CompanyName
	}
	return t.Symbol
}

func importNote(platform, accountType string) string {
	note := "Imported from " + platform
	if accountType != "" {
		note += " (" + accountType + ")"
	}
	return note
}
