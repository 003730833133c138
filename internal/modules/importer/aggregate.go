package importer

// Aggregate merges per-file import previews into a single preview for
// display and confirmation.
//
// Merge rules per field:
//   - integer counts are summed
//   - transactions and warnings are concatenated in input order (within a
//     file, the parser's order is preserved)
//   - symbol lists are unioned as sets with exact string membership; each
//     symbol appears once, in first-seen order, with no normalization
//
// Every transaction from every input survives the merge. An empty input
// yields an all-zero, all-empty preview; a single input passes through
// unchanged. Pure function, safe for concurrent use.
func Aggregate(previews []ImportPreview) ImportPreview {
	agg := ImportPreview{
		Transactions:    []ParsedTransaction{},
		NewSymbols:      []string{},
		ExistingSymbols: []string{},
		Warnings:        []string{},
	}

	for _, p := range previews {
		agg.TotalTransactions += p.TotalTransactions
		agg.BuyTransactions += p.BuyTransactions
		agg.SellTransactions += p.SellTransactions
		agg.PotentialDuplicates += p.PotentialDuplicates
		agg.Transactions = append(agg.Transactions, p.Transactions...)
		agg.Warnings = append(agg.Warnings, p.Warnings...)
		agg.NewSymbols = unionSymbols(agg.NewSymbols, p.NewSymbols)
		agg.ExistingSymbols = unionSymbols(agg.ExistingSymbols, p.ExistingSymbols)
	}

	return agg
}

// unionSymbols appends the members of more that are not already in dst,
// preserving first-seen order.
func unionSymbols(dst, more []string) []string {
	seen := make(map[string]struct{}, len(dst))
	for _, s := range dst {
		seen[s] = struct{}{}
	}
	for _, s := range more {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		dst = append(dst, s)
	}
	return dst
}
