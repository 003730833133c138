package importer

import (
	"fmt"
	"io"
)

// Supported platform identifiers for broker CSV exports.
const (
	PlatformTDDirect     = "td_direct"
	PlatformWealthsimple = "wealthsimple"
)

// Parser extracts transaction candidates from one broker export file.
// Rows that cannot be parsed are skipped and reported as warnings rather
// than failing the whole file; an error means the file itself is unusable.
type Parser interface {
	Parse(r io.Reader) (txns []ParsedTransaction, warnings []string, err error)
}

// GetParser returns the parser for a platform identifier.
func GetParser(platform string) (Parser, error) {
	switch platform {
	case PlatformTDDirect:
		return NewTDDirectParser(), nil
	case PlatformWealthsimple:
		return NewWealthsimpleParser(), nil
	default:
		return nil, fmt.Errorf("no parser available for platform: %s", platform)
	}
}
