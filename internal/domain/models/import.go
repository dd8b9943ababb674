package models

import "time"

// ImportRecord is one persisted import of a broker export file.
// FileHash (hex SHA-256 of the raw bytes) makes imports idempotent.
type ImportRecord struct {
	ID           string    `json:"id"`
	Broker       string    `json:"broker"`
	FileName     string    `json:"file_name"`
	FileHash     string    `json:"file_hash"`
	TradeCount   int       `json:"trade_count"`
	WarningCount int       `json:"warning_count"`
	ImportedAt   time.Time `json:"imported_at"`
}

// TradeFilter narrows ListTrades. Zero values mean "no filter";
// Limit <= 0 falls back to the repository default.
type TradeFilter struct {
	Ticker string
	Type   TradeType
	From   *time.Time
	To     *time.Time
	Limit  int
}

// StoredTrade is a persisted trade together with its provenance.
type StoredTrade struct {
	Trade
	Broker   string `json:"broker"`
	ImportID string `json:"import_id"`
}

// ImportResult reports what importing one file did. Skipped means the file
// hash was already imported and force was not set.
type ImportResult struct {
	Record   ImportRecord `json:"import"`
	Skipped  bool         `json:"skipped"`
	Warnings []string     `json:"warnings"`
}
