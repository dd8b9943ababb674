package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	pq "github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/guttosm/tradenorm/internal/domain/models"
)

// DefaultListLimit caps ListTrades when the filter sets no limit.
const DefaultListLimit = 500

// TradesRepository defines contract for DB operations.
type TradesRepository interface {
	InsertTradesBatch(ctx context.Context, importID, broker string, trades []models.Trade) error
	HasImport(ctx context.Context, fileHash string) (bool, error)
	UpsertImportLog(ctx context.Context, rec models.ImportRecord) error
	DeleteImport(ctx context.Context, fileHash string) error
	ListTrades(ctx context.Context, filter models.TradeFilter) ([]models.StoredTrade, error)
}

type tradesRepository struct {
	db *sql.DB
}

func NewTradesRepository(db *sql.DB) TradesRepository {
	return &tradesRepository{db: db}
}

var tradeColumns = []string{
	"trade_id",
	"import_id",
	"broker",
	"trade_type",
	"ticker",
	"quantity",
	"price",
	"total_amount",
	"trade_date",
	"option_underlying",
	"option_type",
	"option_strike",
	"option_expiration",
	"dividend_type",
	"dividend_gross",
	"dividend_tax",
	"dividend_issue_id",
	"fee_type",
	"fee_amount",
	"note",
	"raw_source",
}

// InsertTradesBatch copies trades into the trades table in a single transaction.
func (r *tradesRepository) InsertTradesBatch(ctx context.Context, importID, broker string, trades []models.Trade) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	// Small optimization for bulk load
	if _, err := tx.ExecContext(ctx, `SET LOCAL synchronous_commit = OFF`); err != nil {
		_ = tx.Rollback()
		return err
	}

	stmt, err := tx.PrepareContext(ctx, pq.CopyIn("trades", tradeColumns...))
	if err != nil {
		_ = tx.Rollback()
		return err
	}

	for _, t := range trades {
		if _, err := stmt.ExecContext(ctx, tradeArgs(importID, broker, t)...); err != nil {
			_ = stmt.Close()
			_ = tx.Rollback()
			return err
		}
	}

	if _, err := stmt.ExecContext(ctx); err != nil {
		_ = stmt.Close()
		_ = tx.Rollback()
		return err
	}
	if err := stmt.Close(); err != nil {
		_ = tx.Rollback()
		return err
	}

	return tx.Commit()
}

// tradeArgs flattens a trade into tradeColumns order; absent info blocks
// become NULLs.
func tradeArgs(importID, broker string, t models.Trade) []any {
	var (
		underlying, optType, divType, issueID, feeType any
		strike, expiration, gross, tax, feeAmount     any
	)
	if o := t.OptionInfo; o != nil {
		underlying = o.UnderlyingTicker
		optType = string(o.OptionType)
		strike = o.StrikePrice
		expiration = o.ExpirationDate
	}
	if dv := t.DividendInfo; dv != nil {
		divType = string(dv.Type)
		gross = dv.GrossAmount
		tax = dv.TaxWithheld
		if dv.IssueID != nil {
			issueID = *dv.IssueID
		}
	}
	if f := t.FeeInfo; f != nil {
		feeType = string(f.Type)
		feeAmount = f.Amount
	}
	return []any{
		t.ID,
		importID,
		broker,
		string(t.Type),
		t.Ticker,
		t.Quantity,
		t.Price,
		t.TotalAmount,
		t.TradeDate,
		underlying,
		optType,
		strike,
		expiration,
		divType,
		gross,
		tax,
		issueID,
		feeType,
		feeAmount,
		t.Note,
		t.RawSource,
	}
}

// HasImport reports whether a file with this content hash was already imported.
func (r *tradesRepository) HasImport(ctx context.Context, fileHash string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM imports WHERE file_hash = $1)`, fileHash).Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists, nil
}

// UpsertImportLog records (or refreshes) the import entry of a file.
func (r *tradesRepository) UpsertImportLog(ctx context.Context, rec models.ImportRecord) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO imports (id, broker, file_name, file_hash, trade_count, warning_count)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (file_hash)
		DO UPDATE SET file_name = EXCLUDED.file_name,
					  trade_count = EXCLUDED.trade_count,
					  warning_count = EXCLUDED.warning_count,
					  imported_at = NOW()
	`, rec.ID, rec.Broker, rec.FileName, rec.FileHash, rec.TradeCount, rec.WarningCount)
	return err
}

// DeleteImport removes an import and, through the foreign key, its trades.
func (r *tradesRepository) DeleteImport(ctx context.Context, fileHash string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM imports WHERE file_hash = $1`, fileHash)
	return err
}

// ListTrades returns stored trades matching filter, oldest first.
func (r *tradesRepository) ListTrades(ctx context.Context, filter models.TradeFilter) ([]models.StoredTrade, error) {
	var (
		conditions []string
		args       []any
	)
	add := func(expr string, v any) {
		args = append(args, v)
		conditions = append(conditions, fmt.Sprintf(expr, len(args)))
	}
	if filter.Ticker != "" {
		add("ticker = $%d", strings.ToUpper(filter.Ticker))
	}
	if filter.Type != "" {
		add("trade_type = $%d", string(filter.Type))
	}
	if filter.From != nil {
		add("trade_date >= $%d", *filter.From)
	}
	if filter.To != nil {
		add("trade_date <= $%d", *filter.To)
	}

	where := ""
	if len(conditions) > 0 {
		where = "WHERE " + strings.Join(conditions, " AND ")
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = DefaultListLimit
	}
	args = append(args, limit)

	query := fmt.Sprintf(`
		SELECT %s
		FROM trades
		%s
		ORDER BY trade_date, id
		LIMIT $%d
	`, strings.Join(tradeColumns, ", "), where, len(args))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	out := []models.StoredTrade{}
	for rows.Next() {
		st, err := scanTrade(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, st)
	}
	return out, rows.Err()
}

func scanTrade(rows *sql.Rows) (models.StoredTrade, error) {
	var (
		st                                              models.StoredTrade
		tradeType                                       string
		underlying, optType, divType, issueID, feeType sql.NullString
		strike, gross, tax, feeAmount                   decimal.NullDecimal
		expiration                                      sql.NullTime
	)
	err := rows.Scan(
		&st.ID,
		&st.ImportID,
		&st.Broker,
		&tradeType,
		&st.Ticker,
		&st.Quantity,
		&st.Price,
		&st.TotalAmount,
		&st.TradeDate,
		&underlying,
		&optType,
		&strike,
		&expiration,
		&divType,
		&gross,
		&tax,
		&issueID,
		&feeType,
		&feeAmount,
		&st.Note,
		&st.RawSource,
	)
	if err != nil {
		return st, err
	}
	st.Type = models.TradeType(tradeType)

	if optType.Valid {
		st.OptionInfo = &models.OptionInfo{
			UnderlyingTicker: underlying.String,
			OptionType:       models.OptionType(optType.String),
			StrikePrice:      strike.Decimal,
			ExpirationDate:   expiration.Time,
		}
	}
	if divType.Valid {
		info := &models.DividendInfo{
			Type:        models.DividendType(divType.String),
			GrossAmount: gross.Decimal,
			TaxWithheld: tax.Decimal,
		}
		if issueID.Valid {
			id := issueID.String
			info.IssueID = &id
		}
		st.DividendInfo = info
	}
	if feeType.Valid {
		st.FeeInfo = &models.FeeInfo{Type: models.FeeType(feeType.String), Amount: feeAmount.Decimal}
	}
	return st, nil
}
