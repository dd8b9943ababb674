package ingestion

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/guttosm/tradenorm/internal/broker"
	"github.com/guttosm/tradenorm/internal/domain/models"
	"github.com/guttosm/tradenorm/internal/storage"
)

const firstradeHeader = "Symbol,Quantity,Price,Action,Description,TradeDate,SettledDate,Interest,Amount,Commission,Fee,CUSIP,RecordType\n"

func firstradeFile() string {
	return firstradeHeader +
		"AAPL,10,150.00,BUY,APPLE INC,2025-03-14,2025-03-17,0.00,-1500.00,0.00,0.00,037833100,Trade\n" +
		"AAPL,-10,160.00,SELL,APPLE INC,2025-04-01,2025-04-02,0.00,1600.00,0.00,0.00,037833100,Trade\n"
}

func schwabFile() string {
	return `{"FromDate":"01/01/2025","ToDate":"12/31/2025","TotalTransactionsAmount":"$0.00","BrokerageTransactions":[` +
		`{"Date":"03/14/2025","Action":"Buy","Symbol":"AAPL","Description":"APPLE INC","Quantity":"10","Price":"$150.00","Fees & Comm":"","Amount":"-$1,500.00"}` +
		`]}`
}

// fakeRepo implements storage.TradesRepository in memory.
type fakeRepo struct {
	mu        sync.Mutex
	imports   map[string]models.ImportRecord
	inserted  map[string]int
	deleted   []string
	hasErr    error
	upsertErr error
	insertErr error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{imports: map[string]models.ImportRecord{}, inserted: map[string]int{}}
}

func (f *fakeRepo) InsertTradesBatch(_ context.Context, importID, _ string, trades []models.Trade) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inserted[importID] += len(trades)
	return nil
}

func (f *fakeRepo) HasImport(_ context.Context, fileHash string) (bool, error) {
	if f.hasErr != nil {
		return false, f.hasErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.imports[fileHash]
	return ok, nil
}

func (f *fakeRepo) UpsertImportLog(_ context.Context, rec models.ImportRecord) error {
	if f.upsertErr != nil {
		return f.upsertErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.imports[rec.FileHash] = rec
	return nil
}

func (f *fakeRepo) DeleteImport(_ context.Context, fileHash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if rec, ok := f.imports[fileHash]; ok {
		delete(f.inserted, rec.ID)
	}
	delete(f.imports, fileHash)
	f.deleted = append(f.deleted, fileHash)
	return nil
}

func (f *fakeRepo) ListTrades(context.Context, models.TradeFilter) ([]models.StoredTrade, error) {
	return nil, nil
}

func (f *fakeRepo) totalInserted() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.inserted {
		n += c
	}
	return n
}

// dummyDB is never dereferenced; repoCtor is overridden in these tests.
func dummyDB() *sql.DB { return (*sql.DB)(nil) }

func useRepo(t *testing.T, repo storage.TradesRepository) {
	t.Helper()
	old := repoCtor
	repoCtor = func(_ *sql.DB) storage.TradesRepository { return repo }
	t.Cleanup(func() { repoCtor = old })
}

func writeFile(t *testing.T, dir, name string, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return p
}

func TestGetNormalizer(t *testing.T) {
	cases := []struct {
		in   string
		want broker.Name
		err  bool
	}{
		{in: "schwab", want: broker.Schwab},
		{in: " Firstrade ", want: broker.Firstrade},
		{in: "robinhood", err: true},
		{in: "", err: true},
	}
	for _, tc := range cases {
		n, err := GetNormalizer(tc.in)
		if tc.err {
			if !errors.Is(err, ErrUnknownBroker) {
				t.Fatalf("%q: err = %v, want ErrUnknownBroker", tc.in, err)
			}
			continue
		}
		if err != nil || n.Name() != tc.want {
			t.Fatalf("%q: got %v, %v", tc.in, n, err)
		}
	}
	if got := strings.Join(SupportedBrokers(), ","); got != "firstrade,schwab" {
		t.Fatalf("SupportedBrokers = %s", got)
	}
}

func TestFileHash_Stable(t *testing.T) {
	a := FileHash([]byte("abc"))
	if a != "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad" {
		t.Fatalf("hash = %s", a)
	}
	if FileHash([]byte("abd")) == a {
		t.Fatalf("different content must hash differently")
	}
}

func TestNormalizeFiles(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.csv", firstradeFile())
	b := writeFile(t, dir, "b.json", schwabFile())

	res, err := NormalizeFiles(context.Background(), "firstrade", []string{a})
	if err != nil {
		t.Fatalf("NormalizeFiles: %v", err)
	}
	if len(res.Trades) != 2 || res.Trades[0].Type != models.StockBuy || res.Trades[1].Type != models.StockSell {
		t.Fatalf("trades = %+v", res.Trades)
	}

	res, err = NormalizeFiles(context.Background(), "schwab", []string{b})
	if err != nil || len(res.Trades) != 1 {
		t.Fatalf("schwab: %d trades, err %v", len(res.Trades), err)
	}

	if _, err := NormalizeFiles(context.Background(), "schwab", []string{a}); !errors.Is(err, broker.ErrInvalidContainer) {
		t.Fatalf("csv fed to schwab: err = %v", err)
	}
	if _, err := NormalizeFiles(context.Background(), "firstrade", []string{filepath.Join(dir, "missing.csv")}); err == nil {
		t.Fatalf("expected read error")
	}
	if _, err := NormalizeFiles(context.Background(), "etrade", []string{a}); !errors.Is(err, ErrUnknownBroker) {
		t.Fatalf("unknown broker: err = %v", err)
	}
}

func TestNormalizeFiles_Cancelled(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.csv", firstradeFile())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NormalizeFiles(ctx, "firstrade", []string{a}); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

func TestImportFile(t *testing.T) {
	ctx := context.Background()
	data := []byte(firstradeFile())
	norm, _ := GetNormalizer("firstrade")

	t.Run("first import persists", func(t *testing.T) {
		repo := newFakeRepo()
		res, err := ImportFile(ctx, repo, norm, "a.csv", data, false)
		if err != nil {
			t.Fatalf("ImportFile: %v", err)
		}
		if res.Skipped || res.Record.TradeCount != 2 || res.Record.ID == "" || res.Record.Broker != "firstrade" {
			t.Fatalf("result = %+v", res)
		}
		if repo.inserted[res.Record.ID] != 2 {
			t.Fatalf("inserted = %v", repo.inserted)
		}
	})

	t.Run("second import skipped", func(t *testing.T) {
		repo := newFakeRepo()
		if _, err := ImportFile(ctx, repo, norm, "a.csv", data, false); err != nil {
			t.Fatalf("first: %v", err)
		}
		res, err := ImportFile(ctx, repo, norm, "a-copy.csv", data, false)
		if err != nil {
			t.Fatalf("second: %v", err)
		}
		if !res.Skipped || repo.totalInserted() != 2 {
			t.Fatalf("skipped=%v inserted=%d", res.Skipped, repo.totalInserted())
		}
	})

	t.Run("force replaces", func(t *testing.T) {
		repo := newFakeRepo()
		first, _ := ImportFile(ctx, repo, norm, "a.csv", data, false)
		res, err := ImportFile(ctx, repo, norm, "a.csv", data, true)
		if err != nil {
			t.Fatalf("force: %v", err)
		}
		if res.Skipped || len(repo.deleted) != 1 || res.Record.ID == first.Record.ID {
			t.Fatalf("result = %+v deleted = %v", res, repo.deleted)
		}
		if repo.totalInserted() != 2 {
			t.Fatalf("inserted = %d, want 2", repo.totalInserted())
		}
	})

	t.Run("decode error persists nothing", func(t *testing.T) {
		repo := newFakeRepo()
		if _, err := ImportFile(ctx, repo, norm, "bad.csv", []byte("nope\n"), false); !errors.Is(err, broker.ErrInvalidHeader) {
			t.Fatalf("err = %v", err)
		}
		if len(repo.imports) != 0 {
			t.Fatalf("imports = %v", repo.imports)
		}
	})

	t.Run("insert failure rolls back import log", func(t *testing.T) {
		repo := newFakeRepo()
		repo.insertErr = errors.New("copy failed")
		if _, err := ImportFile(ctx, repo, norm, "a.csv", data, false); err == nil {
			t.Fatalf("expected error")
		}
		if len(repo.imports) != 0 || len(repo.deleted) != 1 {
			t.Fatalf("imports = %v deleted = %v", repo.imports, repo.deleted)
		}
	})

	t.Run("repository errors", func(t *testing.T) {
		repo := newFakeRepo()
		repo.hasErr = context.DeadlineExceeded
		if _, err := ImportFile(ctx, repo, norm, "a.csv", data, false); !errors.Is(err, context.DeadlineExceeded) {
			t.Fatalf("has err = %v", err)
		}
		repo = newFakeRepo()
		repo.upsertErr = context.Canceled
		if _, err := ImportFile(ctx, repo, norm, "a.csv", data, false); !errors.Is(err, context.Canceled) {
			t.Fatalf("upsert err = %v", err)
		}
	})
}

func TestPersistTrades_Batches(t *testing.T) {
	repo := newFakeRepo()
	trades := make([]models.Trade, 7)
	n, err := persistTrades(context.Background(), repo, "imp", "schwab", trades, 3)
	if err != nil || n != 7 || repo.inserted["imp"] != 7 {
		t.Fatalf("n=%d err=%v inserted=%v", n, err, repo.inserted)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := persistTrades(ctx, repo, "imp2", "schwab", trades, 0); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v", err)
	}
}

func TestProcessFiles(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.csv", firstradeFile())
	b := writeFile(t, dir, "b.csv", firstradeHeader+
		"MSFT,5,400.00,BUY,MICROSOFT CORP,2025-05-01,2025-05-02,0.00,-2000.00,0.00,0.00,594918104,Trade\n")

	repo := newFakeRepo()
	useRepo(t, repo)

	results, err := ProcessFiles(context.Background(), dummyDB(), "firstrade", []string{a, b}, 2, false)
	if err != nil {
		t.Fatalf("ProcessFiles: %v", err)
	}
	if len(results) != 2 || results[0].Record.FileName != "a.csv" || results[1].Record.TradeCount != 1 {
		t.Fatalf("results = %+v", results)
	}
	if repo.totalInserted() != 3 {
		t.Fatalf("inserted = %d, want 3", repo.totalInserted())
	}

	// Same files again: both skipped.
	results, err = ProcessFiles(context.Background(), dummyDB(), "firstrade", []string{a, b}, 0, false)
	if err != nil {
		t.Fatalf("ProcessFiles again: %v", err)
	}
	if !results[0].Skipped || !results[1].Skipped || repo.totalInserted() != 3 {
		t.Fatalf("expected skips, got %+v", results)
	}
}

func TestProcessFiles_Errors(t *testing.T) {
	dir := t.TempDir()
	good := writeFile(t, dir, "good.csv", firstradeFile())
	bad := writeFile(t, dir, "bad.csv", "Quantity,Symbol\n")

	useRepo(t, newFakeRepo())

	if _, err := ProcessFiles(context.Background(), dummyDB(), "firstrade", []string{good, bad}, 1, false); !errors.Is(err, broker.ErrInvalidHeader) {
		t.Fatalf("err = %v, want invalid header", err)
	}
	if _, err := ProcessFiles(context.Background(), dummyDB(), "firstrade", []string{filepath.Join(dir, "nope.csv")}, 1, false); err == nil {
		t.Fatalf("expected read error")
	}
	if _, err := ProcessFiles(context.Background(), dummyDB(), "nobody", []string{good}, 1, false); !errors.Is(err, ErrUnknownBroker) {
		t.Fatalf("err = %v", err)
	}
}
