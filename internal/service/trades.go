package service

import (
	"context"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/guttosm/tradenorm/internal/broker"
	"github.com/guttosm/tradenorm/internal/domain/models"
	"github.com/guttosm/tradenorm/internal/ingestion"
	"github.com/guttosm/tradenorm/internal/storage"
)

// TradeService defines the business operations behind the HTTP API.
type TradeService interface {
	Normalize(ctx context.Context, brokerName string, files ...[]byte) (broker.Result, error)
	Import(ctx context.Context, brokerName, fileName string, data []byte, force bool) (models.ImportResult, error)
	ListTrades(ctx context.Context, filter models.TradeFilter) ([]models.StoredTrade, error)
}

type tradeService struct {
	repo  storage.TradesRepository
	cache *cache.Cache
}

// NewTradeService wires the service. Parse results are cached for ttl keyed
// by broker and file hashes; ttl <= 0 disables the cache.
func NewTradeService(repo storage.TradesRepository, ttl time.Duration) TradeService {
	s := &tradeService{repo: repo}
	if ttl > 0 {
		s.cache = cache.New(ttl, 2*ttl)
	}
	return s
}

func (s *tradeService) Normalize(ctx context.Context, brokerName string, files ...[]byte) (broker.Result, error) {
	norm, err := ingestion.GetNormalizer(brokerName)
	if err != nil {
		return broker.Result{}, err
	}
	if err := ctx.Err(); err != nil {
		return broker.Result{}, err
	}

	key := cacheKey(norm.Name(), files)
	if s.cache != nil {
		if v, ok := s.cache.Get(key); ok {
			return v.(broker.Result), nil
		}
	}

	res, err := norm.ParseFiles(files...)
	if err != nil {
		return broker.Result{}, err
	}
	if s.cache != nil {
		s.cache.SetDefault(key, res)
	}
	return res, nil
}

func (s *tradeService) Import(ctx context.Context, brokerName, fileName string, data []byte, force bool) (models.ImportResult, error) {
	norm, err := ingestion.GetNormalizer(brokerName)
	if err != nil {
		return models.ImportResult{}, err
	}
	return ingestion.ImportFile(ctx, s.repo, norm, fileName, data, force)
}

func (s *tradeService) ListTrades(ctx context.Context, filter models.TradeFilter) ([]models.StoredTrade, error) {
	return s.repo.ListTrades(ctx, filter)
}

// cacheKey depends on file order because ParseFiles does.
func cacheKey(name broker.Name, files [][]byte) string {
	parts := make([]string, 0, len(files)+1)
	parts = append(parts, string(name))
	for _, f := range files {
		parts = append(parts, ingestion.FileHash(f))
	}
	return strings.Join(parts, ":")
}
