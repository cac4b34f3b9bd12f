package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/ZilDuck/zilliqa-nft-marketplace/internal/elastic_search"
	"github.com/ZilDuck/zilliqa-nft-marketplace/internal/entity"
	"github.com/olivere/elastic/v7"
	"go.uber.org/zap"
)

var (
	ErrMarketActionNotFound = errors.New("market action not found")
)

// MarketActionRepository reads the audit trail back out of Elasticsearch.
type MarketActionRepository interface {
	GetActions(contract string, tokenId uint64, size int) ([]entity.MarketAction, error)
	GetActionsByOrder(orderId uint64) ([]entity.MarketAction, error)
}

type marketActionRepository struct {
	elastic elastic_search.Index
}

func NewMarketActionRepository(elastic elastic_search.Index) MarketActionRepository {
	return marketActionRepository{elastic}
}

func (r marketActionRepository) GetActions(contract string, tokenId uint64, size int) ([]entity.MarketAction, error) {
	query := elastic.NewBoolQuery().Must(
		elastic.NewTermQuery("contract.keyword", contract),
		elastic.NewTermQuery("tokenId", tokenId),
	)

	results, err := search(r.elastic.GetClient().
		Search(elastic_search.MarketActionIndex.Get()).
		Query(query).
		Sort("createdAt", false).
		Size(size))

	return r.findMany(results, err)
}

func (r marketActionRepository) GetActionsByOrder(orderId uint64) ([]entity.MarketAction, error) {
	query := elastic.NewBoolQuery().Must(
		elastic.NewTermQuery("orderId", orderId),
	)

	results, err := search(r.elastic.GetClient().
		Search(elastic_search.MarketActionIndex.Get()).
		Query(query).
		Sort("createdAt", true).
		Size(100))

	return r.findMany(results, err)
}

func (r marketActionRepository) findMany(results *elastic.SearchResult, err error) ([]entity.MarketAction, error) {
	if err != nil {
		return nil, err
	}

	actions := make([]entity.MarketAction, 0)
	for _, hit := range results.Hits.Hits {
		var action entity.MarketAction
		if err := json.Unmarshal(hit.Source, &action); err != nil {
			return nil, err
		}
		actions = append(actions, action)
	}

	if len(actions) == 0 {
		return nil, ErrMarketActionNotFound
	}

	return actions, nil
}

func search(searchService *elastic.SearchService) (*elastic.SearchResult, error) {
	result, err := searchService.Do(context.Background())
	if err != nil && err.Error() == "elastic: Error 429 (Too Many Requests)" {
		zap.L().Warn("Elastic: 429 (Too Many Requests)")
		time.Sleep(5 * time.Second)
		return search(searchService)
	}

	return result, err
}
