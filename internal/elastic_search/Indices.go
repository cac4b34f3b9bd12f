package elastic_search

import (
	"fmt"

	"github.com/ZilDuck/zilliqa-nft-marketplace/internal/config"
)

type Indices string

var (
	MarketActionIndex Indices = "marketaction"
)

// Sets the network and returns the full string
func (i *Indices) Get() string {
	return fmt.Sprintf("%s.%s.%s", config.Get().Network, config.Get().Index, string(*i))
}

var mappings = map[Indices]string{
	MarketActionIndex: `{
  "mappings": {
    "properties": {
      "action":       {"type": "keyword"},
      "listingId":    {"type": "long"},
      "orderId":      {"type": "long"},
      "contract":     {"type": "keyword"},
      "tokenId":      {"type": "long"},
      "seller":       {"type": "keyword"},
      "sellerBech32": {"type": "keyword"},
      "buyer":        {"type": "keyword"},
      "buyerBech32":  {"type": "keyword"},
      "cost":         {"type": "keyword"},
      "fee":          {"type": "keyword"},
      "reason":       {"type": "text"},
      "createdAt":    {"type": "date"}
    }
  }
}`,
}
