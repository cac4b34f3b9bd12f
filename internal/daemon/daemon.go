package daemon

import (
	"time"

	"github.com/ZilDuck/zilliqa-nft-marketplace/internal/elastic_search"
	"go.uber.org/zap"
)

// Daemon drains the buffered market action documents into Elasticsearch.
// The engine only stages index requests; nothing reaches the index until
// this loop (or a bulk threshold) flushes it.
type Daemon struct {
	elastic  elastic_search.Index
	interval time.Duration
}

func NewDaemon(elastic elastic_search.Index) *Daemon {
	return &Daemon{elastic: elastic, interval: 5 * time.Second}
}

func (d *Daemon) Execute() {
	zap.L().Info("Starting market action persister")

	for {
		if persisted := d.elastic.Persist(); persisted > 0 {
			zap.S().Debugf("Persisted %d market actions", persisted)
		}

		time.Sleep(d.interval)
	}
}
