package di

import (
	"github.com/ZilDuck/zilliqa-nft-marketplace/internal/daemon"
	"github.com/ZilDuck/zilliqa-nft-marketplace/internal/elastic_search"
	"github.com/ZilDuck/zilliqa-nft-marketplace/internal/ledger"
	"github.com/ZilDuck/zilliqa-nft-marketplace/internal/marketplace"
	"github.com/ZilDuck/zilliqa-nft-marketplace/internal/messenger"
	"github.com/ZilDuck/zilliqa-nft-marketplace/internal/registry"
	"github.com/ZilDuck/zilliqa-nft-marketplace/internal/repository"
	"github.com/sarulabs/di/v2"
)

type Container struct {
	ctn di.Container
}

func NewContainer() (*Container, error) {
	builder, err := di.NewBuilder()
	if err != nil {
		return nil, err
	}

	if err := builder.Add(Definitions...); err != nil {
		return nil, err
	}

	return &Container{ctn: builder.Build()}, nil
}

func (c *Container) GetElastic() elastic_search.Index {
	return c.ctn.Get("elastic").(elastic_search.Index)
}

func (c *Container) GetLedger() ledger.Service {
	return c.ctn.Get("ledger").(ledger.Service)
}

func (c *Container) GetRegistry() registry.Service {
	return c.ctn.Get("registry").(registry.Service)
}

func (c *Container) GetListingRepo() repository.ListingRepository {
	return c.ctn.Get("listing.repo").(repository.ListingRepository)
}

func (c *Container) GetOrderRepo() repository.OrderRepository {
	return c.ctn.Get("order.repo").(repository.OrderRepository)
}

func (c *Container) GetMarketActionRepo() repository.MarketActionRepository {
	return c.ctn.Get("marketAction.repo").(repository.MarketActionRepository)
}

func (c *Container) GetEngine() marketplace.Engine {
	return c.ctn.Get("engine").(marketplace.Engine)
}

func (c *Container) GetMessenger() messenger.MessageService {
	return c.ctn.Get("messenger").(messenger.MessageService)
}

func (c *Container) GetNotifier() messenger.Notifier {
	return c.ctn.Get("notifier").(messenger.Notifier)
}

func (c *Container) GetDaemon() *daemon.Daemon {
	return c.ctn.Get("daemon").(*daemon.Daemon)
}
