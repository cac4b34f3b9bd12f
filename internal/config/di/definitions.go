package di

import (
	"math/big"

	"github.com/ZilDuck/zilliqa-nft-marketplace/internal/config"
	"github.com/ZilDuck/zilliqa-nft-marketplace/internal/daemon"
	"github.com/ZilDuck/zilliqa-nft-marketplace/internal/elastic_search"
	"github.com/ZilDuck/zilliqa-nft-marketplace/internal/entity"
	"github.com/ZilDuck/zilliqa-nft-marketplace/internal/ledger"
	"github.com/ZilDuck/zilliqa-nft-marketplace/internal/marketplace"
	"github.com/ZilDuck/zilliqa-nft-marketplace/internal/messenger"
	"github.com/ZilDuck/zilliqa-nft-marketplace/internal/registry"
	"github.com/ZilDuck/zilliqa-nft-marketplace/internal/repository"
	"github.com/ZilDuck/zilliqa-nft-marketplace/internal/rpc"
	"github.com/ZilDuck/zilliqa-nft-marketplace/internal/sequence"
	"github.com/ZilDuck/zilliqa-nft-marketplace/pkg/addr"
	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/sqs"
	"github.com/sarulabs/di/v2"
	"go.uber.org/zap"
)

var Definitions = []di.Def{
	{
		Name: "elastic",
		Build: func(ctn di.Container) (interface{}, error) {
			elastic, err := elastic_search.New()
			if err != nil {
				zap.L().With(zap.Error(err)).Fatal("Failed to start ES")
			}

			return elastic, nil
		},
	},
	{
		Name: "ledger",
		Build: func(ctn di.Container) (interface{}, error) {
			client, err := rpc.NewClient(
				"Ledger",
				config.Get().Ledger.Url,
				config.Get().Ledger.Timeout,
				config.Get().Ledger.Debug,
			)
			if err != nil {
				zap.L().With(zap.Error(err)).Fatal("Failed to create ledger client")
			}

			return ledger.NewLedgerService(client), nil
		},
	},
	{
		Name: "registry",
		Build: func(ctn di.Container) (interface{}, error) {
			client, err := rpc.NewClient(
				"Registry",
				config.Get().Registry.Url,
				config.Get().Registry.Timeout,
				config.Get().Registry.Debug,
			)
			if err != nil {
				zap.L().With(zap.Error(err)).Fatal("Failed to create registry client")
			}

			return registry.NewRegistryService(client), nil
		},
	},
	{
		Name: "listing.repo",
		Build: func(ctn di.Container) (interface{}, error) {
			return repository.NewListingRepository(), nil
		},
	},
	{
		Name: "order.repo",
		Build: func(ctn di.Container) (interface{}, error) {
			return repository.NewOrderRepository(), nil
		},
	},
	{
		Name: "marketAction.repo",
		Build: func(ctn di.Container) (interface{}, error) {
			return repository.NewMarketActionRepository(ctn.Get("elastic").(elastic_search.Index)), nil
		},
	},
	{
		Name: "engine",
		Build: func(ctn di.Container) (interface{}, error) {
			return marketplace.NewEngine(
				ctn.Get("listing.repo").(repository.ListingRepository),
				ctn.Get("order.repo").(repository.OrderRepository),
				sequence.NewAllocator(0),
				sequence.NewAllocator(0),
				ctn.Get("ledger").(ledger.Service),
				ctn.Get("registry").(registry.Service),
				ctn.Get("elastic").(elastic_search.Index),
				feePolicy(),
				config.Get().MarketplaceAddress,
				config.Get().Ledger.Address,
			), nil
		},
	},
	{
		Name: "messenger",
		Build: func(ctn di.Container) (interface{}, error) {
			sess, err := session.NewSession(awsConfig())
			if err != nil {
				zap.L().With(zap.Error(err)).Fatal("Failed to create aws session")
			}

			return messenger.NewMessenger(sqs.New(sess)), nil
		},
	},
	{
		Name: "notifier",
		Build: func(ctn di.Container) (interface{}, error) {
			return messenger.NewNotifier(ctn.Get("messenger").(messenger.MessageService)), nil
		},
	},
	{
		Name: "daemon",
		Build: func(ctn di.Container) (interface{}, error) {
			return daemon.NewDaemon(ctn.Get("elastic").(elastic_search.Index)), nil
		},
	},
}

func feePolicy() entity.FeePolicy {
	admin, err := addr.Validate(config.Get().AdminAddress)
	if err != nil {
		zap.L().With(zap.Error(err)).Fatal("Admin address is invalid")
	}

	if _, err := addr.Validate(config.Get().MarketplaceAddress); err != nil {
		zap.L().With(zap.Error(err)).Fatal("Marketplace address is invalid")
	}

	if _, err := addr.Validate(config.Get().Ledger.Address); err != nil {
		zap.L().With(zap.Error(err)).Fatal("Ledger address is invalid")
	}

	bps := config.Get().FeePercentBps
	if bps > 10000 {
		zap.S().Fatalf("Fee percent %d exceeds 10000 basis points", bps)
	}

	minimumFee, ok := new(big.Int).SetString(config.Get().MinimumFee, 10)
	if !ok || minimumFee.Sign() == -1 {
		zap.S().Fatalf("Minimum fee %s is not a valid amount", config.Get().MinimumFee)
	}

	return entity.FeePolicy{Admin: admin, FeePercentBps: bps, MinimumFee: minimumFee}
}

func awsConfig() *aws.Config {
	cfg := aws.Config{Region: aws.String(config.Get().Aws.Region)}

	if config.Get().Aws.AccessKey != "" {
		cfg.Credentials = credentials.NewStaticCredentials(
			config.Get().Aws.AccessKey,
			config.Get().Aws.SecretKey,
			"",
		)
	}

	return &cfg
}
