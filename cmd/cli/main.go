package main

import (
	"encoding/json"
	"fmt"
	"io/ioutil"
	"os"
	"strconv"

	"github.com/ZilDuck/zilliqa-nft-marketplace/internal/config"
	"github.com/ZilDuck/zilliqa-nft-marketplace/internal/config/di"
	"github.com/ZilDuck/zilliqa-nft-marketplace/internal/messenger"
	"github.com/ZilDuck/zilliqa-nft-marketplace/internal/repository"
	"github.com/ZilDuck/zilliqa-nft-marketplace/internal/server"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

var (
	container        *di.Container
	marketActionRepo repository.MarketActionRepository
	messengerService messenger.MessageService
	client           *retryablehttp.Client
)

func main() {
	config.Init("cli")

	container, _ = di.NewContainer()
	marketActionRepo = container.GetMarketActionRepo()
	messengerService = container.GetMessenger()

	client = retryablehttp.NewClient()
	client.Logger = nil

	app := &cli.App{
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "host", Value: "http://localhost:8080", Usage: "marketd api host"},
			&cli.StringFlag{Name: "caller", Value: "", Usage: "caller address for admin commands (defaults to ADMIN_ADDRESS)"},
		},
		Commands: []*cli.Command{
			{
				Name:   "fee",
				Usage:  "Show the fee policy",
				Action: showFees,
			},
			{
				Name:   "set-fee",
				Usage:  "Set the platform fee in basis points",
				Action: setFeePercent,
			},
			{
				Name:   "set-minimum-fee",
				Usage:  "Set the minimum platform fee",
				Action: setMinimumFee,
			},
			{
				Name:   "transfer-admin",
				Usage:  "Hand the admin role to another address",
				Action: transferAdmin,
			},
			{
				Name:   "nft",
				Usage:  "Show a listing",
				Action: showListing,
			},
			{
				Name:   "order",
				Usage:  "Show an order",
				Action: showOrder,
			},
			{
				Name:   "actions",
				Usage:  "Show the market history for an item",
				Action: showActions,
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "size", Value: 20, Usage: "number of actions to show"},
				},
			},
			{
				Name:   "queues",
				Usage:  "Show notification queue depths",
				Action: showQueues,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		zap.L().With(zap.Error(err)).Fatal("Failed to start CLI")
	}
}

// FEES
func showFees(c *cli.Context) error {
	body, err := get(c, "/fees")
	if err != nil {
		return err
	}

	fmt.Println(string(body))

	return nil
}

func setFeePercent(c *cli.Context) error {
	bps, err := strconv.ParseUint(c.Args().First(), 10, 64)
	if err != nil {
		zap.L().Error("No fee percent provided")
		return nil
	}

	body, err := send(c, "PUT", "/admin/fee-percent", map[string]uint64{"feePercentBps": bps})
	if err != nil {
		return err
	}

	fmt.Println(string(body))

	return nil
}

func setMinimumFee(c *cli.Context) error {
	minimumFee := c.Args().First()
	if minimumFee == "" {
		zap.L().Error("No minimum fee provided")
		return nil
	}

	body, err := send(c, "PUT", "/admin/minimum-fee", map[string]string{"minimumFee": minimumFee})
	if err != nil {
		return err
	}

	fmt.Println(string(body))

	return nil
}

func transferAdmin(c *cli.Context) error {
	admin := c.Args().First()
	if admin == "" {
		zap.L().Error("No admin address provided")
		return nil
	}

	body, err := send(c, "PUT", "/admin/owner", map[string]string{"admin": admin})
	if err != nil {
		return err
	}

	fmt.Println(string(body))

	return nil
}

// LISTINGS
func showListing(c *cli.Context) error {
	listingId := c.Args().First()
	if listingId == "" {
		zap.L().Error("No listing id provided")
		return nil
	}

	body, err := get(c, "/nft/"+listingId)
	if err != nil {
		return err
	}

	fmt.Println(string(body))

	return nil
}

// ORDERS
func showOrder(c *cli.Context) error {
	orderId, err := strconv.ParseUint(c.Args().First(), 10, 64)
	if err != nil {
		zap.L().Error("No order id provided")
		return nil
	}

	body, err := get(c, fmt.Sprintf("/order/%d", orderId))
	if err != nil {
		return err
	}

	fmt.Println(string(body))

	actions, err := marketActionRepo.GetActionsByOrder(orderId)
	if err != nil {
		return nil
	}

	for _, action := range actions {
		history, err := json.Marshal(action)
		if err != nil {
			continue
		}
		fmt.Println(string(history))
	}

	return nil
}

// HISTORY
func showActions(c *cli.Context) error {
	contract := c.Args().Get(0)
	tokenId, err := strconv.ParseUint(c.Args().Get(1), 10, 64)
	if contract == "" || err != nil {
		zap.L().Error("Usage: actions <contract> <tokenId>")
		return nil
	}

	actions, err := marketActionRepo.GetActions(contract, tokenId, c.Int("size"))
	if err != nil {
		zap.L().With(zap.Error(err)).Error("Failed to get market actions")
		return err
	}

	zap.S().Infof("Found %d actions", len(actions))

	for _, action := range actions {
		body, err := json.Marshal(action)
		if err != nil {
			continue
		}
		fmt.Println(string(body))
	}

	return nil
}

// QUEUES
func showQueues(c *cli.Context) error {
	items := []messenger.Item{
		messenger.ItemSold,
		messenger.ItemNotAvailable,
		messenger.ItemGone,
		messenger.OrderCancelled,
	}

	for _, item := range items {
		size, err := messengerService.GetQueueSize(item)
		if err != nil {
			zap.S().With(zap.Error(err)).Errorf("Could not get the %s queue size", item)
			continue
		}

		fmt.Printf("%-20s %d\n", item, *size)
	}

	return nil
}

func get(c *cli.Context, path string) ([]byte, error) {
	resp, err := client.Get(c.String("host") + path)
	if err != nil {
		zap.L().With(zap.Error(err)).Error("Failed to reach marketd")
		return nil, err
	}
	defer resp.Body.Close()

	return ioutil.ReadAll(resp.Body)
}

func send(c *cli.Context, method, path string, payload interface{}) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := retryablehttp.NewRequest(method, c.String("host")+path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(server.CallerHeader, caller(c))

	resp, err := client.Do(req)
	if err != nil {
		zap.L().With(zap.Error(err)).Error("Failed to reach marketd")
		return nil, err
	}
	defer resp.Body.Close()

	out, err := ioutil.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode >= 400 {
		return out, fmt.Errorf("marketd responded %d: %s", resp.StatusCode, string(out))
	}

	return out, nil
}

func caller(c *cli.Context) string {
	if c.String("caller") != "" {
		return c.String("caller")
	}

	return config.Get().AdminAddress
}
