package config

import (
	"math/big"
	"os"
	"strconv"
	"strings"

	"github.com/ZilDuck/zilliqa-nft-marketplace/internal/log"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

type Config struct {
	Env     string
	Network string
	Index   string
	Debug   bool

	ApiPort    string
	HealthPort string

	MarketplaceAddress string
	AdminAddress       string
	FeePercentBps      uint64
	MinimumFee         string

	Ledger        LedgerConfig
	Registry      RegistryConfig
	ElasticSearch ElasticSearchConfig
	Aws           AwsConfig
}

type AwsConfig struct {
	AccessKey string
	SecretKey string
	Region    string
}

type LedgerConfig struct {
	Url     string
	Address string
	Debug   bool
	Timeout int
}

type RegistryConfig struct {
	Url     string
	Debug   bool
	Timeout int
}

type ElasticSearchConfig struct {
	Hosts            []string
	Sniff            bool
	HealthCheck      bool
	Debug            bool
	Username         string
	Password         string
	BulkPersistCount int
	Refresh          string
}

func Init(app string) {
	err := godotenv.Load(".env")
	if err != nil {
		zap.L().With(zap.Error(err)).Warn("Unable to load .env")
	}

	initLogger(app)
}

func initLogger(app string) {
	log.NewLogger(getString("LOG_PATH", "./var/"+app+".log"), Get().Debug)
}

func Get() *Config {
	return &Config{
		Env:                getString("ENV", ""),
		Network:            getString("NETWORK", "zilliqa"),
		Index:              getString("INDEX_NAME", "marketplace"),
		Debug:              getBool("DEBUG", false),
		ApiPort:            getString("API_PORT", "8080"),
		HealthPort:         getString("HEALTH_PORT", "8081"),
		MarketplaceAddress: getString("MARKETPLACE_ADDRESS", ""),
		AdminAddress:       getString("ADMIN_ADDRESS", ""),
		FeePercentBps:      getUint64("FEE_PERCENT_BPS", 250),
		MinimumFee:         getString("MINIMUM_FEE", "1000"),
		Aws: AwsConfig{
			AccessKey: getString("AWS_ACCESS_KEY_ID", ""),
			SecretKey: getString("AWS_SECRET_KEY_ID", ""),
			Region:    getString("AWS_REGION", ""),
		},
		Ledger: LedgerConfig{
			Url:     getString("LEDGER_URL", ""),
			Address: getString("LEDGER_ADDRESS", ""),
			Timeout: getInt("LEDGER_TIMEOUT", 30),
			Debug:   getBool("LEDGER_DEBUG", false),
		},
		Registry: RegistryConfig{
			Url:     getString("REGISTRY_URL", ""),
			Timeout: getInt("REGISTRY_TIMEOUT", 30),
			Debug:   getBool("REGISTRY_DEBUG", false),
		},
		ElasticSearch: ElasticSearchConfig{
			Hosts:            getSlice("ELASTIC_SEARCH_HOSTS", make([]string, 0), ","),
			Sniff:            getBool("ELASTIC_SEARCH_SNIFF", true),
			HealthCheck:      getBool("ELASTIC_SEARCH_HEALTH_CHECK", true),
			Debug:            getBool("ELASTIC_SEARCH_DEBUG", false),
			Username:         getString("ELASTIC_SEARCH_USERNAME", ""),
			Password:         getString("ELASTIC_SEARCH_PASSWORD", ""),
			BulkPersistCount: getInt("ELASTIC_SEARCH_BULK_PERSIST_COUNT", 300),
			Refresh:          getString("ELASTIC_SEARCH_REFRESH", "wait_for"),
		},
	}
}

func getString(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}

	return defaultValue
}

func getInt(key string, defaultValue int) int {
	valStr := getString(key, "")
	val, _, err := big.ParseFloat(valStr, 10, 0, big.ToNearestEven)
	if err != nil {
		return defaultValue
	}

	intVal, _ := val.Int64()
	return int(intVal)
}

func getUint64(key string, defaultValue uint) uint64 {
	return uint64(getInt(key, int(defaultValue)))
}

func getBool(key string, defaultValue bool) bool {
	valStr := getString(key, "")
	if val, err := strconv.ParseBool(valStr); err == nil {
		return val
	}

	return defaultValue
}

func getSlice(key string, defaultVal []string, sep string) []string {
	valStr := getString(key, "")
	if valStr == "" {
		return defaultVal
	}

	return strings.Split(valStr, sep)
}
