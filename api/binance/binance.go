package binance

import (
	"time"

	"github.com/sirupsen/logrus"

	"cryptostats/api"
)

// public
const (
	ApiBaseDefault = "https://api.binance.com"
	WebBaseDefault = "https://www.binance.com"

	QuoteAsset = "USDT"
)

// private
const (
	productsPath = "/exchange-api/v2/public/asset-service/product/get-products"
	klinesPath   = "/api/v3/klines"

	symbol    = "symbol"
	interval  = "interval"
	startTime = "startTime"
	endTime   = "endTime"
	limit     = "limit"

	klineLimit = 1000

	requestTimeout    = time.Second * 30
	requestsPerSecond = 10
	defaultWorkers    = 4
)

type Settings struct {
	ApiBase           string
	WebBase           string
	Timeout           time.Duration
	RequestsPerSecond float64
	Workers           int
	Logger            logrus.FieldLogger
}

// DefaultSettings points at the public binance hosts
func DefaultSettings() Settings {
	return Settings{
		ApiBase:           ApiBaseDefault,
		WebBase:           WebBaseDefault,
		Timeout:           requestTimeout,
		RequestsPerSecond: requestsPerSecond,
		Workers:           defaultWorkers,
	}
}

// BinanceClient reads the product list from the web host and klines from the api host
type BinanceClient struct {
	api     api.Connection
	web     api.Connection
	workers int
	logger  logrus.FieldLogger
}

func GetClient(settings Settings) (*BinanceClient, error) {
	defaults := DefaultSettings()
	if settings.ApiBase == "" {
		settings.ApiBase = defaults.ApiBase
	}
	if settings.WebBase == "" {
		settings.WebBase = defaults.WebBase
	}
	if settings.Timeout <= 0 {
		settings.Timeout = defaults.Timeout
	}
	if settings.RequestsPerSecond <= 0 {
		settings.RequestsPerSecond = defaults.RequestsPerSecond
	}
	if settings.Workers <= 0 {
		settings.Workers = defaults.Workers
	}

	apiHost, err := api.NewClientHost(settings.ApiBase, settings.Timeout, settings.RequestsPerSecond)
	if err != nil {
		return nil, err
	}

	webHost, err := api.NewClientHost(settings.WebBase, settings.Timeout, settings.RequestsPerSecond)
	if err != nil {
		return nil, err
	}

	return NewClient(apiHost, webHost, settings.Workers, settings.Logger), nil
}

// NewClient is GetClient for callers that bring their own connections
func NewClient(apiConn, webConn api.Connection, workers int, logger logrus.FieldLogger) *BinanceClient {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &BinanceClient{
		api:     apiConn,
		web:     webConn,
		workers: max(workers, 1),
		logger:  logger,
	}
}
