package main

import (
	"fmt"
	"net/http"

	"github.com/ZilDuck/zilliqa-nft-marketplace/internal/config"
	"github.com/ZilDuck/zilliqa-nft-marketplace/internal/config/di"
	"github.com/ZilDuck/zilliqa-nft-marketplace/internal/server"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

var container *di.Container

func main() {
	config.Init("marketd")

	var err error
	container, err = di.NewContainer()
	if err != nil {
		zap.L().With(zap.Error(err)).Fatal("Failed to build container")
	}

	container.GetElastic().InstallMappings()

	// Construction registers the queue listeners for sold/stale/cancelled
	// events.
	container.GetNotifier()

	go health()
	go container.GetDaemon().Execute()

	router := server.NewServer(container.GetEngine()).Router()

	zap.L().With(zap.String("port", config.Get().ApiPort)).Info("Marketplace Started")

	if err := http.ListenAndServe(":"+config.Get().ApiPort, router); err != nil {
		zap.L().With(zap.Error(err)).Fatal("Failed to start marketplace")
	}
}

func health() {
	if err := http.ListenAndServe(":"+config.Get().HealthPort, healthRouter()); err != nil {
		zap.L().With(zap.Error(err)).Error("Failed to start health probe")
	}
}

func healthRouter() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = fmt.Fprintf(w, "OK")
	}).Methods("GET")

	return r
}
