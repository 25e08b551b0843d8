package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	logger "github.com/sirupsen/logrus"

	"swaprouter/src/admin"
	"swaprouter/src/batch"
	"swaprouter/src/database"
	"swaprouter/src/events"
	"swaprouter/src/fees"
	"swaprouter/src/ledger"
	"swaprouter/src/orchestrator"
	"swaprouter/src/registry"
	"swaprouter/src/repository"
	"swaprouter/src/server"
	"swaprouter/src/stats"
	"swaprouter/src/token"
)

var (
	PORT     = os.Getenv("SERVER_PORT")
	APP_NAME = os.Getenv("APP_NAME")
)

func SetupLogger() {
	levelStr := strings.ToLower(os.Getenv("LOG_LEVEL"))

	level, err := logger.ParseLevel(levelStr)
	if err != nil {
		level = logger.DebugLevel
	}

	logger.SetLevel(level)
	logger.SetFormatter(&logger.TextFormatter{
		FullTimestamp: true,
	})
}

func main() {
	SetupLogger()
	defer handlePanic()

	if err := database.InitMainDB(); err != nil {
		logger.WithError(err).Fatal("Failed to connect to database")
	}

	adminConfig := admin.GetConfig()
	custody := common.HexToAddress(adminConfig.Custody)

	emitter := events.NewEmitter()
	adminStore, err := admin.NewStore(
		common.HexToAddress(adminConfig.AdminAddress),
		common.HexToAddress(adminConfig.Treasury),
		emitter,
	)
	if err != nil {
		logger.WithError(err).Fatal("Invalid admin configuration")
	}

	bank := token.NewMemoryBank()
	orderStore := repository.NewOrderRepository()
	venueStore := repository.NewVenueRepository()

	reg := registry.New(venueStore, adminStore, emitter)
	led := ledger.New(orderStore, bank, reg, adminStore, custody, emitter)

	feeConfig := fees.GetConfig()
	accountant, err := fees.NewAccountant(adminStore, bank, custody, feeConfig.ProtocolFeeBps, feeConfig.SlippageToleranceBps, emitter)
	if err != nil {
		logger.WithError(err).Fatal("Invalid fee configuration")
	}

	recorder := stats.NewRecorder(led, reg, accountant)
	executor := batch.NewHTTPConnector(batch.GetConfig())
	orch := orchestrator.New(led, reg, adminStore, accountant, executor, recorder)

	if PORT == "" {
		PORT = server.GetConfig().Port
	}

	server.StartServer(PORT, server.Deps{
		Ledger:       led,
		Orchestrator: orch,
		Registry:     reg,
		Recorder:     recorder,
		Admin:        adminStore,
		AdminConfig:  adminConfig,
		Accountant:   accountant,
		Emitter:      emitter,
	})
}

func handlePanic() {
	if r := recover(); r != nil {
		logger.WithError(fmt.Errorf("%+v", r)).Error(fmt.Sprintf("Application %s panic", APP_NAME))
	}
	//nolint
	time.Sleep(time.Second * 5)
}
