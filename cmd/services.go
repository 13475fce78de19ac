package cmd

import (
	"context"
	"fmt"
	"log"

	"cloud.google.com/go/pubsub"

	"splitsui/classify"
	"splitsui/coin"
	"splitsui/config"
	"splitsui/ledger/ledger"
	ledgermem "splitsui/ledger/mem"
	"splitsui/ledger/rpc"
	"splitsui/logger"
	"splitsui/notify/gcppubsub"
	"splitsui/notify/goch"
	"splitsui/notify/notify"
	"splitsui/notify/rabbit"
	"splitsui/recon"
	"splitsui/store/pg"
	"splitsui/store/store"
	"splitsui/submit"
	"splitsui/web"
)

// notifyMode selects the message queue backend for outcome and change
// notifications.
type notifyMode string

const (
	notifyGoChan    notifyMode = "go_chan"
	notifyRabbitMQ  notifyMode = "rabbitmq"
	notifyGCPPubSub notifyMode = "gcp_pub_sub"
)

type serviceOptions struct {
	dev        bool
	memLedger  bool
	notifyMode notifyMode
	withDB     bool
}

// buildServices assembles the full service graph from configuration.
// The returned cleanup releases backend connections and must run on
// shutdown.
func buildServices(opts serviceOptions) (web.Services, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return web.Services{}, nil, fmt.Errorf("failed to load config: %w", err)
	}

	zlog := logger.New()
	if opts.dev {
		zlog = logger.NewDevelopment()
	}

	var client ledger.Client
	if opts.memLedger {
		client = ledgermem.NewInMemoryLedger()
	} else {
		client = rpc.New(cfg.RPCURL, cfg.SignerURL)
	}

	notifier, notifierCleanup, err := buildNotifier(opts.notifyMode, cfg)
	if err != nil {
		return web.Services{}, nil, err
	}

	var archive store.Archive
	var archiveCleanup func()
	if opts.withDB {
		gormDB, err := pg.InitPostgresGORM(pg.CreateDSN())
		if err != nil {
			notifierCleanup()
			return web.Services{}, nil, fmt.Errorf("failed to connect to postgres: %w", err)
		}
		archive = pg.NewGORMArchive(gormDB)
		archiveCleanup = func() { pg.CloseGORM(gormDB) }
	}

	cleanup := func() {
		if archiveCleanup != nil {
			archiveCleanup()
		}
		notifierCleanup()
		_ = zlog.Sync()
	}

	svc := web.Services{
		Config:     cfg,
		Log:        zlog,
		Client:     client,
		Reconciler: recon.New(client, cfg.PackageID, cfg.EventPageLimit, zlog),
		Classifier: classify.New(cfg.PackageID, zlog),
		Submitter: submit.NewService(client, notifier.GetOutcomeMessageQueue(), submit.Config{
			PackageID:  cfg.PackageID,
			CoinType:   cfg.CoinType,
			GasBudget:  cfg.GasBudget,
			FeeReserve: coin.Mist(cfg.FeeReserveMist),
		}, zlog),
		Notifier: notifier,
		Archive:  archive,
	}
	return svc, cleanup, nil
}

func buildNotifier(mode notifyMode, cfg *config.Config) (notify.PaymentMessageQueueWrapper, func(), error) {
	switch mode {
	case notifyRabbitMQ:
		conn := rabbit.NewRabbitConnection(cfg.RabbitURL)
		wrapper, err := rabbit.NewRabbitPaymentMessageQueueWrapper(conn)
		if err != nil {
			_ = conn.Close()
			return nil, nil, fmt.Errorf("failed to set up rabbitmq queues: %w", err)
		}
		return wrapper, func() { _ = conn.Close() }, nil
	case notifyGCPPubSub:
		ctx := context.Background()
		psClient, err := pubsub.NewClient(ctx, gcppubsub.GetGCPProjectID())
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create pubsub client: %w", err)
		}
		wrapper, err := gcppubsub.NewGCPPaymentMessageQueueWrapper(ctx, psClient)
		if err != nil {
			_ = psClient.Close()
			return nil, nil, fmt.Errorf("failed to set up pubsub topics: %w", err)
		}
		return wrapper, func() { _ = psClient.Close() }, nil
	case notifyGoChan:
		return goch.NewGoChanPaymentMessageQueueWrapper(), func() {}, nil
	default:
		log.Printf("unknown notify mode %q, falling back to go_chan", mode)
		return goch.NewGoChanPaymentMessageQueueWrapper(), func() {}, nil
	}
}
