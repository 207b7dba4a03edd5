package main

import (
	"context"
	"log"
	"time"

	"github.com/citizenwallet/custody/internal/config"
	"github.com/citizenwallet/custody/internal/logging"
	"github.com/citizenwallet/custody/internal/metrics"
	"github.com/citizenwallet/custody/internal/services/db"
	"github.com/citizenwallet/custody/internal/services/ethrequest"
	"github.com/citizenwallet/custody/internal/services/events"
	"github.com/citizenwallet/custody/internal/services/inflight"
	"github.com/citizenwallet/custody/internal/services/webhook"
	"github.com/citizenwallet/custody/internal/signer"
	"github.com/citizenwallet/custody/internal/transfer"
	"github.com/citizenwallet/custody/pkg/custody"
	"github.com/citizenwallet/custody/pkg/queue"
	"github.com/citizenwallet/custody/pkg/router"
	"github.com/ethereum/go-ethereum/common"
	"github.com/getsentry/sentry-go"
	flag "github.com/spf13/pflag"
)

const (
	// in-flight guard and replay cache sizes for the in-process stores
	guardCacheSize  = 1 << 20
	replayCacheSize = 8 << 20

	receiptQueueSize    = 1000
	receiptQueueRetries = 5
)

func main() {
	log.Default().Println("launching custody service...")

	env := flag.String("env", "", "path to .env file")

	port := flag.Int("port", 3000, "port to listen on")

	notify := flag.Bool("notify", false, "post confirmed transfers to the discord webhook")

	debug := flag.Bool("debug", false, "enable debug logging")

	flag.Parse()

	ctx := context.Background()

	conf, err := config.New(ctx, *env)
	if err != nil {
		log.Fatal(err)
	}

	logger, err := logging.New(*debug)
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	logger = logger.WithField("chain", conf.ChainName)

	if conf.SentryURL != "" && conf.SentryURL != "x" {
		err = sentry.Init(sentry.ClientOptions{
			Dsn:              conf.SentryURL,
			TracesSampleRate: 1.0,
		})
		if err != nil {
			log.Fatalf("sentry.Init: %s", err)
		}
		// Flush buffered events before the program terminates.
		defer sentry.Flush(2 * time.Second)
	}

	logger.Info("connecting to rpc...")

	evm, err := ethrequest.NewEthService(ctx, conf.RPCURL, common.HexToAddress(conf.NFTContractAddress), conf.OwnerReadRetries)
	if err != nil {
		logger.Fatal(err)
	}
	defer evm.Close()

	logger.Info("fetching chain id...")

	chid, err := evm.ChainID(ctx)
	if err != nil {
		logger.Fatal(err)
	}

	logger.WithFields(logging.Fields{"chain_id": chid.String(), "contract": evm.ContractAddress().Hex()}).Info("custody running for chain")

	// a bad admin key must not stop the process, every transfer reports it instead
	var admin custody.Signer
	sig, adminErr := signer.New(conf.AdminPrivateKey, chid)
	if adminErr != nil {
		logger.WithField("err", adminErr).Warn("admin key is not usable, transfers will fail until it is fixed")
	} else {
		if err := sig.SelfCheck(); err != nil {
			logger.WithField("err", err).Warn("admin signer self-check failed")
		}
		logger.WithField("admin", sig.Address().Hex()).Info("admin wallet loaded")
		admin = sig
	}

	var guard custody.Guard
	if conf.RedisURL != "" {
		logger.Info("using redis in-flight guard...")

		pool, err := inflight.NewRedisPool(conf.RedisURL)
		if err != nil {
			logger.Fatal(err)
		}

		rg := inflight.NewRedisGuard(pool, conf.InflightTTL)
		defer rg.Close()

		guard = rg
	} else {
		guard = inflight.NewLocalGuard(guardCacheSize, conf.InflightTTL)
	}

	var wm custody.WebhookMessager = webhook.Noop{}
	if conf.DiscordURL != "" {
		wm, err = webhook.NewMessager(conf.DiscordURL, conf.ChainName, *notify)
		if err != nil {
			logger.Fatal(err)
		}
	}

	var ms metrics.Service = metrics.Nop{}
	if conf.DatadogAddr != "" {
		dd, err := metrics.New(conf.DatadogAddr, logger, "chain:"+conf.ChainName)
		if err != nil {
			logger.Fatal(err)
		}
		defer dd.Close()

		ms = dd
	}

	var publisher custody.Publisher = events.NewFallback(logger)
	if conf.AMQPURL != "" {
		logger.Info("connecting to amqp broker...")

		p, err := events.NewProducer(conf.AMQPURL, logger)
		if err != nil {
			logger.Fatal(err)
		}

		publisher = p
	}
	defer publisher.Close()

	opts := []transfer.Option{
		transfer.WithReplayStore(inflight.NewReplayStore(replayCacheSize), conf.IdempotencyTTL),
		transfer.WithConfirmationTimeout(conf.ConfirmationTimeout),
		transfer.WithMetrics(ms),
		transfer.WithLogger(logger),
	}

	var journal custody.Journal
	if !conf.DB.Disabled {
		logger.Info("starting transfer journal...")

		var d *db.DB
		if conf.DB.IsPostgres() {
			d, err = db.NewPostgresDB(chid, conf.DB.DBUser, conf.DB.DBPassword, conf.DB.DBName, conf.DB.DBHost, conf.DB.DBSSLMode)
		} else {
			d, err = db.NewSQLiteDB(chid, conf.DB.DBPath)
		}
		if err != nil {
			logger.Fatal(err)
		}
		defer d.Close()

		journal = d.TransferDB
		opts = append(opts, transfer.WithJournal(journal))
	}

	quitAck := make(chan error)

	logger.Info("starting receipt queue...")

	rq := queue.NewService("receipts", receiptQueueRetries, receiptQueueSize, ctx, wm, logger)
	opts = append(opts, transfer.WithQueue(rq))

	go func() {
		quitAck <- rq.Start(queue.NewReceiptProcessor(ctx, journal, publisher, wm))
	}()

	s := transfer.NewService(evm, admin, adminErr, guard, opts...)

	logger.Info("starting api service...")

	api := router.NewServer(conf.APIKey, s)

	go func() {
		quitAck <- api.Start(*port)
	}()

	logger.WithField("port", *port).Info("listening")

	for err := range quitAck {
		if err != nil {
			logger.Fatal(err)
		}
	}
}
