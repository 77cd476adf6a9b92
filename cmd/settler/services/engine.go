package services

/* Engine Service */
/*

This service runs the raffle lifecycle. Every payment claimed by a client is verified against an
Ethereum-compatible ledger before the raffle advances.

Key components:
- ledger reader: JSON-RPC client of the ledger node
- verifier: checks payments, caches the ledger observations
- payment guard: blocks operations on raffles without verified creation payment
- notifier: publishes raffle events to NATS, or logs them if the message queue is disabled
- expiry worker: periodically closes raffles whose end time has passed

*/

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/holiman/uint256"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/attribute"

	"github.com/rafflechain/settler/config"
	"github.com/rafflechain/settler/internal/cache"
	"github.com/rafflechain/settler/internal/engine"
	"github.com/rafflechain/settler/internal/guard"
	"github.com/rafflechain/settler/internal/ledger"
	"github.com/rafflechain/settler/internal/notify"
	"github.com/rafflechain/settler/internal/raffle/store"
	"github.com/rafflechain/settler/internal/verifier"
)

const saveRetryInterval = 20 * time.Millisecond

var ErrInvalidCreationFee = errors.New("invalid creation fee")

func StartEngine(logger *slog.Logger, cfg *config.SettlerConfig, cacheStore cache.Store, raffleStore store.RaffleStore,
	tracingAttributes []attribute.KeyValue,
) (*engine.Engine, func(), error) {
	logger = logger.With(slog.String("service", "engine"))
	logger.Info("Starting")

	var (
		reader   *ledger.EthereumReader
		notifier *notify.NatsNotifier
		worker   *engine.ExpiryWorker
	)

	stopFn := func() {
		logger.Info("Shutting down engine")
		disposeEngine(worker, notifier, reader)
		logger.Info("Shutdown engine complete")
	}

	creationFee, err := uint256.FromDecimal(cfg.Engine.CreationFee)
	if err != nil {
		return nil, nil, errors.Join(ErrInvalidCreationFee, err)
	}

	ledgerOpts := []ledger.Option{
		ledger.WithLogger(logger),
		ledger.WithCallTimeout(cfg.Ledger.CallTimeout),
		ledger.WithRetries(cfg.Ledger.MaxRetries, cfg.Ledger.RetryInterval),
	}
	verifierOpts := []verifier.Option{
		verifier.WithLogger(logger),
		verifier.WithCacheTTL(cfg.Verifier.CacheTTL),
	}
	guardOpts := []guard.Option{guard.WithLogger(logger)}
	engineOpts := []engine.Option{
		engine.WithLogger(logger),
		engine.WithPaymentTerms(cfg.Verifier.ContractAddress, creationFee, cfg.Verifier.MaxTxAge),
		engine.WithSaveRetries(cfg.Engine.MaxSaveRetries, saveRetryInterval),
	}

	if tracingAttributes != nil {
		ledgerOpts = append(ledgerOpts, ledger.WithTracer(tracingAttributes...))
		verifierOpts = append(verifierOpts, verifier.WithTracer(tracingAttributes...))
		engineOpts = append(engineOpts, engine.WithTracer(tracingAttributes...))
	}

	if cfg.Prometheus.IsEnabled() {
		verifierStats, err := verifier.NewStats(prometheus.DefaultRegisterer)
		if err != nil {
			return nil, nil, err
		}
		guardStats, err := guard.NewStats(prometheus.DefaultRegisterer)
		if err != nil {
			return nil, nil, err
		}
		engineStats, err := engine.NewStats(prometheus.DefaultRegisterer)
		if err != nil {
			return nil, nil, err
		}

		verifierOpts = append(verifierOpts, verifier.WithStats(verifierStats))
		guardOpts = append(guardOpts, guard.WithStats(guardStats))
		engineOpts = append(engineOpts, engine.WithStats(engineStats))
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Ledger.CallTimeout)
	defer cancel()

	reader, err = ledger.Dial(ctx, cfg.Ledger.RPCURL, ledgerOpts...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to ledger: %v", err)
	}

	err = reader.CheckChainID(ctx, cfg.Ledger.ChainID)
	if err != nil {
		stopFn()
		return nil, nil, fmt.Errorf("failed to check ledger chain: %v", err)
	}

	v, err := verifier.New(reader, cacheStore, verifierOpts...)
	if err != nil {
		stopFn()
		return nil, nil, fmt.Errorf("failed to create verifier: %v", err)
	}

	paymentGuard, err := guard.New(v, guardOpts...)
	if err != nil {
		stopFn()
		return nil, nil, fmt.Errorf("failed to create payment guard: %v", err)
	}

	if cfg.MessageQueue.Enabled {
		nc, err := notify.NewNatsConnection(cfg.MessageQueue.URL, logger)
		if err != nil {
			stopFn()
			return nil, nil, fmt.Errorf("failed to connect to message queue: %v", err)
		}

		notifier, err = notify.NewNatsNotifier(nc, cfg.MessageQueue.SubjectPrefix, notify.WithLogger(logger))
		if err != nil {
			stopFn()
			return nil, nil, fmt.Errorf("failed to create notifier: %v", err)
		}

		engineOpts = append(engineOpts, engine.WithNotifier(notifier))
	}

	eng, err := engine.New(raffleStore, paymentGuard, reader, engineOpts...)
	if err != nil {
		stopFn()
		return nil, nil, fmt.Errorf("failed to create engine: %v", err)
	}

	worker = engine.NewExpiryWorker(eng, cfg.Engine.ExpiryInterval, cfg.Engine.ExpiryBatch)
	worker.Start()

	return eng, stopFn, nil
}

func disposeEngine(worker *engine.ExpiryWorker, notifier *notify.NatsNotifier, reader *ledger.EthereumReader) {
	// dispose the dependencies in the correct order:
	// 1. worker - no new transitions
	// 2. notifier - flush pending events
	// 3. ledger connection

	if worker != nil {
		worker.GracefulStop()
	}
	if notifier != nil {
		notifier.Shutdown()
	}
	if reader != nil {
		reader.Close()
	}
}
