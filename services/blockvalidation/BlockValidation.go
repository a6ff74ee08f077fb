// Package blockvalidation decides whether a block may extend the current chain tip.
//
// A Pipeline runs an ordered list of rules against one block. The default rules load the coins the
// block needs with one store fetch (LoadCoinViewRule), check the block structure, enforce BIP30,
// connect the transactions to the working set and finally commit the working set and advance the
// tip (SaveCoinViewRule). Each run ends accepted, rejected (the block is invalid) or aborted (an
// infrastructure fault, the run may be retried).
//
// BlockValidator drives the pipeline for the rest of the node: it derives the rule flags, retries
// aborted runs, remembers rejected blocks and caps the number of concurrent runs.
package blockvalidation

import (
	"context"
	"time"

	"github.com/bsv-blockchain/coinview/chainstate"
	"github.com/bsv-blockchain/coinview/errors"
	"github.com/bsv-blockchain/coinview/model"
	"github.com/bsv-blockchain/coinview/settings"
	"github.com/bsv-blockchain/coinview/stores/utxo"
	"github.com/bsv-blockchain/coinview/ulogger"
	"github.com/bsv-blockchain/coinview/util/retry"
	"github.com/bsv-blockchain/go-bt/v2/chainhash"
	"github.com/ordishs/go-utils/expiringmap"
	"golang.org/x/sync/semaphore"
)

// DefaultRules returns the consensus rules in the order they must run.
func DefaultRules(logger ulogger.Logger, store utxo.Store, chainState chainstate.TipWriter) []Rule {
	return []Rule{
		NewLoadCoinViewRule(logger, store, chainState),
		NewCheckTransactionsRule(),
		NewBIP30Rule(),
		NewConnectTransactionsRule(),
		NewSaveCoinViewRule(logger, store, chainState),
	}
}

type BlockValidator struct {
	logger     ulogger.Logger
	settings   *settings.Settings
	chainState chainstate.TipWriter
	pipeline   *Pipeline

	// rejectedBlocks remembers why recently rejected blocks failed, a resubmission fails the same way
	rejectedBlocks *expiringmap.ExpiringMap[chainhash.Hash, error]

	// sem caps the number of pipeline runs in flight
	sem *semaphore.Weighted
}

func NewBlockValidator(logger ulogger.Logger, tSettings *settings.Settings, store utxo.Store, chainState chainstate.TipWriter) *BlockValidator {
	initPrometheusMetrics()

	concurrency := tSettings.BlockValidation.Concurrency
	if concurrency <= 0 {
		concurrency = 1
	}

	rejectedTTL := tSettings.BlockValidation.RejectedBlockCacheTTL
	if rejectedTTL <= 0 {
		rejectedTTL = 10 * time.Minute
	}

	return &BlockValidator{
		logger:         logger,
		settings:       tSettings,
		chainState:     chainState,
		pipeline:       NewPipeline(logger, tSettings.ChainCfgParams, DefaultRules(logger, store, chainState)...),
		rejectedBlocks: expiringmap.New[chainhash.Hash, error](rejectedTTL),
		sem:            semaphore.NewWeighted(int64(concurrency)),
	}
}

// Pipeline returns the pipeline the validator drives.
func (bv *BlockValidator) Pipeline() *Pipeline {
	return bv.pipeline
}

// flags returns the rule flags for block on top of the current tip.
func (bv *BlockValidator) flags(block *model.Block) Flags {
	height := bv.chainState.CurrentTip().Height + 1

	flags := DeploymentFlags(bv.settings.ChainCfgParams, height, block.Hash())
	if bv.settings.BlockValidation.EnforceBIP30 {
		flags.EnforceBIP30 = true
	}

	return flags
}

// ValidateBlock validates block and, when it is valid, makes it the new tip. Aborted runs are
// retried while the fault is retryable, rejected runs never are. The returned error is only set when
// no run could be started, the outcome of the validation itself is in the result.
func (bv *BlockValidator) ValidateBlock(ctx context.Context, block *model.Block) (*ValidationResult, error) {
	start := time.Now()
	blockHash := *block.Hash()

	defer func() {
		prometheusBlockValidatorValidate.Observe(time.Since(start).Seconds())
	}()

	if reason, ok := bv.rejectedBlocks.Get(blockHash); ok {
		return &ValidationResult{
			BlockHash: blockHash,
			State:     StateRejected,
			Err:       errors.NewBlockRejectedRecentlyError("[ValidateBlock][%s] block was rejected recently", blockHash, reason),
		}, nil
	}

	if err := bv.sem.Acquire(ctx, 1); err != nil {
		return nil, errors.NewContextCanceledError("[ValidateBlock][%s] waiting for a validation slot", blockHash, err)
	}

	defer bv.sem.Release(1)

	prometheusBlockValidatorInFlight.Inc()
	defer prometheusBlockValidatorInFlight.Dec()

	attempts := 0

	result, err := retry.Retry(ctx, bv.logger, func() (*ValidationResult, error) {
		attempts++
		if attempts > 1 {
			prometheusBlockValidatorRetries.Inc()
		}

		// flags are derived again on every attempt, the tip may have moved
		r := bv.pipeline.Validate(ctx, block, bv.flags(block))
		if r.State == StateAborted {
			return r, r.Err
		}

		return r, nil
	},
		retry.WithRetryCount(bv.settings.BlockValidation.MaxRetries),
		retry.WithBackoffMultiplier(bv.settings.BlockValidation.RetryBackoffMultiplier),
		retry.WithBackoffDurationType(bv.settings.BlockValidation.RetryBackoffDuration),
		retry.WithRetryIf(errors.IsRetryableError),
		retry.WithMessage("[ValidateBlock]["+blockHash.String()+"] pipeline aborted, retrying"),
	)

	if result == nil {
		return nil, errors.NewContextCanceledError("[ValidateBlock][%s] canceled before validation started", blockHash, err)
	}

	switch result.State {
	case StateAccepted:
		bv.logger.Infof("[ValidateBlock] %s", result)
	case StateRejected:
		// a block that lost a race for the tip is not invalid, it may be resubmitted on the new tip
		if !errors.Is(result.Err, errors.ErrInvalidPreviousTip) {
			bv.rejectedBlocks.Set(blockHash, result.Err)
			prometheusBlockValidatorRejectedCache.Set(float64(bv.rejectedBlocks.Len()))
		}

		bv.logger.Warnf("[ValidateBlock] %s", result)
	default:
		bv.logger.Errorf("[ValidateBlock] %s after %d attempts", result, attempts)
	}

	return result, nil
}
