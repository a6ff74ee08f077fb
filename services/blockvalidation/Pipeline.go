package blockvalidation

import (
	"context"
	"fmt"
	"time"

	"github.com/bsv-blockchain/coinview/errors"
	"github.com/bsv-blockchain/coinview/model"
	"github.com/bsv-blockchain/coinview/tracing"
	"github.com/bsv-blockchain/coinview/ulogger"
	"github.com/bsv-blockchain/go-bt/v2/chainhash"
	"github.com/bsv-blockchain/go-chaincfg"
	"github.com/looplab/fsm"
)

type State string

const (
	StatePending  State = "pending"
	StateRunning  State = "running"
	StateAccepted State = "accepted"
	StateRejected State = "rejected"
	StateAborted  State = "aborted"
)

const (
	eventRun    = "run"
	eventAccept = "accept"
	eventReject = "reject"
	eventAbort  = "abort"
)

// ValidationResult is the outcome of one pipeline run.
type ValidationResult struct {
	BlockHash chainhash.Hash
	State     State
	// Err is nil when accepted, the rejection when rejected and the fault when aborted
	Err        error
	FailedRule string
	Height     uint32
	FetchedIDs int
	Duration   time.Duration
}

func (r *ValidationResult) String() string {
	if r.Err == nil {
		return fmt.Sprintf("block %s at height %d %s in %s", r.BlockHash, r.Height, r.State, r.Duration)
	}

	return fmt.Sprintf("block %s at height %d %s by %s in %s: %v", r.BlockHash, r.Height, r.State, r.FailedRule, r.Duration, r.Err)
}

// Pipeline runs a fixed, ordered list of rules against a block. A run stops at the first rule that
// fails. There is no way to resume a run halfway, a retry starts again from the first rule.
type Pipeline struct {
	logger ulogger.Logger
	params *chaincfg.Params
	rules  []Rule
}

func NewPipeline(logger ulogger.Logger, params *chaincfg.Params, rules ...Rule) *Pipeline {
	initPrometheusMetrics()

	return &Pipeline{
		logger: logger,
		params: params,
		rules:  rules,
	}
}

// Rules returns the rule names in execution order.
func (p *Pipeline) Rules() []string {
	names := make([]string, len(p.rules))
	for i, rule := range p.rules {
		names[i] = rule.Name()
	}

	return names
}

func newStateMachine() *fsm.FSM {
	return fsm.NewFSM(
		string(StatePending),
		fsm.Events{
			{Name: eventRun, Src: []string{string(StatePending)}, Dst: string(StateRunning)},
			{Name: eventAccept, Src: []string{string(StateRunning)}, Dst: string(StateAccepted)},
			{Name: eventReject, Src: []string{string(StateRunning)}, Dst: string(StateRejected)},
			{Name: eventAbort, Src: []string{string(StateRunning)}, Dst: string(StateAborted)},
		},
		fsm.Callbacks{},
	)
}

// Validate runs every rule against block in order. The result is never nil.
func (p *Pipeline) Validate(ctx context.Context, block *model.Block, flags Flags) *ValidationResult {
	start := time.Now()

	ctx, _, deferFn := tracing.Tracer("blockvalidation").Start(ctx, "Pipeline:Validate",
		tracing.WithHistogram(prometheusPipelineDuration),
		tracing.WithDebugLogMessage(p.logger, "[Pipeline][%s] validating block with %d transactions", block.Hash(), len(block.Transactions)),
	)

	vctx := NewContext(block, flags, p.params)
	machine := newStateMachine()

	// transitions must happen even when ctx is canceled, the run still has to end in a final state
	fsmCtx := context.WithoutCancel(ctx)

	result := &ValidationResult{
		BlockHash: *block.Hash(),
	}

	defer func() {
		result.State = State(machine.Current())
		result.Height = vctx.Height
		result.FetchedIDs = len(vctx.FetchedIDs)
		result.Duration = time.Since(start)

		prometheusPipelineResults.WithLabelValues(string(result.State), errors.GetErrorCategory(result.Err)).Inc()

		deferFn(result.Err)
	}()

	if err := machine.Event(fsmCtx, eventRun); err != nil {
		result.Err = errors.NewStateError("[Pipeline][%s] cannot start run", block.Hash(), err)
		return result
	}

	for _, rule := range p.rules {
		ruleStart := time.Now()
		err := rule.Run(ctx, vctx)

		prometheusRuleDuration.WithLabelValues(rule.Name()).Observe(time.Since(ruleStart).Seconds())

		if err == nil {
			continue
		}

		result.Err = err
		result.FailedRule = rule.Name()

		event := eventAbort
		if errors.IsRejection(err) {
			event = eventReject
		}

		p.transition(fsmCtx, machine, event, block.Hash())

		p.logger.Debugf("[Pipeline][%s] %s by rule %s: %v", block.Hash(), machine.Current(), rule.Name(), err)

		return result
	}

	p.transition(fsmCtx, machine, eventAccept, block.Hash())

	return result
}

// transition fires event on machine. A refused transition leaves the run in its current state,
// which the result then reports.
func (p *Pipeline) transition(ctx context.Context, machine *fsm.FSM, event string, blockHash *chainhash.Hash) {
	if err := machine.Event(ctx, event); err != nil {
		p.logger.Warnf("[Pipeline][%s] %s in state %s failed: %v", blockHash, event, machine.Current(), err)
	}
}
