// Package engine wires configured indicators to a stream of bars. Each
// symbol gets its own set of indicator instances, created lazily on the
// first bar seen for that symbol.
package engine

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"tastreamv1/config"
	"tastreamv1/internal/model"
	"tastreamv1/internal/ringbuf"
	"tastreamv1/internal/ta"
)

// instrument adapts one indicator to a uniform bar-driven interface.
// compute returns the primary value plus named components for
// multi-output indicators (nil for scalar ones).
type instrument struct {
	name    string
	warmAt  int // bars needed before updates are flagged warm
	seen    int
	compute func(bar model.Bar) (decimal.Decimal, map[string]decimal.Decimal)
	reset   func()
}

// Engine computes all configured indicators for every symbol it sees.
// Designed for single-goroutine usage — no locks needed.
type Engine struct {
	specs []config.IndicatorSpec

	// state[symbol] → indicator instances for that symbol
	state map[string][]*instrument

	// OnCompute is called with the elapsed time of each Process call (for metrics).
	OnCompute func(d time.Duration)

	// OnBar is called by Run for every bar popped from the ring, before the
	// indicators see it. The service uses this to persist bars and track liveness.
	OnBar func(bar model.Bar)
}

// New creates an engine for the given indicator specs. Every spec is
// validated up front by building a throwaway instance, so a bad period
// fails at startup instead of on the first bar.
func New(specs []config.IndicatorSpec) (*Engine, error) {
	if len(specs) == 0 {
		return nil, fmt.Errorf("engine: no indicators configured")
	}
	for _, s := range specs {
		if _, err := buildInstrument(s); err != nil {
			return nil, err
		}
	}
	return &Engine{
		specs: specs,
		state: make(map[string][]*instrument, 8),
	}, nil
}

// Process feeds one bar through every indicator for the bar's symbol and
// returns the resulting updates.
func (e *Engine) Process(bar model.Bar) []*model.IndicatorUpdate {
	start := time.Now()

	symbol := bar.Symbol()
	instruments, exists := e.state[symbol]
	if !exists {
		// First bar for this symbol — create indicator instances.
		// Specs were validated in New, so errors cannot occur here.
		instruments = make([]*instrument, 0, len(e.specs))
		for _, s := range e.specs {
			in, _ := buildInstrument(s)
			instruments = append(instruments, in)
		}
		e.state[symbol] = instruments
		log.Printf("[engine] created %d indicators for %s", len(instruments), symbol)
	}

	updates := make([]*model.IndicatorUpdate, 0, len(instruments))
	for _, in := range instruments {
		value, components := in.compute(bar)
		in.seen++
		updates = append(updates, &model.IndicatorUpdate{
			Name:       in.name,
			Symbol:     symbol,
			TS:         bar.Timestamp(),
			Value:      value,
			Components: components,
			Warm:       in.seen >= in.warmAt,
		})
	}

	if e.OnCompute != nil {
		e.OnCompute(time.Since(start))
	}
	return updates
}

// Warmup replays historical bars through the engine without emitting
// updates, so live output starts with fully primed windows. Returns the
// number of bars consumed.
func (e *Engine) Warmup(bars []model.Bar) int {
	for _, bar := range bars {
		e.Process(bar)
	}
	return len(bars)
}

// Reset restores every indicator for a symbol to its post-construction
// state. Replaying the same bars afterwards reproduces the same outputs.
func (e *Engine) Reset(symbol string) {
	for _, in := range e.state[symbol] {
		in.reset()
		in.seen = 0
	}
}

// Indicators returns the display names of the configured indicators,
// e.g. "SMA(9)". Specs were validated in New, so building cannot fail.
func (e *Engine) Indicators() []string {
	names := make([]string, 0, len(e.specs))
	for _, s := range e.specs {
		in, _ := buildInstrument(s)
		names = append(names, in.name)
	}
	return names
}

// Symbols returns the symbols the engine has seen, sorted.
func (e *Engine) Symbols() []string {
	symbols := make([]string, 0, len(e.state))
	for s := range e.state {
		symbols = append(symbols, s)
	}
	sort.Strings(symbols)
	return symbols
}

// Run pops bars from the ring and emits updates. A full output channel
// drops the update rather than stalling the pipeline. Blocks until ctx done.
func (e *Engine) Run(ctx context.Context, ring *ringbuf.Ring, out chan<- *model.IndicatorUpdate) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		bar, ok := ring.Pop()
		if !ok {
			select {
			case <-ctx.Done():
				return
			case <-time.After(time.Millisecond):
			}
			continue
		}

		if e.OnBar != nil {
			e.OnBar(bar)
		}

		for _, u := range e.Process(bar) {
			select {
			case out <- u:
			default:
				log.Printf("[engine] output channel full, dropping %s", u.Key())
			}
		}
	}
}

// ────────────────────────────────────────────────────────────────────────────
// Instrument construction
// ────────────────────────────────────────────────────────────────────────────

// buildInstrument maps a config spec to a live indicator instance.
func buildInstrument(spec config.IndicatorSpec) (*instrument, error) {
	switch spec.Kind {
	case "sma":
		p, err := periodArg(spec, 0, ta.DefaultSMAPeriod)
		if err != nil {
			return nil, err
		}
		ind, err := ta.NewSMA(p)
		if err != nil {
			return nil, specErr(spec, err)
		}
		return scalar(ind.String(), p, ind.Reset, func(b model.Bar) decimal.Decimal { return ind.NextBar(b) }), nil

	case "ema":
		p, err := periodArg(spec, 0, ta.DefaultEMAPeriod)
		if err != nil {
			return nil, err
		}
		ind, err := ta.NewEMA(p)
		if err != nil {
			return nil, specErr(spec, err)
		}
		return scalar(ind.String(), p, ind.Reset, func(b model.Bar) decimal.Decimal { return ind.NextBar(b) }), nil

	case "sd", "stddev":
		p, err := periodArg(spec, 0, ta.DefaultStdDevPeriod)
		if err != nil {
			return nil, err
		}
		ind, err := ta.NewStdDev(p)
		if err != nil {
			return nil, specErr(spec, err)
		}
		return scalar(ind.String(), p, ind.Reset, func(b model.Bar) decimal.Decimal { return ind.NextBar(b) }), nil

	case "roc":
		p, err := periodArg(spec, 0, ta.DefaultROCPeriod)
		if err != nil {
			return nil, err
		}
		ind, err := ta.NewROC(p)
		if err != nil {
			return nil, specErr(spec, err)
		}
		return scalar(ind.String(), p, ind.Reset, func(b model.Bar) decimal.Decimal { return ind.NextBar(b) }), nil

	case "er":
		p, err := periodArg(spec, 0, ta.DefaultEfficiencyRatioPeriod)
		if err != nil {
			return nil, err
		}
		ind, err := ta.NewEfficiencyRatio(p)
		if err != nil {
			return nil, specErr(spec, err)
		}
		return scalar(ind.String(), p, ind.Reset, func(b model.Bar) decimal.Decimal { return ind.NextBar(b) }), nil

	case "tr":
		ind := ta.NewTrueRange()
		return scalar(ind.String(), 2, ind.Reset, func(b model.Bar) decimal.Decimal { return ind.NextBar(b) }), nil

	case "atr":
		p, err := periodArg(spec, 0, ta.DefaultATRPeriod)
		if err != nil {
			return nil, err
		}
		ind, err := ta.NewATR(p)
		if err != nil {
			return nil, specErr(spec, err)
		}
		return scalar(ind.String(), p, ind.Reset, func(b model.Bar) decimal.Decimal { return ind.NextBar(b) }), nil

	case "obv":
		ind := ta.NewOBV()
		return scalar(ind.String(), 1, ind.Reset, func(b model.Bar) decimal.Decimal { return ind.NextBar(b) }), nil

	case "bb":
		p, err := periodArg(spec, 0, ta.DefaultBollingerBandsPeriod)
		if err != nil {
			return nil, err
		}
		mult, err := multiplierArg(spec, 1, ta.DefaultBollingerBandsMultiplier)
		if err != nil {
			return nil, err
		}
		ind, err := ta.NewBollingerBands(p, mult)
		if err != nil {
			return nil, specErr(spec, err)
		}
		return &instrument{
			name:   ind.String(),
			warmAt: p,
			compute: func(bar model.Bar) (decimal.Decimal, map[string]decimal.Decimal) {
				out := ind.NextBar(bar)
				return out.Average, map[string]decimal.Decimal{
					"upper": out.Upper,
					"lower": out.Lower,
				}
			},
			reset: ind.Reset,
		}, nil

	case "kc":
		p, err := periodArg(spec, 0, ta.DefaultKeltnerChannelPeriod)
		if err != nil {
			return nil, err
		}
		mult, err := multiplierArg(spec, 1, ta.DefaultKeltnerChannelMultiplier)
		if err != nil {
			return nil, err
		}
		ind, err := ta.NewKeltnerChannel(p, mult)
		if err != nil {
			return nil, specErr(spec, err)
		}
		return &instrument{
			name:   ind.String(),
			warmAt: p,
			compute: func(bar model.Bar) (decimal.Decimal, map[string]decimal.Decimal) {
				out := ind.NextBar(bar)
				return out.Average, map[string]decimal.Decimal{
					"upper": out.Upper,
					"lower": out.Lower,
				}
			},
			reset: ind.Reset,
		}, nil

	case "macd":
		fast, slow, signal, err := macdArgs(spec, ta.DefaultMACDFastPeriod, ta.DefaultMACDSlowPeriod, ta.DefaultMACDSignalPeriod)
		if err != nil {
			return nil, err
		}
		ind, err := ta.NewMACD(fast, slow, signal)
		if err != nil {
			return nil, specErr(spec, err)
		}
		return &instrument{
			name:   ind.String(),
			warmAt: slow,
			compute: func(bar model.Bar) (decimal.Decimal, map[string]decimal.Decimal) {
				out := ind.NextBar(bar)
				return out.MACD, map[string]decimal.Decimal{
					"signal":    out.Signal,
					"histogram": out.Histogram,
				}
			},
			reset: ind.Reset,
		}, nil

	case "ppo":
		fast, slow, signal, err := macdArgs(spec, ta.DefaultPPOFastPeriod, ta.DefaultPPOSlowPeriod, ta.DefaultPPOSignalPeriod)
		if err != nil {
			return nil, err
		}
		ind, err := ta.NewPPO(fast, slow, signal)
		if err != nil {
			return nil, specErr(spec, err)
		}
		return &instrument{
			name:   ind.String(),
			warmAt: slow,
			compute: func(bar model.Bar) (decimal.Decimal, map[string]decimal.Decimal) {
				out := ind.NextBar(bar)
				return out.PPO, map[string]decimal.Decimal{
					"signal":    out.Signal,
					"histogram": out.Histogram,
				}
			},
			reset: ind.Reset,
		}, nil

	default:
		return nil, fmt.Errorf("engine: unknown indicator kind %q", spec.Kind)
	}
}

// scalar wraps a single-output indicator behind the uniform instrument shape.
func scalar(name string, warmAt int, reset func(), next func(model.Bar) decimal.Decimal) *instrument {
	return &instrument{
		name:   name,
		warmAt: warmAt,
		compute: func(bar model.Bar) (decimal.Decimal, map[string]decimal.Decimal) {
			return next(bar), nil
		},
		reset: reset,
	}
}

func periodArg(spec config.IndicatorSpec, idx, fallback int) (int, error) {
	if len(spec.Args) <= idx {
		return fallback, nil
	}
	n, err := strconv.Atoi(spec.Args[idx])
	if err != nil {
		return 0, fmt.Errorf("engine: %s: bad period %q", spec.Kind, spec.Args[idx])
	}
	return n, nil
}

func multiplierArg(spec config.IndicatorSpec, idx int, fallback decimal.Decimal) (decimal.Decimal, error) {
	if len(spec.Args) <= idx {
		return fallback, nil
	}
	m, err := decimal.NewFromString(spec.Args[idx])
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("engine: %s: bad multiplier %q", spec.Kind, spec.Args[idx])
	}
	return m, nil
}

func macdArgs(spec config.IndicatorSpec, defFast, defSlow, defSignal int) (fast, slow, signal int, err error) {
	fast, slow, signal = defFast, defSlow, defSignal
	if fast, err = periodArg(spec, 0, defFast); err != nil {
		return
	}
	if slow, err = periodArg(spec, 1, defSlow); err != nil {
		return
	}
	signal, err = periodArg(spec, 2, defSignal)
	return
}

func specErr(spec config.IndicatorSpec, err error) error {
	return fmt.Errorf("engine: %s%v: %w", spec.Kind, spec.Args, err)
}
