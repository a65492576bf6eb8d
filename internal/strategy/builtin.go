package strategy

import (
	"fmt"
	"math"
	"sort"

	"github.com/ajitpratap0/cryptogpt/internal/indicators"
	"github.com/ajitpratap0/cryptogpt/pkg/params"
	"github.com/ajitpratap0/cryptogpt/pkg/phase"
)

// Factory creates a fresh strategy instance whose exported fields hold parameters
type Factory func() (any, error)

var builtins = map[string]Factory{
	"RSIStrategy": func() (any, error) { return NewRSIStrategy() },
}

// Builtin creates a new instance of the built-in class
func Builtin(class string) (any, error) {
	f, ok := builtins[class]
	if !ok {
		return nil, fmt.Errorf("unknown strategy class %q", class)
	}
	return f()
}

// Builtins returns the sorted names of all built-in classes
func Builtins() []string {
	names := make([]string, 0, len(builtins))
	for name := range builtins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// RSIStrategy enters on oversold RSI, optionally above an EMA trend filter,
// and exits on overbought RSI.
type RSIStrategy struct {
	BuyRSI       *params.IntParameter
	BuyRSIPeriod *params.IntParameter
	BuyEMAFilter *params.BooleanParameter
	BuyEMAPeriod *params.IntParameter

	SellRSI *params.IntParameter

	ExitProfit *params.DecimalParameter

	ProtectionCooldown *params.IntParameter
}

// NewRSIStrategy creates the strategy with its default parameter values
func NewRSIStrategy() (*RSIStrategy, error) {
	var (
		s   RSIStrategy
		err error
	)
	if s.BuyRSI, err = params.NewIntParameter(params.Between(10, 40), 30); err != nil {
		return nil, err
	}
	if s.BuyRSIPeriod, err = params.NewIntParameter(params.Between(7, 21), 14); err != nil {
		return nil, err
	}
	if s.BuyEMAFilter, err = params.NewBooleanParameter(true); err != nil {
		return nil, err
	}
	if s.BuyEMAPeriod, err = params.NewIntParameter(params.Within([]int{20, 100}), 50, params.WithOptimize(false)); err != nil {
		return nil, err
	}
	if s.SellRSI, err = params.NewIntParameter(params.Between(60, 90), 70); err != nil {
		return nil, err
	}
	if s.ExitProfit, err = params.NewDecimalParameter(params.Between(0.01, 0.1), 0.05, 3); err != nil {
		return nil, err
	}
	if s.ProtectionCooldown, err = params.NewIntParameter(params.Between(1, 20), 5, params.WithOptimize(false)); err != nil {
		return nil, err
	}
	return &s, nil
}

// Frame holds the indicator series of one pair, keyed by period
type Frame struct {
	Close []float64
	RSI   map[int][]float64
	EMA   map[int][]float64
}

// PopulateIndicators computes the indicator series for every period the
// parameters may take in phase ph. Outside hyperopt only the current
// values are computed.
func (s *RSIStrategy) PopulateIndicators(closes []float64, ph phase.Phase) (*Frame, error) {
	rsi, err := indicators.Precompute(closes, s.BuyRSIPeriod.Range(ph), indicators.RSI)
	if err != nil {
		return nil, fmt.Errorf("failed to compute RSI: %w", err)
	}
	ema, err := indicators.Precompute(closes, s.BuyEMAPeriod.Range(ph), indicators.EMA)
	if err != nil {
		return nil, fmt.Errorf("failed to compute EMA: %w", err)
	}
	return &Frame{Close: closes, RSI: rsi, EMA: ema}, nil
}

// Signals evaluates entries and exits with the current parameter values
func (s *RSIStrategy) Signals(f *Frame) (entries, exits []bool, err error) {
	rsi, ok := f.RSI[s.BuyRSIPeriod.Get()]
	if !ok {
		return nil, nil, fmt.Errorf("RSI for period %d was not computed", s.BuyRSIPeriod.Get())
	}
	ema, ok := f.EMA[s.BuyEMAPeriod.Get()]
	if !ok {
		return nil, nil, fmt.Errorf("EMA for period %d was not computed", s.BuyEMAPeriod.Get())
	}

	entries = make([]bool, len(f.Close))
	exits = make([]bool, len(f.Close))
	for i, price := range f.Close {
		if math.IsNaN(rsi[i]) {
			continue
		}
		trendOK := !s.BuyEMAFilter.Get() || (!math.IsNaN(ema[i]) && price > ema[i])
		entries[i] = rsi[i] < float64(s.BuyRSI.Get()) && trendOK
		exits[i] = rsi[i] > float64(s.SellRSI.Get())
	}
	return entries, exits, nil
}
