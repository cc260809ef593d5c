// Package invest simulates the outcome of placing money into one of the
// bank's halal instruments. Results are illustrative and random.
package invest

import (
	"errors"
	"fmt"
	"math/rand/v2"

	"zaman/internal/core"
)

// WakalaRate is the agency fee charged on every placement.
const WakalaRate = 0.001

type Instrument string

const (
	Sukuk         Instrument = "sukuk"
	HalalEquities Instrument = "halal_equities"
	Gold          Instrument = "gold"
	Crypto        Instrument = "crypto"
)

var (
	ErrUnknownInstrument = errors.New("unknown instrument")
	ErrInvalidAmount     = errors.New("amount must be positive")
)

// RandSource yields uniform values in [0, 1).
type RandSource interface {
	Float64() float64
}

// ReturnRange is the uniform draw interval of an instrument's annual return,
// as fractions.
type ReturnRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// InstrumentInfo describes an instrument for listing endpoints.
type InstrumentInfo struct {
	ID    Instrument  `json:"id"`
	Title string      `json:"title"`
	Range ReturnRange `json:"range"`
}

type InvestResult struct {
	Instrument    Instrument `json:"instrument"`
	Amount        int64      `json:"amount"`
	WakalaFee     int64      `json:"wakalaFee"`
	Projected     int64      `json:"projected"`
	Return        int64      `json:"return"`
	ReturnPercent float64    `json:"returnPercent"`
}

var instruments = []InstrumentInfo{
	{ID: Sukuk, Title: "Сукук", Range: ReturnRange{Min: 0.07, Max: 0.09}},
	{ID: HalalEquities, Title: "Халяльные акции", Range: ReturnRange{Min: 0.10, Max: 0.14}},
	{ID: Gold, Title: "Золото", Range: ReturnRange{Min: 0.035, Max: 0.065}},
	{ID: Crypto, Title: "Криптовалюта", Range: ReturnRange{Min: -0.20, Max: 0.20}},
}

// Instruments lists the supported instruments in display order.
func Instruments() []InstrumentInfo {
	out := make([]InstrumentInfo, len(instruments))
	copy(out, instruments)
	return out
}

func lookup(id Instrument) (InstrumentInfo, bool) {
	for _, in := range instruments {
		if in.ID == id {
			return in, true
		}
	}
	return InstrumentInfo{}, false
}

type globalSource struct{}

func (globalSource) Float64() float64 { return rand.Float64() }

// Simulator draws returns from its RandSource.
type Simulator struct {
	rnd RandSource
}

// NewSimulator returns a Simulator using src, or the process-wide random
// generator when src is nil.
func NewSimulator(src RandSource) *Simulator {
	if src == nil {
		src = globalSource{}
	}
	return &Simulator{rnd: src}
}

// Simulate projects amount placed into instrument after the wakala fee.
func (s *Simulator) Simulate(amount int64, instrument Instrument) (InvestResult, error) {
	if amount <= 0 {
		return InvestResult{}, ErrInvalidAmount
	}
	info, ok := lookup(instrument)
	if !ok {
		return InvestResult{}, fmt.Errorf("%w: %q", ErrUnknownInstrument, instrument)
	}

	fee := core.RoundHalfUp(float64(amount) * WakalaRate)
	pct := info.Range.Min + s.rnd.Float64()*(info.Range.Max-info.Range.Min)
	net := amount - fee
	ret := core.RoundHalfUp(float64(net) * pct)

	return InvestResult{
		Instrument:    instrument,
		Amount:        amount,
		WakalaFee:     fee,
		Projected:     net + ret,
		Return:        ret,
		ReturnPercent: core.Round2(pct * 100),
	}, nil
}
