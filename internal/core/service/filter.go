package service

import (
	"log"
	"math/rand"
)

// TradeFilter gates BUY decisions so the agent does not trade on every
// signal. Two independent arms, both checked every time: a deterministic
// deep-dip arm (price below the threshold always executes) and a stochastic
// exploration arm (a uniform draw below the sample rate executes anyway, so
// strategies can be compared at non-depressed prices). HOLD decisions never
// reach this gate.
type TradeFilter struct {
	threshold  float64
	sampleRate float64
	randFn     func() float64
}

// NewTradeFilter creates a filter with the given threshold and sample rate.
// randFn draws a uniform number in [0, 1); pass nil for the default source.
// There is no seeding contract, the draw is independent per cycle.
func NewTradeFilter(threshold, sampleRate float64, randFn func() float64) *TradeFilter {
	if randFn == nil {
		randFn = rand.Float64
	}
	return &TradeFilter{
		threshold:  threshold,
		sampleRate: sampleRate,
		randFn:     randFn,
	}
}

// ShouldExecute reports whether a BUY at the given price should actually be
// executed.
func (f *TradeFilter) ShouldExecute(price float64) bool {
	if price < f.threshold {
		log.Printf("[filter] price %.4f below threshold %.4f, executing", price, f.threshold)
		return true
	}

	if draw := f.randFn(); draw < f.sampleRate {
		log.Printf("[filter] sampled for execution (draw %.2f < rate %.2f)", draw, f.sampleRate)
		return true
	}

	log.Printf("[filter] BUY at %.4f filtered out", price)
	return false
}
