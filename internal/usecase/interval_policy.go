package usecase

import (
	"time"

	"github.com/Sema-5678/topup-service/internal/config"
)

// PollingIntervals is the tiered schedule mapping a record's age to its
// next poll interval. Intervals only grow with age: most payments complete
// within minutes, so old records are polled rarely to bound gateway call
// volume for the long tail.
type PollingIntervals struct {
	Fast   time.Duration
	Medium time.Duration
	Slow   time.Duration

	FastUntil   time.Duration
	MediumUntil time.Duration
	ExpireAfter time.Duration
}

// DefaultPollingIntervals returns the stock schedule: 5s up to 1h, 30s up
// to 24h, 10m up to 48h, expiry afterwards.
func DefaultPollingIntervals() PollingIntervals {
	return PollingIntervals{
		Fast:        5 * time.Second,
		Medium:      30 * time.Second,
		Slow:        600 * time.Second,
		FastUntil:   time.Hour,
		MediumUntil: 24 * time.Hour,
		ExpireAfter: 48 * time.Hour,
	}
}

// PollingIntervalsFromConfig builds a schedule from config, falling back
// to defaults for unset values.
func PollingIntervalsFromConfig(cfg *config.ReconcilerConfig) PollingIntervals {
	p := DefaultPollingIntervals()
	if cfg.FastInterval > 0 {
		p.Fast = cfg.FastInterval
	}
	if cfg.MediumInterval > 0 {
		p.Medium = cfg.MediumInterval
	}
	if cfg.SlowInterval > 0 {
		p.Slow = cfg.SlowInterval
	}
	if cfg.FastUntil > 0 {
		p.FastUntil = cfg.FastUntil
	}
	if cfg.MediumUntil > 0 {
		p.MediumUntil = cfg.MediumUntil
	}
	if cfg.ExpireAfter > 0 {
		p.ExpireAfter = cfg.ExpireAfter
	}
	return p
}

// NextInterval returns the poll interval for a record of the given age.
// ok is false once the record is past the expiry cutoff; the record must
// then be expired instead of checked.
func (p PollingIntervals) NextInterval(age time.Duration) (interval time.Duration, ok bool) {
	if age > p.ExpireAfter {
		return 0, false
	}
	switch {
	case age <= p.FastUntil:
		return p.Fast, true
	case age <= p.MediumUntil:
		return p.Medium, true
	default:
		return p.Slow, true
	}
}
