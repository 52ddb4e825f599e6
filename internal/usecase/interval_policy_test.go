package usecase

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/Sema-5678/topup-service/internal/config"
)

func TestPollingIntervals_NextInterval(t *testing.T) {
	p := DefaultPollingIntervals()

	tests := []struct {
		name     string
		age      time.Duration
		interval time.Duration
		ok       bool
	}{
		{"fresh record", 0, 5 * time.Second, true},
		{"within first hour", 59 * time.Minute, 5 * time.Second, true},
		{"exactly one hour", time.Hour, 5 * time.Second, true},
		{"just past one hour", time.Hour + time.Second, 30 * time.Second, true},
		{"within first day", 23 * time.Hour, 30 * time.Second, true},
		{"exactly one day", 24 * time.Hour, 30 * time.Second, true},
		{"second day", 36 * time.Hour, 600 * time.Second, true},
		{"exactly two days", 48 * time.Hour, 600 * time.Second, true},
		{"past the cutoff", 48*time.Hour + time.Second, 0, false},
		{"way past the cutoff", 30 * 24 * time.Hour, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			interval, ok := p.NextInterval(tt.age)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.interval, interval)
		})
	}
}

func TestPollingIntervals_MonotonicallyNonDecreasing(t *testing.T) {
	p := DefaultPollingIntervals()

	var prev time.Duration
	for age := time.Duration(0); age <= p.ExpireAfter; age += time.Minute {
		interval, ok := p.NextInterval(age)
		assert.True(t, ok, "age %s should not be expired", age)
		assert.GreaterOrEqual(t, interval, prev, "interval shrank at age %s", age)
		prev = interval
	}
}

func TestPollingIntervalsFromConfig(t *testing.T) {
	t.Run("zero config falls back to defaults", func(t *testing.T) {
		p := PollingIntervalsFromConfig(&config.ReconcilerConfig{})
		assert.Equal(t, DefaultPollingIntervals(), p)
	})

	t.Run("config values override defaults", func(t *testing.T) {
		p := PollingIntervalsFromConfig(&config.ReconcilerConfig{
			FastInterval: 2 * time.Second,
			ExpireAfter:  72 * time.Hour,
		})
		assert.Equal(t, 2*time.Second, p.Fast)
		assert.Equal(t, 72*time.Hour, p.ExpireAfter)
		assert.Equal(t, 30*time.Second, p.Medium)
	})
}
