package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTopUpRecord_MarshalAmountFixedFraction(t *testing.T) {
	tests := []struct {
		name   string
		amount string
		want   string
	}{
		{name: "whole amount keeps fraction", amount: "100", want: "100.00"},
		{name: "single fractional digit padded", amount: "93.5", want: "93.50"},
		{name: "two fractional digits unchanged", amount: "49.99", want: "49.99"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := TopUpRecord{
				ID:        "a1",
				Kind:      KindTopUp,
				Amount:    decimal.RequireFromString(tt.amount),
				Currency:  "RUB",
				Status:    TopUpStatusPending,
				CreatedAt: time.Now().UTC(),
			}

			data, err := json.Marshal(&rec)
			require.NoError(t, err)

			var raw map[string]any
			require.NoError(t, json.Unmarshal(data, &raw))
			assert.Equal(t, tt.want, raw["amount"])

			var back TopUpRecord
			require.NoError(t, json.Unmarshal(data, &back))
			assert.True(t, back.Amount.Equal(rec.Amount))
		})
	}
}
