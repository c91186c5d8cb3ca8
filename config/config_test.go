package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyDefaults_PaymentPrices(t *testing.T) {
	cfg := &Config{}
	cfg.ApplyDefaults()

	require.Contains(t, cfg.Payment.Prices, "paypay")
	assert.Equal(t, 3680.0, cfg.Payment.Prices["paypay"].Subscription)
	assert.Equal(t, 3000.0, cfg.Payment.ScoutPrice)
	assert.Equal(t, DefaultPlanPrices(), cfg.Payment.PlanPrices)
	assert.Equal(t, 24, cfg.Payment.ApprovalTTLHours)
}

func TestApplyDefaults_KeepsConfiguredPlanPrices(t *testing.T) {
	cfg := &Config{}
	cfg.Payment.PlanPrices = map[string]float64{"BASIC": 1000}
	cfg.ApplyDefaults()

	assert.Equal(t, map[string]float64{"BASIC": 1000}, cfg.Payment.PlanPrices)
}
