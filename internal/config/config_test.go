package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func TestSetDefaults(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	SetDefaults()

	assert.Equal(t, "usd", viper.GetString("payment.currency"))
	assert.Equal(t, 15*time.Second, viper.GetDuration("payment.timeout"))
	assert.Equal(t, 10*time.Second, viper.GetDuration("checkout.persist_timeout"))
	assert.Equal(t, "checkout.reconciliation", viper.GetString("rabbitmq.reconciliation_queue"))
	assert.Equal(t, 5432, viper.GetInt("postgres.port"))
	assert.Equal(t, 7200, viper.GetInt("server.grpc.keepalive.time"))
	assert.Empty(t, viper.GetString("server.http.admin_token"))
}

func TestEnvOverride(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	t.Setenv("STOREFRONT_PAYMENT_CURRENCY", "eur")

	SetDefaults()
	viper.SetEnvPrefix("storefront")
	viper.SetEnvKeyReplacer(newKeyReplacer())
	viper.AutomaticEnv()

	assert.Equal(t, "eur", viper.GetString("payment.currency"))
}
