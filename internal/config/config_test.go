package config

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.HTTPPort)
	assert.Equal(t, "storefront_db", cfg.PostgresDB)
	assert.Equal(t, 30*time.Second, cfg.RequestTimeout)
	assert.False(t, cfg.CacheEnabled)
	assert.Empty(t, cfg.KafkaBrokers)
	assert.Equal(t, []string{"*"}, cfg.CORSAllowedOrigins)
	assert.True(t, cfg.IsDevelopment())

	shipping, err := cfg.Shipping()
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(50).Equal(shipping))
}

func TestLoad_InvalidHTTPPort(t *testing.T) {
	t.Setenv("STOREFRONT_HTTP_PORT", "0")

	cfg, err := Load()

	assert.Nil(t, cfg)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "invalid HTTP port")
}

func TestLoad_InvalidOTELSampleRate(t *testing.T) {
	t.Setenv("OTEL_SAMPLE_RATE", "2.0")

	cfg, err := Load()

	assert.Nil(t, cfg)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "OTEL_SAMPLE_RATE must be between 0.0 and 1.0")
}

func TestLoad_UnparsableValue(t *testing.T) {
	t.Setenv("CACHE_TTL", "forever")

	cfg, err := Load()

	assert.Nil(t, cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load storefront config")
}

func TestLoad_DefaultShipping(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		want    string
		wantErr string
	}{
		{name: "decimal", value: "12.75", want: "12.75"},
		{name: "free", value: "0", want: "0"},
		{name: "negative", value: "-1", wantErr: "DEFAULT_SHIPPING must not be negative"},
		{name: "garbage", value: "fifty", wantErr: "DEFAULT_SHIPPING is not a number"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("DEFAULT_SHIPPING", tt.value)

			cfg, err := Load()

			if tt.wantErr != "" {
				assert.Nil(t, cfg)
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			shipping, err := cfg.Shipping()
			require.NoError(t, err)
			assert.True(t, decimal.RequireFromString(tt.want).Equal(shipping))
		})
	}
}

func TestLoad_RateLimit(t *testing.T) {
	t.Run("negative rps", func(t *testing.T) {
		t.Setenv("RATE_LIMIT_RPS", "-1")

		_, err := Load()

		require.Error(t, err)
		assert.Contains(t, err.Error(), "RATE_LIMIT_RPS must not be negative")
	})

	t.Run("zero burst", func(t *testing.T) {
		t.Setenv("RATE_LIMIT_BURST", "0")

		_, err := Load()

		require.Error(t, err)
		assert.Contains(t, err.Error(), "RATE_LIMIT_BURST")
	})

	t.Run("disabled ignores burst", func(t *testing.T) {
		t.Setenv("RATE_LIMIT_RPS", "0")
		t.Setenv("RATE_LIMIT_BURST", "0")

		_, err := Load()

		require.NoError(t, err)
	})
}

func TestLoad_CloudinaryURL(t *testing.T) {
	t.Setenv("CLOUDINARY_URL", "https://api.cloudinary.com")

	_, err := Load()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "cloudinary://")
}

func TestLoad_KafkaBrokers(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092,kafka-2:9092")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.KafkaBrokers)
}

func TestConfig_Postgres(t *testing.T) {
	t.Setenv("POSTGRES_HOST", "db.internal")
	t.Setenv("DB_MAX_CONN_LIFETIME_MINUTES", "10")

	cfg, err := Load()
	require.NoError(t, err)

	pg := cfg.Postgres()
	assert.Equal(t, "db.internal", pg.Host)
	assert.Equal(t, 10*time.Minute, pg.MaxConnLifetime)
	assert.Equal(t, int32(25), pg.MaxConns)
}
