package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("PORT", "9090")
	t.Setenv("DB_HOST", "db")
	t.Setenv("DB_NAME", "deals_test")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example,")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "s3cret", cfg.JWTSecret)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
	assert.Equal(t, "db", cfg.Database.Host)
	assert.Equal(t, "deals_test", cfg.Database.Name)
	assert.Equal(t, 72*time.Hour, cfg.JWTTTL)
	assert.Equal(t, 10*time.Second, cfg.VoteTimeout)
	assert.Equal(t, 72*time.Hour, cfg.NewWindow)
}

func TestLoad_MissingSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_Durations(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("VOTE_TIMEOUT", "3s")
	t.Setenv("NEW_WINDOW", "24h")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 3*time.Second, cfg.VoteTimeout)
	assert.Equal(t, 24*time.Hour, cfg.NewWindow)

	t.Setenv("VOTE_TIMEOUT", "soon")
	_, err = Load()
	assert.ErrorContains(t, err, "VOTE_TIMEOUT")
}

func TestDSN(t *testing.T) {
	d := Database{Host: "h", Port: "5433", User: "u", Password: "p", Name: "n", SSLMode: "disable"}
	assert.Equal(t, "host=h port=5433 user=u password=p dbname=n sslmode=disable TimeZone=UTC", d.DSN())
}
