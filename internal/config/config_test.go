package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoad_EnvironmentOverridesDefaults(t *testing.T) {
	t.Setenv("APP_PORT", "9090")
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("DB_PATH", "/tmp/ledger.db")
	t.Setenv("STORE_CURRENCY", "BDT")

	cfg := Load()

	assert.Equal(t, "9090", cfg.App.Port)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "/tmp/ledger.db", cfg.Database.DSN())
	assert.Equal(t, "BDT", cfg.Store.Currency)
	assert.Equal(t, 32, cfg.Printer.Width)
}

func TestDatabaseConfig_PostgresDSN(t *testing.T) {
	c := DatabaseConfig{
		Driver: "postgres", Host: "db", Port: "5432", Name: "feed",
		User: "u", Password: "p", SSLMode: "disable", Timezone: "UTC",
	}
	assert.Equal(t, "host=db user=u password=p dbname=feed port=5432 sslmode=disable TimeZone=UTC", c.DSN())
}
