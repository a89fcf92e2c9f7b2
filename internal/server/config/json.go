package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/clinicauth/internal/flagx"
	"github.com/dmitrijs2005/clinicauth/internal/timex"
)

// JsonConfig is the on-disk shape of the server configuration. Durations
// accept both "15m" strings and integer nanoseconds via timex.Duration.
type JsonConfig struct {
	EndpointAddrGRPC             string         `json:"endpoint_addr_grpc"`
	DatabaseDSN                  string         `json:"database_dsn"`
	SecretKey                    string         `json:"secret_key"`
	AccessTokenValidityDuration  timex.Duration `json:"access_token_validity_duration"`
	RefreshTokenValidityDuration timex.Duration `json:"refresh_token_validity_duration"`
	LoginAttemptsPerMinute       int            `json:"login_attempts_per_minute"`
	LoginBurst                   int            `json:"login_burst"`
	LogLevel                     string         `json:"log_level"`
}

// parseJson overlays values from the file named by -c or -config. Keys
// missing from the file keep their current value. An unreadable or
// malformed file panics.
func parseJson(config *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()

	// nothing to load
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	err = json.Unmarshal(file, c)
	if err != nil {
		panic(err)
	}

	setString(&config.EndpointAddrGRPC, c.EndpointAddrGRPC)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.SecretKey, c.SecretKey)
	setString(&config.LogLevel, c.LogLevel)

	if c.AccessTokenValidityDuration.Duration != 0 {
		config.AccessTokenValidityDuration = c.AccessTokenValidityDuration.Duration
	}
	if c.RefreshTokenValidityDuration.Duration != 0 {
		config.RefreshTokenValidityDuration = c.RefreshTokenValidityDuration.Duration
	}
	if c.LoginAttemptsPerMinute != 0 {
		config.LoginAttemptsPerMinute = c.LoginAttemptsPerMinute
	}
	if c.LoginBurst != 0 {
		config.LoginBurst = c.LoginBurst
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
