package config

import (
	"testing"
	"time"
)

var configEnvVars = []string{
	"PORT", "ENV", "STORE",
	"DB_HOST", "DB_PORT", "DB_NAME", "DB_USER", "DB_PASSWORD", "DB_POOL_MIN", "DB_POOL_MAX",
	"CORS_ORIGINS", "REDIS_ADDR", "CACHE_TTL",
	"GEOCODER_URL", "ADDRESS_DEBOUNCE", "MSHOTS_HOST", "SCREENSHOT_WIDTH",
	"AI_API_KEY", "AI_MODEL", "INTAKE_SESSION_TTL",
}

// clearConfigEnv blanks every config variable for the duration of the test.
// viper treats empty environment values as unset, so defaults apply.
func clearConfigEnv(t *testing.T) {
	t.Helper()
	for _, key := range configEnvVars {
		t.Setenv(key, "")
	}
}

func TestLoad_WithDefaults(t *testing.T) {
	clearConfigEnv(t)

	// Set only required env var (password has no default)
	t.Setenv("DB_PASSWORD", "testpass")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Server.Port != "8080" {
		t.Errorf("Expected port 8080, got %s", cfg.Server.Port)
	}
	if cfg.Server.Store != StorePostgres {
		t.Errorf("Expected store postgres, got %s", cfg.Server.Store)
	}
	if cfg.Database.Name != "acquire" {
		t.Errorf("Expected db name acquire, got %s", cfg.Database.Name)
	}
	if cfg.Geocoder.Debounce != time.Second {
		t.Errorf("Expected 1s debounce, got %s", cfg.Geocoder.Debounce)
	}
	if cfg.Metadata.MshotsHost != "s0.wp.com" {
		t.Errorf("Expected mshots host s0.wp.com, got %s", cfg.Metadata.MshotsHost)
	}
	if cfg.Cache.Addr != "" {
		t.Errorf("Expected cache disabled by default, got %s", cfg.Cache.Addr)
	}
	if cfg.Extraction.APIKey != "" {
		t.Error("Expected extraction disabled by default")
	}
	if cfg.Intake.SessionTTL != 2*time.Hour {
		t.Errorf("Expected 2h session TTL, got %s", cfg.Intake.SessionTTL)
	}
	if len(cfg.CORS.Origins) != 2 {
		t.Errorf("Expected 2 CORS origins, got %d", len(cfg.CORS.Origins))
	}
}

func TestLoad_WithEnvironmentVariables(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("PORT", "9090")
	t.Setenv("ENV", "production")
	t.Setenv("DB_HOST", "db")
	t.Setenv("DB_PASSWORD", "secret")
	t.Setenv("DB_POOL_MIN", "5")
	t.Setenv("DB_POOL_MAX", "20")
	t.Setenv("REDIS_ADDR", "redis:6379")
	t.Setenv("CACHE_TTL", "1h")
	t.Setenv("ADDRESS_DEBOUNCE", "750ms")
	t.Setenv("AI_API_KEY", "key")
	t.Setenv("AI_MODEL", "gpt-4o-mini")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Server.Port != "9090" {
		t.Errorf("Expected port 9090, got %s", cfg.Server.Port)
	}
	if cfg.Database.Host != "db" {
		t.Errorf("Expected host db, got %s", cfg.Database.Host)
	}
	if cfg.Database.PoolMax != 20 {
		t.Errorf("Expected pool max 20, got %d", cfg.Database.PoolMax)
	}
	if cfg.Cache.Addr != "redis:6379" || cfg.Cache.TTL != time.Hour {
		t.Errorf("Unexpected cache config %+v", cfg.Cache)
	}
	if cfg.Geocoder.Debounce != 750*time.Millisecond {
		t.Errorf("Expected 750ms debounce, got %s", cfg.Geocoder.Debounce)
	}
	if cfg.Extraction.Model != "gpt-4o-mini" {
		t.Errorf("Expected model gpt-4o-mini, got %s", cfg.Extraction.Model)
	}
}

func TestLoad_MissingPassword(t *testing.T) {
	clearConfigEnv(t)

	_, err := Load()
	if err == nil {
		t.Error("Expected error when DB_PASSWORD is missing")
	}
}

func TestLoad_MemoryStoreNeedsNoDatabase(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("STORE", "memory")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.Server.Store != StoreMemory {
		t.Errorf("Expected memory store, got %s", cfg.Server.Store)
	}
}

func validConfig() *Config {
	return &Config{
		Server: ServerConfig{Port: "8080", Env: "development", Store: StorePostgres},
		Database: DatabaseConfig{
			Host: "localhost", Port: "5432", Name: "acquire",
			User: "postgres", Password: "postgres", PoolMin: 2, PoolMax: 10,
		},
		CORS:     CORSConfig{Origins: []string{"http://localhost:3000"}},
		Geocoder: GeocoderConfig{URL: "http://geo", Debounce: time.Second},
		Metadata: MetadataConfig{MshotsHost: "s0.wp.com", ScreenshotWidth: 1200},
		Intake:   IntakeConfig{SessionTTL: time.Hour},
	}
}

func TestValidate_InvalidPoolSizes(t *testing.T) {
	tests := []struct {
		name    string
		poolMin int
		poolMax int
		wantErr bool
	}{
		{name: "negative pool min", poolMin: -1, poolMax: 10, wantErr: true},
		{name: "zero pool max", poolMin: 0, poolMax: 0, wantErr: true},
		{name: "pool min greater than max", poolMin: 15, poolMax: 10, wantErr: true},
		{name: "valid pool sizes", poolMin: 2, poolMax: 10, wantErr: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			cfg.Database.PoolMin = tt.poolMin
			cfg.Database.PoolMax = tt.poolMax

			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidate_MissingRequiredFields(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing port", func(c *Config) { c.Server.Port = "" }},
		{"unknown store", func(c *Config) { c.Server.Store = "sqlite" }},
		{"missing db host", func(c *Config) { c.Database.Host = "" }},
		{"missing db password", func(c *Config) { c.Database.Password = "" }},
		{"missing CORS origins", func(c *Config) { c.CORS.Origins = []string{} }},
		{"missing geocoder url", func(c *Config) { c.Geocoder.URL = "" }},
		{"zero debounce", func(c *Config) { c.Geocoder.Debounce = 0 }},
		{"missing mshots host", func(c *Config) { c.Metadata.MshotsHost = "" }},
		{"api key without model", func(c *Config) { c.Extraction.APIKey = "k"; c.Extraction.Model = "" }},
		{"zero session ttl", func(c *Config) { c.Intake.SessionTTL = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("Expected validation error but got none")
			}
		})
	}
}

func TestValidate_MemoryStoreSkipsDatabase(t *testing.T) {
	cfg := validConfig()
	cfg.Server.Store = StoreMemory
	cfg.Database = DatabaseConfig{}

	if err := cfg.Validate(); err != nil {
		t.Errorf("Expected no error, got %v", err)
	}
}

func TestDSN(t *testing.T) {
	d := DatabaseConfig{Host: "h", Port: "1", Name: "n", User: "u", Password: "p"}
	if got := d.DSN(); got != "postgres://u:p@h:1/n?sslmode=disable" {
		t.Errorf("Unexpected DSN %s", got)
	}
}

func TestParseOrigins(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		expect []string
	}{
		{name: "single origin", input: "http://localhost:3000", expect: []string{"http://localhost:3000"}},
		{name: "origins with spaces", input: " http://a , http://b ", expect: []string{"http://a", "http://b"}},
		{name: "empty string", input: "", expect: []string{}},
		{name: "only commas", input: ",,,", expect: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := parseOrigins(tt.input)
			if len(result) != len(tt.expect) {
				t.Errorf("Expected %d origins, got %d", len(tt.expect), len(result))
				return
			}
			for i, origin := range result {
				if origin != tt.expect[i] {
					t.Errorf("Expected origin %s at index %d, got %s", tt.expect[i], i, origin)
				}
			}
		})
	}
}
