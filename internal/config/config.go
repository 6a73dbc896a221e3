package config // package config loads application configuration from environment variables

import (
	"log" // log is used to report configuration errors and halt execution
	"os"  // os provides access to environment variables
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.  The types reflect how the values are used in
// the application: strings for identifiers, secrets and URLs.
type Config struct {
	Env             string // application environment (e.g. "dev", "prod")
	Port            string // HTTP port to listen on
	DBUser          string // database username
	DBPass          string // database password (optional)
	DBHost          string // database host address
	DBPort          string // database port number
	DBName          string // database name
	JWTSecret       string // secret used to verify dashboard JWTs
	UpstreamAPIURL  string // base URL of the school API
	UpstreamToken   string // service token for the school API (optional)
	SchoolTimezone  string // default IANA zone for "today" when tokens carry none
	ConsumerEnabled bool   // start the attendance event consumer
}

// Load reads configuration values from environment variables and returns a
// Config.  Required variables are enforced by must() and missing values
// cause the program to exit with a fatal log message.
func Load() Config {
	return Config{
		Env:             must("APP_ENV"),                 // environment (dev/test/prod)
		Port:            must("APP_PORT"),                // port to bind the HTTP server
		DBUser:          must("DB_USER"),                 // database user
		DBPass:          os.Getenv("DB_PASS"),            // database password (empty allowed)
		DBHost:          must("DB_HOST"),                 // database host
		DBPort:          must("DB_PORT"),                 // database port
		DBName:          must("DB_NAME"),                 // database name
		JWTSecret:       must("JWT_SECRET"),              // secret used for verifying JWTs
		UpstreamAPIURL:  must("UPSTREAM_API_URL"),        // school API base URL
		UpstreamToken:   os.Getenv("UPSTREAM_API_TOKEN"), // school API token (empty allowed)
		SchoolTimezone:  orDefault("SCHOOL_TIMEZONE", "UTC"),
		ConsumerEnabled: os.Getenv("ATTENDANCE_CONSUMER_ENABLED") != "false",
	}
}

// must retrieves the value of a required environment variable.  If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

// orDefault retrieves an optional environment variable with a fallback.
func orDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
