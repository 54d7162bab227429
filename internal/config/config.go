// Package config builds the server's Config from flags, environment
// variables, and an optional .env file, in that precedence order.
package config

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config holds every externally-tunable setting of the server. The room
// actor's own numeric knobs (MAX_ROOMS, TIMEOUT_SECS, ...) are compile-time
// constants in package room and are not configurable here.
type Config struct {
	BindHost          string
	BindPort          int
	MaxBodyBytes      int64
	CORSOrigin        string
	SessionCookieName string
	ExternalWSURL     string
	DataDir           string
	AppName           string
	JWTSecret         string
	Development       bool
}

func (c *Config) validate() error {
	if c.BindPort < 1 || c.BindPort > 65535 {
		return fmt.Errorf("invalid port (must be between 1-65535 inclusive): %d", c.BindPort)
	}
	if len(c.JWTSecret) == 0 {
		return fmt.Errorf("session secret must not be empty")
	}
	return nil
}

// Addr returns the host:port pair gin should listen on.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.BindHost, c.BindPort)
}

// NewCommand builds the root cobra command for the server binary. Flags,
// then HEARTS_-prefixed environment variables (an .env file loaded first if
// present), then defaults, is the precedence order; run is invoked with the
// fully resolved Config.
func NewCommand(run func(*Config) error) *cobra.Command {
	_ = godotenv.Load() // best effort; absence of a .env file is not an error

	cfg := &Config{}
	v := viper.New()
	v.SetEnvPrefix("HEARTS")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:           "hearts-server",
		Short:         "Realtime core for the Hearts card-game service.",
		Args:          cobra.ExactArgs(0),
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.validate(); err != nil {
				return err
			}
			return run(cfg)
		},
	}

	fs := cmd.Flags()
	fs.StringVar(&cfg.BindHost, "bind-host", "0.0.0.0", "address to bind to (env: HEARTS_BIND_HOST)")
	fs.IntVar(&cfg.BindPort, "bind-port", 8080, "port to listen on (env: HEARTS_BIND_PORT)")
	fs.Int64Var(&cfg.MaxBodyBytes, "max-body-bytes", 1<<20, "maximum accepted HTTP request body size (env: HEARTS_MAX_BODY_BYTES)")
	fs.StringVar(&cfg.CORSOrigin, "cors-origin", "*", "allowed CORS origin (env: HEARTS_CORS_ORIGIN)")
	fs.StringVar(&cfg.SessionCookieName, "session-cookie-name", "hearts_session", "session cookie name (env: HEARTS_SESSION_COOKIE_NAME)")
	fs.StringVar(&cfg.ExternalWSURL, "external-ws-url", "", "web-socket URL advertised to the UI (env: HEARTS_EXTERNAL_WS_URL)")
	fs.StringVar(&cfg.DataDir, "data-dir", "./data", "directory for any on-disk state (env: HEARTS_DATA_DIR)")
	fs.StringVar(&cfg.AppName, "app-name", "hearts", "application name reported in logs and metrics (env: HEARTS_APP_NAME)")
	fs.StringVar(&cfg.JWTSecret, "session-secret", "", "HMAC secret used to sign session tokens (env: HEARTS_SESSION_SECRET)")
	fs.BoolVar(&cfg.Development, "development", false, "enable development-mode logging (env: HEARTS_DEVELOPMENT)")

	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		_ = v.BindEnv(f.Name)
		if !f.Changed && v.IsSet(f.Name) {
			_ = fs.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name)))
		}
	})

	return cmd
}
