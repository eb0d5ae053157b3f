package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config holds process-level settings. Game rules are not configurable;
// the server is authoritative over them.
type Config struct {
	bind        string
	port        int
	publicURL   string
	redisURL    string
	postgresDSN string
	verbose     bool
}

func (c *Config) validate() error {
	if c.port < 1 || c.port > 65535 {
		return fmt.Errorf("invalid port (must be between 1-65535 inclusive): %d", c.port)
	}
	return nil
}

func newCmd(cfg *Config) *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("UNO")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:           "uno-online",
		Short:         "Server-authoritative UNO-style card game over WebSockets.",
		Args:          cobra.ExactArgs(0),
		Version:       releaseVersion,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.validate(); err != nil {
				return err
			}
			return serve(cmd.Context(), cfg)
		},
	}

	fs := cmd.Flags()

	fs.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	fs.StringVarP(&cfg.bind, "bind", "b", "0.0.0.0", "address to bind to (env: UNO_BIND)")
	fs.IntVarP(&cfg.port, "port", "p", 3000, "port to listen on (env: UNO_PORT)")
	fs.StringVar(&cfg.publicURL, "public-url", "", "externally reachable base URL, used for QR join links (env: UNO_PUBLIC_URL)")
	fs.StringVar(&cfg.redisURL, "redis-url", "", "redis URL for the action historian; empty disables it (env: UNO_REDIS_URL)")
	fs.StringVar(&cfg.postgresDSN, "postgres-dsn", "", "postgres DSN for match results; empty disables it (env: UNO_POSTGRES_DSN)")
	fs.BoolVarP(&cfg.verbose, "verbose", "v", false, "display additional output (env: UNO_VERBOSE)")

	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		_ = v.BindEnv(f.Name)
		if !f.Changed && v.IsSet(f.Name) {
			_ = fs.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name)))
		}
	})

	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.SetHelpCommand(&cobra.Command{Hidden: true})
	cmd.SetVersionTemplate("uno-online v{{.Version}}\n")

	return cmd
}
