package main

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/Seednode/feudbox/games/feud"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type Config struct {
	bind           string
	playerTimeout  time.Duration
	port           int
	prefix         string
	profile        bool
	rounds         string
	sessionTimeout time.Duration
	team1          string
	team2          string
	tlsCert        string
	tlsKey         string
	verbose        bool
	version        bool
}

func (c *Config) validate() error {
	if (c.tlsCert == "") != (c.tlsKey == "") {
		return errors.New("both --tls-cert and --tls-key must be provided together")
	}
	if c.port < 1 || c.port > 65535 {
		return fmt.Errorf("invalid port (must be between 1-65535 inclusive): %d", c.port)
	}
	if strings.TrimSpace(c.team1) == "" || strings.TrimSpace(c.team2) == "" {
		return errors.New("--team1 and --team2 must not be empty")
	}
	if c.playerTimeout < 0 || c.sessionTimeout < 0 {
		return errors.New("timeouts must not be negative")
	}
	return nil
}

func (c *Config) scheme() string {
	if c.tlsCert != "" && c.tlsKey != "" {
		return "https"
	}
	return "http"
}

// loadRounds returns the configured round list, falling back to the
// built-in set.
func (c *Config) loadRounds() ([]feud.Round, error) {
	if c.rounds == "" {
		return feud.DefaultRounds()
	}
	return feud.LoadRoundsFile(c.rounds)
}

// loadDotEnv loads variables from path if it exists. Variables already in
// the environment win.
func loadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return godotenv.Load(path)
}

func newCmd(cfg *Config) *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("FEUDBOX")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:           "feudbox",
		Short:         "A live, host-moderated Financial Feud scoreboard.",
		Args:          cobra.ExactArgs(0),
		SilenceErrors: true,
		Version:       releaseVersion,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.validate(); err != nil {
				return err
			}
			return ServePage(cmd.Context(), cfg)
		},
	}

	fs := cmd.Flags()

	fs.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	fs.StringVarP(&cfg.bind, "bind", "b", "0.0.0.0", "address to bind to (env: FEUDBOX_BIND)")
	fs.DurationVar(&cfg.playerTimeout, "player-timeout", 10*time.Minute, "time before a disconnected team device loses its team (env: FEUDBOX_PLAYER_TIMEOUT)")
	fs.IntVarP(&cfg.port, "port", "p", 8080, "port to listen on (env: FEUDBOX_PORT)")
	fs.StringVar(&cfg.prefix, "prefix", "", "path to prepend to all URLs, for use behind reverse proxy (env: FEUDBOX_PREFIX)")
	fs.BoolVar(&cfg.profile, "profile", false, "register net/http/pprof handlers (env: FEUDBOX_PROFILE)")
	fs.StringVarP(&cfg.rounds, "rounds", "r", "", "path to a YAML round list (default: built-in Financial Feud rounds) (env: FEUDBOX_ROUNDS)")
	fs.DurationVar(&cfg.sessionTimeout, "session-timeout", 3*time.Hour, "time before idle games are ended (env: FEUDBOX_SESSION_TIMEOUT)")
	fs.StringVar(&cfg.team1, "team1", "Team 1", "default name for the first team (env: FEUDBOX_TEAM1)")
	fs.StringVar(&cfg.team2, "team2", "Team 2", "default name for the second team (env: FEUDBOX_TEAM2)")
	fs.StringVar(&cfg.tlsCert, "tls-cert", "", "path to tls certificate (env: FEUDBOX_TLS_CERT)")
	fs.StringVar(&cfg.tlsKey, "tls-key", "", "path to tls keyfile (env: FEUDBOX_TLS_KEY)")
	fs.BoolVarP(&cfg.verbose, "verbose", "v", false, "display additional output (env: FEUDBOX_VERBOSE)")
	fs.BoolVarP(&cfg.version, "version", "V", false, "display version and exit (env: FEUDBOX_VERSION)")

	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		_ = v.BindEnv(f.Name)
		if !f.Changed && v.IsSet(f.Name) {
			_ = fs.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name)))
		}
	})

	cmd.AddCommand(newValidateCmd())

	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.SetHelpCommand(&cobra.Command{Hidden: true})
	cmd.SetVersionTemplate("feudbox v{{.Version}}\n")

	cmd.SilenceErrors = true
	cmd.SilenceUsage = true

	return cmd
}

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate [rounds.yaml]",
		Short: "Check a round list and print a summary.",
		Args:  cobra.RangeArgs(0, 1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := &Config{}
			if len(args) == 1 {
				cfg.rounds = args[0]
			}

			rounds, err := cfg.loadRounds()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, r := range rounds {
				line := fmt.Sprintf("%3d  %-9s  %s", r.ID, r.Type, r.Title)
				if r.Ranked {
					line += " (ranked)"
				}
				if r.Policy != nil {
					line += " (custom scoring)"
				}
				fmt.Fprintln(out, line)
			}
			fmt.Fprintf(out, "%d rounds ok\n", len(rounds))

			return nil
		},
	}
}
