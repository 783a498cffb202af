package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/wolfman30/clinicdesk"
	"github.com/wolfman30/clinicdesk/cmd/mainconfig"
	"github.com/wolfman30/clinicdesk/internal/app/bootstrap"
	appconfig "github.com/wolfman30/clinicdesk/internal/config"
	"github.com/wolfman30/clinicdesk/internal/observability/metrics"
	"github.com/wolfman30/clinicdesk/pkg/logging"
)

func main() {
	app := &cli{out: os.Stdout, errOut: os.Stderr}
	if err := app.rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// cli carries the state shared by every subcommand. The client is built
// lazily so commands that never reach the backend stay offline.
type cli struct {
	out    io.Writer
	errOut io.Writer

	cfg    *appconfig.Config
	logger *logging.Logger
	reg    *prometheus.Registry
	client *clinicdesk.Client
	opts   []clinicdesk.Option

	stats bool
}

func (c *cli) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "clinicctl",
		Short:         "Command-line client for the clinic backend",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			c.cfg = appconfig.Load()
			level, _ := cmd.Flags().GetString("log-level")
			if level == "" {
				level = c.cfg.LogLevel
			}
			// stdout is reserved for command output.
			c.logger = logging.NewWithWriter(level, c.errOut)
			return nil
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			if c.client == nil {
				return nil
			}
			if c.stats {
				c.printStats()
			}
			return c.client.Close()
		},
	}
	root.PersistentFlags().String("log-level", "", "override LOG_LEVEL (debug, info, warn, error)")
	root.PersistentFlags().BoolVar(&c.stats, "stats", false, "print request latency and cache counters to stderr")

	root.AddCommand(c.tokenCmd())
	root.AddCommand(c.cacheCmd())
	root.AddCommand(c.clientsCmd())
	root.AddCommand(c.appointmentsCmd())
	root.AddCommand(c.reportsCmd())
	return root
}

// connect builds the API client on first use.
func (c *cli) connect(ctx context.Context) (*clinicdesk.Client, error) {
	if c.client != nil {
		return c.client, nil
	}
	c.reg = prometheus.NewRegistry()
	opts := []clinicdesk.Option{clinicdesk.WithRegisterer(c.reg)}
	if c.cfg.ExportBucket != "" {
		awsCfg, err := mainconfig.LoadAWSConfig(ctx, c.cfg)
		if err != nil {
			return nil, fmt.Errorf("load AWS config: %w", err)
		}
		opts = append(opts, clinicdesk.WithExportUploader(bootstrap.BuildExportUploader(awsCfg, c.cfg, c.logger)))
	}
	opts = append(opts, c.opts...)

	client, err := clinicdesk.New(ctx, c.cfg, c.logger, opts...)
	if err != nil {
		return nil, err
	}
	c.client = client
	return client, nil
}

func (c *cli) printJSON(v any) error {
	enc := json.NewEncoder(c.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (c *cli) printStats() {
	snap := metrics.SnapshotLatency(c.reg)
	fmt.Fprintf(c.errOut, "requests=%d p90=%.1fms p95=%.1fms\n", snap.Total, snap.P90Ms, snap.P95Ms)
	for ns, counts := range metrics.CacheCounts(c.reg) {
		fmt.Fprintf(c.errOut, "cache %s hits=%.0f misses=%.0f\n", ns, counts.Hits, counts.Misses)
	}
}

func parseDay(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, want YYYY-MM-DD", s)
	}
	return t, nil
}
