package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/mwinokan/Fragmenstein/internal/application/laboratory"
	"github.com/mwinokan/Fragmenstein/internal/config"
	"github.com/mwinokan/Fragmenstein/internal/infrastructure/chemio"
	"github.com/mwinokan/Fragmenstein/internal/infrastructure/monitoring/logging"
	"github.com/mwinokan/Fragmenstein/pkg/errors"
)

type batchOptions struct {
	hits        string
	candidates  string
	concurrency int
	metricsAddr string
	minimize    bool
	out         string
}

func newBatchCmd() *cobra.Command {
	opts := &batchOptions{}
	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Place every compound of an SD file onto the hits",
		Long: "Place every candidate of an SD file concurrently.  A candidate selects its\n" +
			"hits with the SD property hit_names (space or comma separated, empty for all)\n" +
			"and may give an attachment point as x,y,z in the property attachment.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBatch(cmd, opts)
		},
	}
	f := cmd.Flags()
	f.StringVar(&opts.hits, "hits", "", "SD file of fragment hits (required)")
	f.StringVar(&opts.candidates, "candidates", "", "SD file of follow-up compounds (required)")
	f.IntVar(&opts.concurrency, "concurrency", 0, "placements run in parallel (default from config)")
	f.StringVar(&opts.metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address, e.g. :9100")
	f.BoolVar(&opts.minimize, "minimize", false, "relax every placed compound under restraints")
	f.StringVar(&opts.out, "out", "", "SD file to write the placed compounds to")
	_ = cmd.MarkFlagRequired("hits")
	_ = cmd.MarkFlagRequired("candidates")
	return cmd
}

func runBatch(cmd *cobra.Command, opts *batchOptions) error {
	cc, err := GetCLIContext(cmd)
	if err != nil {
		return err
	}
	log := cc.Logger
	if opts.concurrency < 0 {
		return errors.InvalidParam("--concurrency must be positive")
	}
	if opts.concurrency > 0 {
		cc.Config.Lab.Concurrency = opts.concurrency
	}
	if opts.minimize {
		cc.Config.Lab.MinimizeOutput = true
	}
	metricsAddr := opts.metricsAddr
	if metricsAddr == "" && cc.Config.Metrics.Enabled {
		metricsAddr = cc.Config.Metrics.ListenAddr
	}

	hits, err := readHits(opts.hits)
	if err != nil {
		return err
	}
	recs, err := chemio.ReadFile(opts.candidates)
	if err != nil {
		return err
	}
	tasks := make([]laboratory.Task, len(recs))
	for i, r := range recs {
		if tasks[i], err = taskFromRecord(r, i); err != nil {
			return err
		}
	}

	rt, err := newServices(cc, metricsAddr != "")
	if err != nil {
		return err
	}
	defer rt.close()

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	rt.serveMetrics(ctx, metricsAddr, log)
	watchLogLevel(cc)

	outcomes, err := rt.lab.Place(ctx, hits, tasks)
	if err != nil {
		return err
	}
	if opts.out != "" {
		placed := outcomeRecords(outcomes)
		if err := chemio.WriteFile(opts.out, placed); err != nil {
			return err
		}
		log.Info("placed compounds written", logging.String("path", opts.out), logging.Int("count", len(placed)))
	}
	if err := printOutcomes(cmd, cc.OutputFormat, outcomes); err != nil {
		return err
	}
	return outcomeError(outcomes)
}

// watchLogLevel applies log level changes of the config file while a batch
// is running.
func watchLogLevel(cc *CLIContext) {
	setter, ok := cc.Logger.(logging.LevelSetter)
	if cc.ConfigPath == "" || !ok {
		return
	}
	err := config.Watch(cc.ConfigPath, func(cfg *config.Config) {
		setter.SetLevel(cfg.Log.Level)
		cc.Logger.Info("log level reloaded", logging.String("level", cfg.Log.Level))
	}, func(err error) {
		cc.Logger.Warn("ignoring invalid config change", logging.Err(err))
	})
	if err != nil {
		cc.Logger.Warn("config watch unavailable", logging.Err(err))
	}
}

//Personal.AI order the ending
