package cli

import (
	"github.com/spf13/cobra"

	"github.com/mwinokan/Fragmenstein/internal/application/laboratory"
	"github.com/mwinokan/Fragmenstein/internal/infrastructure/chemio"
	"github.com/mwinokan/Fragmenstein/internal/infrastructure/monitoring/logging"
)

type combineOptions struct {
	hits     string
	out      string
	pairwise bool
}

func newCombineCmd() *cobra.Command {
	opts := &combineOptions{}
	cmd := &cobra.Command{
		Use:   "combine",
		Short: "Merge fragment hits into a scaffold",
		Long: "Merge all hits into one scaffold, or with --pairwise every unordered pair\n" +
			"of hits into its own scaffold.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCombine(cmd, opts)
		},
	}
	f := cmd.Flags()
	f.StringVar(&opts.hits, "hits", "", "SD file of fragment hits (required)")
	f.StringVar(&opts.out, "out", "", "SD file to write the scaffold(s) to")
	f.BoolVar(&opts.pairwise, "pairwise", false, "combine every pair of hits separately")
	_ = cmd.MarkFlagRequired("hits")
	return cmd
}

func runCombine(cmd *cobra.Command, opts *combineOptions) error {
	cc, err := GetCLIContext(cmd)
	if err != nil {
		return err
	}
	hits, err := readHits(opts.hits)
	if err != nil {
		return err
	}
	rt, err := newServices(cc, false)
	if err != nil {
		return err
	}
	defer rt.close()

	var outcomes []laboratory.Outcome
	if opts.pairwise {
		outcomes, err = rt.lab.Combine(cmd.Context(), hits)
	} else {
		var out laboratory.Outcome
		out, err = rt.lab.Merge(cmd.Context(), hits)
		outcomes = []laboratory.Outcome{out}
	}
	if err != nil {
		return err
	}

	if opts.out != "" {
		recs := outcomeRecords(outcomes)
		if err := chemio.WriteFile(opts.out, recs); err != nil {
			return err
		}
		cc.Logger.Info("scaffolds written", logging.String("path", opts.out), logging.Int("count", len(recs)))
	}
	if err := printOutcomes(cmd, cc.OutputFormat, outcomes); err != nil {
		return err
	}
	return outcomeError(outcomes)
}

//Personal.AI order the ending
