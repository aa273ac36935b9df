package cli

import (
	"github.com/spf13/cobra"

	"github.com/mwinokan/Fragmenstein/internal/application/laboratory"
	"github.com/mwinokan/Fragmenstein/internal/infrastructure/chemio"
	"github.com/mwinokan/Fragmenstein/internal/infrastructure/monitoring/logging"
	"github.com/mwinokan/Fragmenstein/pkg/errors"
)

type placeOptions struct {
	hits       string
	candidate  string
	attachment string
	minimize   bool
	out        string
}

func newPlaceCmd() *cobra.Command {
	opts := &placeOptions{}
	cmd := &cobra.Command{
		Use:   "place",
		Short: "Place one follow-up compound onto the hits",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlace(cmd, opts)
		},
	}
	f := cmd.Flags()
	f.StringVar(&opts.hits, "hits", "", "SD file of fragment hits (required)")
	f.StringVar(&opts.candidate, "candidate", "", "molfile of the follow-up compound (required)")
	f.StringVar(&opts.attachment, "attachment", "", "attachment point for the wildcard atom as x,y,z")
	f.BoolVar(&opts.minimize, "minimize", false, "relax the placed compound under restraints")
	f.StringVar(&opts.out, "out", "", "SD file to write the placed compound to")
	_ = cmd.MarkFlagRequired("hits")
	_ = cmd.MarkFlagRequired("candidate")
	return cmd
}

func runPlace(cmd *cobra.Command, opts *placeOptions) error {
	cc, err := GetCLIContext(cmd)
	if err != nil {
		return err
	}
	hits, err := readHits(opts.hits)
	if err != nil {
		return err
	}
	recs, err := chemio.ReadFile(opts.candidate)
	if err != nil {
		return err
	}
	if len(recs) != 1 {
		return errors.InvalidParam("candidate file must hold exactly one molecule; use batch for more").WithDetail(opts.candidate)
	}
	task, err := taskFromRecord(recs[0], 0)
	if err != nil {
		return err
	}
	if opts.attachment != "" {
		if task.Attachment, err = parseVec(opts.attachment); err != nil {
			return err
		}
	}
	if opts.minimize {
		cc.Config.Lab.MinimizeOutput = true
	}

	rt, err := newServices(cc, false)
	if err != nil {
		return err
	}
	defer rt.close()

	outcomes, err := rt.lab.Place(cmd.Context(), hits, []laboratory.Task{task})
	if err != nil {
		return err
	}
	if opts.out != "" {
		if placed := outcomeRecords(outcomes); len(placed) > 0 {
			if err := chemio.WriteFile(opts.out, placed); err != nil {
				return err
			}
			cc.Logger.Info("placed compound written", logging.String("path", opts.out))
		}
	}
	if err := printOutcomes(cmd, cc.OutputFormat, outcomes); err != nil {
		return err
	}
	return outcomeError(outcomes)
}

//Personal.AI order the ending
