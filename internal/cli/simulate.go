package cli

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"cogscreen/internal/attention"
	"cogscreen/internal/clock"
	"cogscreen/internal/config"
	"cogscreen/internal/models"
	"cogscreen/internal/report"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/text/language"
)

// spawnPoll is the step the simulated clock advances while waiting for a
// target.
const spawnPoll = 10 * time.Millisecond

// Responder scripts the simulated test taker.
type Responder struct {
	MissRate float64
	Reaction time.Duration
	Jitter   time.Duration
}

type simulateOptions struct {
	settings  attention.Settings
	responder Responder
	seed      uint64
	log       *zap.Logger
}

func newSimulateCmd() *cobra.Command {
	var (
		trials   int
		seed     uint64
		width    int
		markdown bool
		verbose  bool
		resp     Responder
	)

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Run an attention session headless and print its report",
		Long: `Runs the attention test against a simulated clock with a scripted
responder and prints the report that a real session would produce.

Example:
  cogscreen simulate --trials 10 --miss-rate 0.2 --reaction 450ms`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			conf, err := config.Load(projectRoot)
			if err != nil {
				return err
			}
			settings := conf.Attention.Settings()
			if cmd.Flags().Changed("trials") {
				settings.Trials = trials
			}

			log := zap.NewNop()
			if verbose {
				if log, err = zap.NewDevelopment(); err != nil {
					return fmt.Errorf("failed to initialize logger: %w", err)
				}
				defer log.Sync()
			}

			res, err := simulateAttention(simulateOptions{
				settings:  settings,
				responder: resp,
				seed:      seed,
				log:       log,
			})
			if err != nil {
				return err
			}

			reports, err := report.NewRenderer(language.English)
			if err != nil {
				return err
			}
			doc, err := reports.Attention(&res)
			if err != nil {
				return err
			}
			out := doc.Markdown
			if !markdown {
				if out, err = report.Terminal(doc, width); err != nil {
					return err
				}
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), out)
			return err
		},
	}

	cmd.Flags().IntVar(&trials, "trials", 10, "number of targets")
	cmd.Flags().Uint64Var(&seed, "seed", 1, "random seed for delays, positions and responses")
	cmd.Flags().Float64Var(&resp.MissRate, "miss-rate", 0.1, "probability of ignoring a target")
	cmd.Flags().DurationVar(&resp.Reaction, "reaction", 400*time.Millisecond, "mean reaction time")
	cmd.Flags().DurationVar(&resp.Jitter, "jitter", 100*time.Millisecond, "maximum deviation from the mean reaction time")
	cmd.Flags().IntVar(&width, "width", 80, "terminal width for word wrapping")
	cmd.Flags().BoolVar(&markdown, "markdown", false, "print raw markdown")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "log controller events")
	return cmd
}

// simulateAttention drives a real controller on a fake clock until the
// session completes.
func simulateAttention(opts simulateOptions) (models.AttentionResult, error) {
	if opts.responder.MissRate < 0 || opts.responder.MissRate > 1 {
		return models.AttentionResult{}, errors.New("miss rate must be within [0, 1]")
	}
	clk := clock.NewFake(time.Now())
	rng := rand.New(rand.NewPCG(opts.seed, opts.seed^0x9e3779b97f4a7c15))

	ctrl, err := attention.NewController(attention.Options{
		Settings: opts.settings,
		Clock:    clk,
		Rand:     rand.New(rand.NewPCG(opts.seed, opts.seed)),
		Log:      opts.log,
	})
	if err != nil {
		return models.AttentionResult{}, err
	}
	if err := ctrl.Start(); err != nil {
		return models.AttentionResult{}, err
	}

	for ctrl.Running() {
		snap := ctrl.Snapshot()
		if snap.Target == nil {
			clk.Advance(spawnPoll)
			continue
		}
		if rng.Float64() < opts.responder.MissRate {
			clk.Advance(opts.settings.ExpireAfter)
			continue
		}

		clk.Advance(opts.responder.reactionTime(rng))
		_, err := ctrl.Click(snap.Target.Index)
		switch {
		case err == nil:
		case errors.Is(err, attention.ErrStaleTarget), errors.Is(err, attention.ErrNoTarget), errors.Is(err, attention.ErrNotRunning):
			// Too slow: the target expired first.
		default:
			return models.AttentionResult{}, err
		}
	}

	res, ok := ctrl.Last()
	if !ok {
		return models.AttentionResult{}, errors.New("simulated session did not complete")
	}
	return res, nil
}

func (r Responder) reactionTime(rng *rand.Rand) time.Duration {
	d := r.Reaction
	if r.Jitter > 0 {
		d += time.Duration(rng.Int64N(int64(2*r.Jitter)+1)) - r.Jitter
	}
	return max(d, time.Millisecond)
}
