package commands

import (
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/openmission/openmission/pkg/behavior"
	"github.com/openmission/openmission/pkg/config"
)

func newRunCommand() *cobra.Command {
	var (
		timeout      time.Duration
		showProgress bool
	)

	cmd := &cobra.Command{
		Use:   "run <mission-file>",
		Short: "Run a mission to its terminal outcome",
		Long: `Construct the mission's behavior, load its settings, validate the
configuration and execute it to a terminal outcome.

The command exits 0 on outcome success and non-zero otherwise.
Interrupting the process (Ctrl+C) requests cooperative preemption; the
mission winds down on its own and reports the preemption outcome.`,
		Example: `  # Run a mission
  missionctl run missions/count-twice.yaml

  # Run with a hard time budget
  missionctl run missions/survey.yaml --timeout 10m

  # Run without touching the run history database
  missionctl run missions/survey.yaml --no-store`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			env, err := newEnvironment(ctx, true)
			if err != nil {
				return err
			}
			defer env.Close(ctx)

			file, err := config.Load(args[0])
			if err != nil {
				return err
			}
			def := &file.Mission
			if timeout > 0 {
				def.Timeout = config.Duration(timeout)
			}

			if env.cfg.MetricsListen != "" {
				if err := env.tel.StartMetricsServer(); err != nil {
					log.Warn().Err(err).Msg("Metrics endpoint unavailable")
				}
			}

			exec, err := env.runner.Start(ctx, def)
			if err != nil {
				return err
			}

			log.Info().
				Str("run_id", exec.ID).
				Str("mission", def.Name).
				Msg("Mission running")

			if showProgress {
				go watchProgress(exec.Done(), exec.Progress)
			}

			outcome := exec.Wait()
			switch outcome {
			case behavior.Success:
				fmt.Printf("mission %s finished: %s\n", def.Name, outcome)
				return nil
			case behavior.Preemption:
				return fmt.Errorf("mission %s was preempted", def.Name)
			default:
				return fmt.Errorf("mission %s failed with outcome %s", def.Name, outcome)
			}
		},
	}

	cmd.Flags().DurationVar(&timeout, "timeout", 0, "mission time budget (overrides the mission file)")
	cmd.Flags().BoolVar(&showProgress, "progress", false, "periodically print progress")

	return cmd
}

// watchProgress prints the root behavior's progress once per second until
// the run finishes.
func watchProgress(done <-chan struct{}, progress func() behavior.Progress) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			p := progress()
			if p.IsZero() {
				continue
			}
			fmt.Printf("progress: %.0f/%.0f %s (%.0f%%)\n", p.Done, p.Goal, p.Unit, p.Fraction()*100)
		}
	}
}
