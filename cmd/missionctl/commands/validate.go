package commands

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/openmission/openmission/pkg/config"
)

func newValidateCommand() *cobra.Command {
	var watch bool

	cmd := &cobra.Command{
		Use:   "validate <mission-file>",
		Short: "Validate a mission file without executing it",
		Long: `Construct the mission's behavior, load its settings and report every
configuration inconsistency, without ever executing anything.

With --watch the file is re-validated whenever it changes on disk, which
keeps a feedback loop open while editing mission definitions.`,
		Example: `  # Validate a mission file
  missionctl validate missions/survey.yaml

  # Keep validating while editing
  missionctl validate --watch missions/survey.yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			path := args[0]

			env, err := newEnvironment(ctx, false)
			if err != nil {
				return err
			}
			defer env.Close(ctx)

			validateOnce := func() error {
				file, err := config.Load(path)
				if err != nil {
					return err
				}
				ics, err := env.runner.Validate(&file.Mission)
				if err != nil {
					return err
				}
				if !ics.Empty() {
					for _, msg := range ics.Messages() {
						fmt.Printf("inconsistency: %s\n", msg)
					}
					return fmt.Errorf("mission %q has %d inconsistencies", file.Mission.Name, len(ics))
				}
				fmt.Printf("mission %q is runnable\n", file.Mission.Name)
				return nil
			}

			if !watch {
				return validateOnce()
			}

			// Report the current state immediately, then follow changes.
			if err := validateOnce(); err != nil {
				log.Error().Err(err).Msg("Validation failed")
			}
			return config.Watch(ctx, path, env.tel.Logger, func(_ *config.File, loadErr error) {
				if loadErr != nil {
					log.Error().Err(loadErr).Msg("Validation failed")
					return
				}
				if err := validateOnce(); err != nil {
					log.Error().Err(err).Msg("Validation failed")
				}
			})
		},
	}

	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "re-validate on file changes")

	return cmd
}
