package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/openmission/openmission/pkg/config"
)

func newSettingsCommand() *cobra.Command {
	var write bool

	cmd := &cobra.Command{
		Use:   "settings <mission-file>",
		Short: "Show or normalize a mission's effective settings",
		Long: `Construct the mission's behavior, load the file's settings into it and
print the settings the behavior saves back: the effective configuration,
defaults included, in the behavior's canonical parameter order.

With --write the mission file is rewritten with those canonical settings,
normalizing hand-edited files. Unknown parameters are dropped; a round
trip through a behavior keeps only what the behavior understands.`,
		Example: `  # Show the effective settings
  missionctl settings missions/survey.yaml

  # Normalize the file in place
  missionctl settings --write missions/survey.yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			path := args[0]

			env, err := newEnvironment(ctx, false)
			if err != nil {
				return err
			}
			defer env.Close(ctx)

			file, err := config.Load(path)
			if err != nil {
				return err
			}

			b, err := env.runner.Build(&file.Mission)
			if err != nil {
				return err
			}
			saved := b.SaveSettings()

			if write {
				file.Mission.Settings = saved
				if err := file.Write(path); err != nil {
					return err
				}
				fmt.Printf("normalized settings written to %s\n", path)
				return nil
			}

			out, err := yaml.Marshal(saved)
			if err != nil {
				return err
			}
			fmt.Print(string(out))
			return nil
		},
	}

	cmd.Flags().BoolVar(&write, "write", false, "rewrite the mission file with the effective settings")

	return cmd
}
