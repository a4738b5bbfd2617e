package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/openmission/openmission/pkg/behavior"
	"github.com/openmission/openmission/pkg/behaviors"
)

func newTypesCommand() *cobra.Command {
	var showOutcomes bool

	cmd := &cobra.Command{
		Use:   "types",
		Short: "List the registered behavior types",
		Long: `List every behavior type the engine can construct, the vocabulary
available to mission files.`,
		Example: `  # List behavior types
  missionctl types

  # Include each type's declared outcomes
  missionctl types --outcomes`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			factory := behavior.NewFactory(nil)
			if err := behaviors.Register(factory); err != nil {
				return err
			}

			for _, typ := range factory.Types() {
				if !showOutcomes {
					fmt.Println(typ)
					continue
				}
				b, err := factory.Construct(typ, behavior.Name(typ))
				if err != nil {
					return fmt.Errorf("constructing %q: %w", typ, err)
				}
				fmt.Printf("%s: outcomes %v, nominal %s\n", typ, b.Outcomes().List(), b.NominalOutcome())
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&showOutcomes, "outcomes", false, "show declared outcomes per type")

	return cmd
}
