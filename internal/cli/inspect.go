package cli

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

// inspectCommand creates the inspect command, a terminal browser over the
// levels of a computed layout.
func (c *CLI) inspectCommand() *cobra.Command {
	var (
		plain   bool
		noCache bool
		flags   layoutFlags
	)

	cmd := &cobra.Command{
		Use:   "inspect [diagram.json|diagram.yaml]",
		Short: "Browse the levels of a diagram's layout in the terminal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := c.options(cmd, &flags)
			if err != nil {
				return err
			}
			runner, err := c.newRunner(cmd.Context(), noCache)
			if err != nil {
				return fmt.Errorf("initialize runner: %w", err)
			}
			defer runner.Close()

			result, err := runner.Execute(cmd.Context(), args[0], opts)
			if err != nil {
				return err
			}
			model := NewLevelModel(result.Diagram, result.Stats)
			if plain {
				printLevels(model)
				return nil
			}
			return runProgram(cmd.Context(), model)
		},
	}

	cmd.Flags().BoolVar(&plain, "plain", false, "print every level instead of starting the browser")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	flags.register(cmd)

	return cmd
}

func runProgram(ctx context.Context, model tea.Model) error {
	_, err := tea.NewProgram(model, tea.WithContext(ctx), tea.WithAltScreen()).Run()
	return err
}

// printLevels writes every level table to stdout.
func printLevels(m LevelModel) {
	printKeyValue("diagram", m.Name)
	fmt.Println(statsLine(m.Stats, false))
	for i, lv := range m.Levels {
		fmt.Println()
		fmt.Println(StyleTitle.Render(fmt.Sprintf("level %d", len(m.Levels)-1-i)))
		fmt.Println(m.levelTable(lv))
	}
}
