package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/openpmx/vpc/pkg/plot"
)

// themeCommand creates the theme management command.
func (c *CLI) themeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "theme",
		Short: "Inspect or scaffold theme files",
	}

	cmd.AddCommand(c.themeShowCommand())
	cmd.AddCommand(c.themeInitCommand())

	return cmd
}

// themeShowCommand creates the "theme show" subcommand. Without arguments it
// prints the default theme; with a file argument it prints that theme fully
// resolved against the defaults.
func (c *CLI) themeShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show [file]",
		Short: "Print a theme as resolved TOML",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			theme := plot.DefaultTheme()
			if len(args) == 1 {
				loaded, err := plot.LoadThemeFile(args[0])
				if err != nil {
					return err
				}
				theme = plot.Resolve(loaded)
			}

			data, err := plot.EncodeTheme(theme)
			if err != nil {
				return err
			}
			fmt.Print(string(data))
			return nil
		},
	}
}

// themeInitCommand creates the "theme init" subcommand.
func (c *CLI) themeInitCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write the default theme to a TOML file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := plot.EncodeTheme(plot.DefaultTheme())
			if err != nil {
				return err
			}
			if err := os.WriteFile(output, data, 0644); err != nil {
				return fmt.Errorf("write %s: %w", output, err)
			}
			printSuccess("Wrote default theme")
			printFile(output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "theme.toml", "output file")

	return cmd
}
