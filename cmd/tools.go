package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/kfreiman/docbridge/internal/converter"
	"github.com/kfreiman/docbridge/internal/mcp"
	"github.com/spf13/cobra"
)

var toolsFlags struct {
	from string
	to   string
	json bool
}

var toolsCmd = &cobra.Command{
	Use:   "tools",
	Short: "Show which conversion strategies are available on this host",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		var from, to converter.Format
		var err error
		if toolsFlags.from != "" {
			if from, err = converter.ParseFormat(toolsFlags.from); err != nil {
				return err
			}
		}
		if toolsFlags.to != "" {
			if to, err = converter.ParseFormat(toolsFlags.to); err != nil {
				return err
			}
		}

		dispatcher, _, err := newDispatcher()
		if err != nil {
			return err
		}
		defer func() { _ = dispatcher.Close() }()

		reports := mcp.BuildPairReports(dispatcher, from, to)
		if toolsFlags.json {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(reports)
		}
		fmt.Fprint(cmd.OutOrStdout(), mcp.FormatPairReports(reports))
		return nil
	},
}

func init() {
	toolsCmd.Flags().StringVar(&toolsFlags.from, "from", "", "Only show pairs from this format")
	toolsCmd.Flags().StringVar(&toolsFlags.to, "to", "", "Only show pairs to this format")
	toolsCmd.Flags().BoolVar(&toolsFlags.json, "json", false, "Print the report as JSON")

	rootCmd.AddCommand(toolsCmd)
}
