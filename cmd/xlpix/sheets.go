package main

import (
	"github.com/spf13/cobra"

	"github.com/ujiie/xlpix/internal/cli"
	"github.com/ujiie/xlpix/pkg/xlpix"
)

var sheetsCmd = &cobra.Command{
	Use:   "sheets [workbook]",
	Short: "List the sheet names in a workbook",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := checkInput(args[0]); err != nil {
			return err
		}
		names, err := xlpix.ListSheets(args[0])
		if err != nil {
			return err
		}
		return cli.Output(map[string]any{"sheets": names})
	},
}
