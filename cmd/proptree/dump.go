package main

import (
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/cognicore/proptree/pkg/proptree/confusion"
)

var dumpCmd = &cobra.Command{
	Use:   "dump",
	Short: "Print the effective confusion tables as YAML",
	Long: `Dump prints the type and role confusion tables in the format accepted by
--confusion, after defaults and overrides have been applied.`,
	Args: cobra.NoArgs,
	RunE: runDump,
}

func init() {
	rootCmd.AddCommand(dumpCmd)
}

func runDump(cmd *cobra.Command, args []string) error {
	_, comp, _, err := newEngine(cmd.Context(), cmd)
	if err != nil {
		return err
	}
	tables := confusion.Tables{Types: comp.Model.Types(), Roles: comp.Model.Roles()}

	enc := yaml.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent(2)
	if err := enc.Encode(tables); err != nil {
		return err
	}
	return enc.Close()
}
