package main

import "github.com/spf13/cobra"

var registerExternalResourceType string

// registerExternalCmd backs `register-external`: it records a migration the
// core did not itself perform (SPEC_FULL.md "Supplemented features"), e.g.
// one done by hand or by a tool outside this repository's scope.
var registerExternalCmd = &cobra.Command{
	Use:   "register-external SOURCE_ID DESTINATION_ID",
	Short: "Record a migration that happened outside this tool",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := bootstrap(ctx, false)
		if err != nil {
			return err
		}
		defer a.Close()

		rec, err := a.orch.RegisterExternal(ctx, registerExternalResourceType, args[0], args[1])
		if err != nil {
			return err
		}
		return writeRecord(cmd, rec)
	},
}

func init() {
	registerExternalCmd.Flags().StringVar(&registerExternalResourceType, "resource-type", "", "resource type being registered (required)")
	_ = registerExternalCmd.MarkFlagRequired("resource-type")
	rootCmd.AddCommand(registerExternalCmd)
}
