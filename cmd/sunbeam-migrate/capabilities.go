package main

import "github.com/spf13/cobra"

var capabilitiesResourceType string

var capabilitiesCmd = &cobra.Command{
	Use:   "capabilities",
	Short: "Show the service tag, dependency types, and supported filters each handler advertises",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := bootstrap(ctx, false)
		if err != nil {
			return err
		}
		defer a.Close()

		caps, err := a.reg.Capabilities(capabilitiesResourceType)
		if err != nil {
			return err
		}
		return writeCapabilities(cmd, caps)
	},
}

func init() {
	capabilitiesCmd.Flags().StringVar(&capabilitiesResourceType, "resource-type", "", "show capabilities for a single resource type instead of all registered types")
	rootCmd.AddCommand(capabilitiesCmd)
}
