package cmd

import (
	"github.com/gitpulse-io/gitpulse"
	"github.com/spf13/cobra"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Long:  `Print the version with a short commit hash.`,
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Printf("gitpulse %s (%s)\n", gitpulse.VERSION, gitpulse.COMMIT)
		},
	}
}
