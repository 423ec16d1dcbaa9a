package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"coursereport/pkg/contracts"
)

func newVersionCmd(env *cliEnv) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(env.out, contracts.GetFullVersionString())
		},
	}
}
