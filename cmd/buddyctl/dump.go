package main

import (
	"os"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "dump",
		Short: "List every free block extent, grouped by order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openState(statePath)
			if err != nil {
				return err
			}

			s.alloc.Dump(os.Stdout)

			return s.close()
		},
	}
	rootCmd.AddCommand(cmd)
}
