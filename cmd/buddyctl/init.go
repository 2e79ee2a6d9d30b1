package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	initFrames    uint64
	initPageShift uint
)

func init() {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a new state directory with an empty allocator",
		Long: `init creates the arena and metadata files under --state, sized for
--frames page frames. It fails if the directory already holds a state.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := createState(statePath, initFrames, initPageShift); err != nil {
				return err
			}
			printInfo("initialized state at %s (%d frames, page shift %d)\n", statePath, initFrames, initPageShift)
			return nil
		},
	}
	cmd.Flags().Uint64Var(&initFrames, "frames", 0, "number of page frames to manage (required)")
	cmd.Flags().UintVar(&initPageShift, "page-shift", 12, "page size exponent")
	cmd.MarkFlagRequired("frames")
	rootCmd.AddCommand(cmd)
}

func printInfo(format string, args ...any) {
	if !jsonOut {
		fmt.Printf(format, args...)
	}
}
