package main

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/Redd-Hibb/stacsos/buddy"
)

var allocZero bool

func init() {
	cmd := &cobra.Command{
		Use:   "alloc <order>",
		Short: "Allocate a block of 2^order pages",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			order, err := strconv.Atoi(args[0])
			if err != nil {
				return err
			}

			s, err := openState(statePath)
			if err != nil {
				return err
			}

			flags := buddy.FlagNone
			if allocZero {
				flags = buddy.FlagZero
			}

			block, err := s.alloc.AllocatePages(order, flags)
			if err != nil {
				return err
			}

			printInfo("allocated order %d block at pfn %d (base %#x)\n", order, block.PFN(), block.BaseAddress())
			return s.close()
		},
	}
	cmd.Flags().BoolVar(&allocZero, "zero", false, "zero-fill the returned block")
	rootCmd.AddCommand(cmd)
}
