package main

import (
	"strconv"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "free <pfn> <order>",
		Short: "Return a block of 2^order pages to the free lists",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			pfn, err := strconv.ParseUint(args[0], 10, 64)
			if err != nil {
				return err
			}
			order, err := strconv.Atoi(args[1])
			if err != nil {
				return err
			}

			s, err := openState(statePath)
			if err != nil {
				return err
			}

			if err := guard(func() error {
				s.alloc.FreePages(s.reg.GetFromPFN(pfn), order)
				return nil
			}); err != nil {
				return err
			}

			printInfo("freed order %d block at pfn %d\n", order, pfn)
			return s.close()
		},
	}
	rootCmd.AddCommand(cmd)
}
