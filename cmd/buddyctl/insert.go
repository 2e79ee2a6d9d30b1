package main

import (
	"strconv"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "insert <pfn> <count>",
		Short: "Insert a contiguous run of pages into the free lists",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			pfn, err := strconv.ParseUint(args[0], 10, 64)
			if err != nil {
				return err
			}
			count, err := strconv.ParseUint(args[1], 10, 64)
			if err != nil {
				return err
			}

			s, err := openState(statePath)
			if err != nil {
				return err
			}

			if err := guard(func() error {
				s.alloc.InsertFreePages(s.reg.GetFromPFN(pfn), count)
				return nil
			}); err != nil {
				return err
			}

			printInfo("inserted %d pages starting at pfn %d\n", count, pfn)
			return s.close()
		},
	}
	rootCmd.AddCommand(cmd)
}
