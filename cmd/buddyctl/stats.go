package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Redd-Hibb/stacsos/buddy"
)

func init() {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show allocator diagnostic counters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openState(statePath)
			if err != nil {
				return err
			}
			defer s.reg.Close()

			st := s.alloc.Stats()
			counts := s.alloc.FreeBlockCounts()

			if jsonOut {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(struct {
					Stats           any                          `json:"stats"`
					FreeBlockCounts [buddy.LastOrder + 1]int `json:"free_block_counts"`
				}{Stats: st, FreeBlockCounts: counts})
			}

			fmt.Printf("total free:  %d pages\n", st.TotalFree)
			fmt.Printf("allocations: %d\n", st.AllocCount)
			fmt.Printf("frees:       %d\n", st.FreeCount)
			fmt.Printf("splits:      %d\n", st.SplitCount)
			fmt.Printf("merges:      %d\n", st.MergeCount)
			fmt.Println("free blocks by order:")
			for order, n := range counts {
				if n > 0 {
					fmt.Printf("  [%02d] %d\n", order, n)
				}
			}
			return nil
		},
	}
	rootCmd.AddCommand(cmd)
}
