package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	statePath string
	jsonOut   bool
)

var rootCmd = &cobra.Command{
	Use:     "buddyctl",
	Short:   "Drive a binary buddy page allocator backed by an on-disk arena",
	Version: "0.1.0",
}

func init() {
	rootCmd.PersistentFlags().
		StringVar(&statePath, "state", "", "directory holding the allocator's persistent state (required)")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "print stats as machine-readable JSON; other commands omit their status line")
	rootCmd.MarkPersistentFlagRequired("state")
}

// guard runs fn and converts an allocator panic (a fatal misuse assertion,
// e.g. a misaligned or double-freed block) into a plain error, so a bad CLI
// invocation reports a message instead of a stack trace.
func guard(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("allocator rejected the request: %v", r)
		}
	}()
	return fn()
}

func execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
