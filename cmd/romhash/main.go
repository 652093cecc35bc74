// Command romhash prints the RetroAchievements digest of a ROM file. It is
// the helper the exporter runs when HASH_BINARY points at it.
package main

import (
	"fmt"
	"os"

	"github.com/joshhsoj1902/retro-stats-exporter/internal/logger"
	"github.com/joshhsoj1902/retro-stats-exporter/internal/romhash"
	"github.com/spf13/cobra"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "romhash <path>",
	Short: "Print the RetroAchievements hash of a ROM",
	Long: `romhash reads a ROM file and prints its MD5 digest as lowercase hex.

iNES images (.nes starting with "NES\x1a") are hashed without their 16 byte
header. Every other file is hashed from its first byte.`,
	Args:          cobra.ExactArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		// stdout carries the digest only
		logger.Log.SetOutput(cmd.ErrOrStderr())
		if verbose {
			logger.Configure("debug", "text")
		} else {
			logger.Configure("warn", "text")
		}

		digest, err := romhash.MD5{}.Hash(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), digest)
		return nil
	},
}

func init() {
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Log to stderr while hashing")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
