package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/luma/beacon/cmd/gen"
)

var rootCmd = &cobra.Command{
	Use:   "beacon",
	Short: "Beacon is a server-side game packet protocol library and service",
	Long: `Beacon implements a Minecraft-style server-side packet protocol:
NBT and chat component decoding, a length-prefixed connection framer,
and a single-threaded epoll reactor driving it all.`,
}

func init() {
	rootCmd.AddCommand(StartCmd)
	rootCmd.AddCommand(gen.RootCmd)
}

// Execute runs the root command, exiting the process on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
