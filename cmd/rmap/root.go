package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ValentinKolb/rmap/logging"
)

const version = "0.1.0"

var rootCmd = &cobra.Command{
	Use:   "rmap",
	Short: "client for a remote map server",
	Long: fmt.Sprintf(`rmap (v%s)

A stateless client for a remote key-value map server: a single
long-lived TCP connection, a framed binary wire protocol, and the
standard map operations (get, put, remove, replace, iterate, ...)
dispatched over it.`, version),
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		initConfig()
		if err := bindFlags(cmd); err != nil {
			return err
		}
		logging.Init(viperLogLevelFlag())
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the rmap CLI version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("rmap v%s\n", version)
	},
}

func init() {
	setupClientFlags(rootCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(getCmd, putCmd, removeCmd, sizeCmd, clearCmd, keysCmd, valuesCmd, entriesCmd)
	rootCmd.AddCommand(perfCmd)
}

// Execute runs the root command; it is called by main.main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
