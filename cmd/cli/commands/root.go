// Package commands implements the file dropbox CLI.
package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"filedropbox/internal/localstore"
	"filedropbox/internal/logger"
)

// flag names
const (
	flagServerAddress = "server-address"
	flagStateDir      = "state-dir"
)

// environment variable names
const (
	envServerAddress = "FILE_DROPBOX_SERVER_ADDRESS"
)

// defaultServerAddress targets a locally running server
const defaultServerAddress = "http://localhost:3000"

var (
	// serverAddress is the target server address. Flag parsing sets this.
	serverAddress string
	// stateDir holds the CLI's durable local state (task list, settings)
	stateDir string
)

func init() {
	RootCmd.PersistentFlags().StringVarP(&serverAddress, flagServerAddress, "s", defaultServerAddress,
		"Address of the file dropbox server (env: FILE_DROPBOX_SERVER_ADDRESS)")
	RootCmd.PersistentFlags().StringVar(&stateDir, flagStateDir, "",
		"Directory for local CLI state (default: ~/.filedropbox)")

	RootCmd.AddCommand(uploadCmd)
	RootCmd.AddCommand(uploadsCmd)
	RootCmd.AddCommand(settingsCmd)
}

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "filedropbox",
	Short: "File dropbox CLI - resumable file uploads from the terminal",
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		_ = godotenv.Load()
		logger.Initialize()
		logger.SetOutput(os.Stderr)

		if !cmd.Flags().Changed(flagServerAddress) {
			if envAddr := os.Getenv(envServerAddress); envAddr != "" {
				serverAddress = envAddr
			}
		}
		if serverAddress == "" {
			return fmt.Errorf("server address cannot be empty")
		}

		if stateDir == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return fmt.Errorf("resolve home directory: %w", err)
			}
			stateDir = filepath.Join(home, ".filedropbox")
		}
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return RootCmd.Execute()
}

// openStore opens the CLI's durable local storage
func openStore() (*localstore.Store, error) {
	return localstore.New(stateDir)
}
