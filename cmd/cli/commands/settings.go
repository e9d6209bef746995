package commands

import (
	"github.com/spf13/cobra"

	"filedropbox/internal/format"
	"filedropbox/internal/queue"
)

// Settings flag names
const (
	flagTheme          = "theme"
	flagMaxConcurrent  = "max-concurrent"
	flagAutoRetryCount = "auto-retry-count"
	flagTimeoutMs      = "timeout-ms"
	flagChunkSize      = "chunk-size"
)

func init() {
	settingsCmd.AddCommand(showSettingsCmd)
	settingsCmd.AddCommand(setSettingsCmd)

	setSettingsCmd.Flags().String(flagTheme, "", "Theme preference: light, dark, or system")
	setSettingsCmd.Flags().Int(flagMaxConcurrent, 0, "Maximum concurrent transfers")
	setSettingsCmd.Flags().Int(flagAutoRetryCount, -1, "Automatic retry attempts per transfer")
	setSettingsCmd.Flags().Int(flagTimeoutMs, 0, "Per-request connection timeout in milliseconds")
	setSettingsCmd.Flags().Int64(flagChunkSize, 0, "Upload chunk size in bytes")
}

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage persisted upload settings",
}

var showSettingsCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the current settings",
	RunE: func(cmd *cobra.Command, _ []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		s := queue.LoadSettings(store)

		cmd.Printf("theme:            %s\n", s.Theme)
		cmd.Printf("max concurrent:   %d\n", s.MaxConcurrent)
		cmd.Printf("auto retry count: %d\n", s.AutoRetryCount)
		cmd.Printf("timeout:          %d ms\n", s.ConnectionTimeoutMs)
		cmd.Printf("chunk size:       %s\n", format.FileSize(s.ChunkSizeBytes))
		return nil
	},
}

var setSettingsCmd = &cobra.Command{
	Use:   "set",
	Short: "Change settings; they apply to new and retried transfers",
	RunE: func(cmd *cobra.Command, _ []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		s := queue.LoadSettings(store)

		if cmd.Flags().Changed(flagTheme) {
			s.Theme, _ = cmd.Flags().GetString(flagTheme)
		}
		if cmd.Flags().Changed(flagMaxConcurrent) {
			s.MaxConcurrent, _ = cmd.Flags().GetInt(flagMaxConcurrent)
		}
		if cmd.Flags().Changed(flagAutoRetryCount) {
			s.AutoRetryCount, _ = cmd.Flags().GetInt(flagAutoRetryCount)
		}
		if cmd.Flags().Changed(flagTimeoutMs) {
			s.ConnectionTimeoutMs, _ = cmd.Flags().GetInt(flagTimeoutMs)
		}
		if cmd.Flags().Changed(flagChunkSize) {
			s.ChunkSizeBytes, _ = cmd.Flags().GetInt64(flagChunkSize)
		}

		if err := queue.SaveSettings(store, s); err != nil {
			return err
		}
		return showSettingsCmd.RunE(cmd, nil)
	},
}
