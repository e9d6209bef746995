package commands

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"filedropbox/config"
	"filedropbox/internal/format"
	"filedropbox/internal/queue"
)

// pollInterval paces progress rendering while uploads run
const pollInterval = 500 * time.Millisecond

func init() {
	uploadCmd.Flags().Bool("no-resume", false, "Do not auto-resume re-attached interrupted uploads")
}

var uploadCmd = &cobra.Command{
	Use:   "upload <file>...",
	Short: "Upload files to the dropbox, resuming interrupted transfers",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		noResume, _ := cmd.Flags().GetBool("no-resume")

		cfg, err := config.Load()
		if err != nil {
			return err
		}
		store, err := openStore()
		if err != nil {
			return err
		}

		manager := queue.NewManager(queue.Options{
			Store:       store,
			Settings:    queue.LoadSettings(store),
			Endpoint:    serverAddress + "/api/tus",
			MaxFileSize: cfg.MaxFileSize,
			Notifier:    terminalNotifier{out: cmd.ErrOrStderr()},
		})
		defer manager.Close()

		manager.AddFiles(args...)

		// Re-attached tasks come back paused; resume them unless told not to
		if !noResume {
			for _, t := range manager.Tasks() {
				if t.Status == queue.StatusPaused {
					manager.Resume(t.ID)
				}
			}
		}

		watch(cmd, manager)

		failed := 0
		for _, t := range manager.Tasks() {
			switch t.Status {
			case queue.StatusCompleted:
				cmd.Printf("done      %s (%s)\n", t.Filename, format.FileSize(t.Size))
			case queue.StatusFailed:
				cmd.Printf("failed    %s: %s\n", t.Filename, t.Error)
				failed++
			case queue.StatusInterrupted:
				cmd.Printf("interrupted  %s: re-attach the file and resume\n", t.Filename)
			}
		}
		if failed > 0 {
			return fmt.Errorf("%d upload(s) failed", failed)
		}
		return nil
	},
}

// watch renders progress until no task is queued or uploading
func watch(cmd *cobra.Command, manager *queue.Manager) {
	lastLine := make(map[string]string)
	for {
		busy := false
		for _, t := range manager.Tasks() {
			switch t.Status {
			case queue.StatusQueued, queue.StatusUploading:
				busy = true
			}
			if t.Status != queue.StatusUploading {
				continue
			}
			line := fmt.Sprintf("uploading %s %s of %s (%s)",
				t.Filename,
				format.FileSize(t.BytesUploaded),
				format.FileSize(t.Size),
				format.Progress(t.BytesUploaded, t.Size))
			if lastLine[t.ID] != line {
				lastLine[t.ID] = line
				cmd.Println(line)
			}
		}
		if !busy {
			return
		}
		time.Sleep(pollInterval)
	}
}

// terminalNotifier prints user-facing upload events to the terminal
type terminalNotifier struct {
	out io.Writer
}

func (n terminalNotifier) UploadFailed(filename, message string) {
	fmt.Fprintf(n.out, "Upload failed: %q: %s\n", filename, message)
}

func (n terminalNotifier) FileTooLarge(filename string, size, maxSize int64) {
	fmt.Fprintf(n.out, "File too large: %q is %s, limit is %s\n",
		filename, format.FileSize(size), format.FileSize(maxSize))
}

func (n terminalNotifier) FileReattached(filename string) {
	fmt.Fprintf(n.out, "File re-attached: %q will resume from its last offset\n", filename)
}
