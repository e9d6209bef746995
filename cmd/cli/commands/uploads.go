package commands

import (
	"github.com/spf13/cobra"

	"filedropbox/internal/format"
	"filedropbox/pkg/api/v1/client"
)

// Uploads flag names
const (
	flagUploadsPage = "page"
	flagUploadID    = "id"
)

func init() {
	uploadsCmd.AddCommand(listUploadsCmd)
	uploadsCmd.AddCommand(getUploadCmd)

	listUploadsCmd.Flags().IntP(flagUploadsPage, "g", 1, "Page number for pagination")

	getUploadCmd.Flags().StringP(flagUploadID, "i", "", "Upload ID")
	_ = getUploadCmd.MarkFlagRequired(flagUploadID)
}

var uploadsCmd = &cobra.Command{
	Use:   "uploads",
	Short: "Query the server's completed uploads",
}

var listUploadsCmd = &cobra.Command{
	Use:   "list",
	Short: "List completed uploads, newest first",
	RunE: func(cmd *cobra.Command, _ []string) error {
		page, _ := cmd.Flags().GetInt(flagUploadsPage)

		c := client.NewClient(client.Options{BaseURL: serverAddress})
		resp, err := c.ListUploads(cmd.Context(), page)
		if err != nil {
			return err
		}

		for _, u := range resp.Uploads {
			cmd.Printf("%s  %-40s %10s  %s\n", u.CompletedAt, u.Filename, format.FileSize(u.Size), u.ID)
		}
		cmd.Printf("page %d of %d upload(s) total\n", resp.Pagination.Page, resp.Pagination.Total)
		return nil
	},
}

var getUploadCmd = &cobra.Command{
	Use:   "get",
	Short: "Show one completed upload",
	RunE: func(cmd *cobra.Command, _ []string) error {
		id, _ := cmd.Flags().GetString(flagUploadID)

		c := client.NewClient(client.Options{BaseURL: serverAddress})
		u, err := c.GetUpload(cmd.Context(), id)
		if err != nil {
			return err
		}

		cmd.Printf("id:           %s\n", u.ID)
		cmd.Printf("filename:     %s\n", u.Filename)
		cmd.Printf("size:         %s\n", format.FileSize(u.Size))
		cmd.Printf("mime type:    %s\n", u.MimeType)
		cmd.Printf("stored path:  %s\n", u.FilePath)
		cmd.Printf("completed at: %s\n", u.CompletedAt)
		return nil
	},
}
