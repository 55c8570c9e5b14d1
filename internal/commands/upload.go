package commands

import (
	"errors"
	"fmt"
	"path"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/dvloznov/swiss-bookkeeping/internal/gcsuploader"
)

func newUploadCommand(a *app) *cobra.Command {
	var bucket string
	var prefix string

	cmd := &cobra.Command{
		Use:   "upload <file>...",
		Short: "Upload source documents to GCS for later processing",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if bucket == "" {
				bucket = a.cfg.Export.Bucket
			}
			if bucket == "" {
				return errors.New("no bucket given, use --bucket or export.bucket")
			}

			storage, err := gcsuploader.NewGCSStorageService(cmd.Context())
			if err != nil {
				return err
			}
			defer storage.Close()

			for _, file := range splitArgs(args) {
				object := path.Join(prefix, filepath.Base(file))
				uri, err := storage.UploadFile(cmd.Context(), bucket, object, file)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), uri)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&bucket, "bucket", "", "target bucket (defaults to export.bucket)")
	cmd.Flags().StringVar(&prefix, "prefix", "documents", "object name prefix")
	return cmd
}
