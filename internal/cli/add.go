package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	recorduc "github.com/kailas-cloud/tagdex/internal/usecase/record"
)

type addOptions struct {
	description string
	tags        []string
	path        string
}

func newAddCmd(a *app) *cobra.Command {
	opts := &addOptions{}

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Append a record to the store",
		Long: `Append a record without going through upload and tagging.

Examples:
  tagdex add --description "Network design spec" --tag network --tag spec --path /uploads/net.md`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := a.context(cmd.Context())

			records, err := openRecords(ctx, a.cfg.Storage, a.logger)
			if err != nil {
				return err
			}
			defer records.Close()

			tags := opts.tags
			if tags == nil {
				tags = []string{}
			}
			rec, err := recorduc.New(records).Save(ctx, opts.description, tags, opts.path)
			if err != nil {
				return fmt.Errorf("add failed: %w", err)
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(searchHit{
				ID:          rec.ID(),
				Description: rec.Description(),
				Tags:        rec.Tags(),
				Path:        rec.Path(),
			})
		},
	}

	cmd.Flags().StringVar(&opts.description, "description", "", "record description (required)")
	cmd.Flags().StringArrayVar(&opts.tags, "tag", nil, "tag, repeatable")
	cmd.Flags().StringVar(&opts.path, "path", "", "public path of the stored file (required)")
	_ = cmd.MarkFlagRequired("description")
	_ = cmd.MarkFlagRequired("path")
	return cmd
}
