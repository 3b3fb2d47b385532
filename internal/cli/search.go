package cli

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/tagdex/internal/domain/search/rank"
	searchuc "github.com/kailas-cloud/tagdex/internal/usecase/search"
)

type searchOptions struct {
	query string
	k     int
	json  bool
}

type searchHit struct {
	ID          int64    `json:"id"`
	Score       float64  `json:"score"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
	Path        string   `json:"path"`
}

func newSearchCmd(a *app) *cobra.Command {
	opts := &searchOptions{}

	cmd := &cobra.Command{
		Use:   "search",
		Short: "Rank stored records against a query",
		Long: `Rank the records in the configured store against a free-text query.

Examples:
  tagdex search -q "network spec"
  tagdex search -q "hiring policy" -k 3 --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runSearch(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.query, "query", "q", "", "search query (required)")
	cmd.Flags().IntVarP(&opts.k, "top-k", "k", 0, "number of results (default from config)")
	cmd.Flags().BoolVar(&opts.json, "json", false, "output as JSON")
	_ = cmd.MarkFlagRequired("query")
	return cmd
}

func (a *app) runSearch(cmd *cobra.Command, opts *searchOptions) error {
	ctx := a.context(cmd.Context())

	records, err := openRecords(ctx, a.cfg.Storage, a.logger)
	if err != nil {
		return err
	}
	defer records.Close()

	svc := searchuc.New(records, rank.New(nil)).WithLimits(a.cfg.Search.DefaultK, a.cfg.Search.MaxK)
	hits, err := svc.Search(ctx, opts.query, opts.k)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	out := make([]searchHit, len(hits))
	for i := range hits {
		r := &hits[i].Record
		out[i] = searchHit{ID: r.ID(), Score: hits[i].Score, Description: r.Description(), Tags: r.Tags(), Path: r.Path()}
	}

	if opts.json {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	if len(out) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No matching records.")
		return nil
	}
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SCORE\tID\tPATH\tTAGS\tDESCRIPTION")
	for _, h := range out {
		fmt.Fprintf(tw, "%.1f\t%d\t%s\t%s\t%s\n", h.Score, h.ID, h.Path, strings.Join(h.Tags, ","), h.Description)
	}
	return tw.Flush()
}
