package cmd

import (
	"fmt"

	"github.com/Scotlight/SaveLiveCaptions/internal"
	"github.com/spf13/cobra"
)

var (
	mergeOut      string
	mergeStrategy string
)

// mergeCmd represents the merge command
var mergeCmd = &cobra.Command{
	Use:   "merge <cache-file>",
	Short: "Merge a cache file into a transcript",
	Long: `Replay the fragments of a <timestamp>_cache.tmp file into its paired
<timestamp>_captions.txt (or --out) without a live session.

Lines already present in the transcript are skipped, so running merge twice
does not duplicate anything. The cache file is left in place; use
'savecaptions recover' to merge and remove orphaned caches.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cachePath := args[0]

		strategy, err := internal.ParseStrategy(mergeStrategy)
		if err != nil {
			return err
		}

		out := mergeOut
		if out == "" {
			var ok bool
			out, ok = internal.TranscriptForCache(cachePath)
			if !ok {
				return fmt.Errorf("%s is not named like a session cache file; pass --out", cachePath)
			}
		}

		var res internal.MergeResult
		err = internal.ShowProgress(cmd.Context(), "Merging "+cachePath, func() error {
			var mergeErr error
			res, mergeErr = internal.MergeCacheFile(cachePath, out, strategy)
			return mergeErr
		})
		if err != nil {
			return err
		}

		internal.PrintSuccess(cmd.OutOrStdout(), fmt.Sprintf("Merged %d fragment(s) into %d new line(s) of %s",
			res.Fragments, len(res.Written), out))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(mergeCmd)
	mergeCmd.Flags().StringVarP(&mergeOut, "out", "o", "", "Transcript to append to (default: the cache file's paired transcript)")
	mergeCmd.Flags().StringVar(&mergeStrategy, "strategy", "", "Merge strategy: sentence or resegment")
}
