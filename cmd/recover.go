package cmd

import (
	"fmt"
	"time"

	"github.com/Scotlight/SaveLiveCaptions/internal"
	"github.com/spf13/cobra"
)

var (
	recoverStrategy string
	recoverMinAge   time.Duration
)

// recoverCmd represents the recover command
var recoverCmd = &cobra.Command{
	Use:   "recover [dir]",
	Short: "Merge cache files left behind by an interrupted session",
	Long: `Find <timestamp>_cache.tmp files in dir (default: save_dir), merge each one
into its paired transcript and delete it.

A cache file is only left behind when a session ended without a clean stop
(power loss, kill -9, a failed final merge). Lines already in the transcript
are not written again. Caches modified within --min-age are skipped because
they probably belong to a session that is still recording.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := loadConfig()
		if err != nil {
			return err
		}
		dir := cfg.SaveDir
		if len(args) == 1 {
			dir = args[0]
		}

		strategy := cfg.Strategy()
		if recoverStrategy != "" {
			if strategy, err = internal.ParseStrategy(recoverStrategy); err != nil {
				return err
			}
		}

		reports, err := internal.RecoverDir(dir, strategy, recoverMinAge, time.Now())
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if len(reports) == 0 {
			internal.PrintInfo(out, "No orphaned cache files in "+dir)
			return nil
		}

		failed := 0
		for _, r := range reports {
			switch {
			case r.Skipped != "":
				internal.PrintWarning(out, fmt.Sprintf("Skipped %s (%s)", r.CachePath, r.Skipped))
			case r.Err != nil:
				failed++
				internal.PrintError(out, fmt.Sprintf("%s: %v", r.CachePath, r.Err))
			default:
				internal.PrintSuccess(out, fmt.Sprintf("Recovered %d line(s) into %s", len(r.Result.Written), r.TranscriptPath))
			}
		}
		if failed > 0 {
			return fmt.Errorf("%d cache file(s) could not be recovered", failed)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(recoverCmd)
	recoverCmd.Flags().StringVar(&recoverStrategy, "strategy", "", "Merge strategy: sentence or resegment (default: merge_strategy from config)")
	recoverCmd.Flags().DurationVar(&recoverMinAge, "min-age", 10*time.Second, "Skip caches modified more recently than this")
}
