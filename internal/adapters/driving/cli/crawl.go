package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/corpus-cli/internal/core/domain"
)

var (
	flagCrawlSince string
	flagCrawlUntil string
)

var crawlCmd = &cobra.Command{
	Use:   "crawl <pairing-id>",
	Short: "Run an incremental crawl for a pairing",
	Long: `Drives the pairing's connector over a modification time window until
the connector reports exhaustion. Progress is checkpointed after every
batch, so an interrupted crawl resumes where it stopped.`,
	Args: cobra.ExactArgs(1),
	RunE: runCrawl,
}

func init() {
	crawlCmd.Flags().StringVar(&flagCrawlSince, "since", "", "window start (RFC 3339 or duration like 24h)")
	crawlCmd.Flags().StringVar(&flagCrawlUntil, "until", "", "window end (RFC 3339, default now)")
	rootCmd.AddCommand(crawlCmd)
}

func runCrawl(cmd *cobra.Command, args []string) error {
	if crawlRunner == nil {
		return errors.New("crawl service not configured")
	}
	pairingID := args[0]

	windowEnd := time.Now().UTC()
	if flagCrawlUntil != "" {
		t, err := time.Parse(time.RFC3339, flagCrawlUntil)
		if err != nil {
			return fmt.Errorf("invalid --until: %w", err)
		}
		windowEnd = t.UTC()
	}

	var windowStart time.Time
	if flagCrawlSince != "" {
		t, err := parseWindowStart(flagCrawlSince, windowEnd)
		if err != nil {
			return err
		}
		windowStart = t
	}

	cmd.Printf("Crawling pairing %s...\n", pairingID)

	result, err := crawlRunner.RunIncrementalCrawl(context.Background(), pairingID, windowStart, windowEnd)
	if result != nil {
		cmd.Printf("Ingested %d items and %d nodes (%d failures).\n",
			result.ItemCount, result.NodeCount, len(result.Failures))
		for _, failure := range result.Failures {
			if failure.ItemID != nil {
				cmd.Printf("  failed %s: %s\n", *failure.ItemID, failure.Message)
			} else {
				cmd.Printf("  failed: %s\n", failure.Message)
			}
		}
	}
	if err != nil {
		if errors.Is(err, domain.ErrCrawlInProgress) {
			return fmt.Errorf("a crawl for pairing %s is already running", pairingID)
		}
		return fmt.Errorf("crawl failed: %w", err)
	}

	return nil
}

// parseWindowStart accepts an absolute RFC 3339 timestamp or a duration
// back from the window end.
func parseWindowStart(s string, windowEnd time.Time) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --since %q: want RFC 3339 or duration", s)
	}
	return windowEnd.Add(-d), nil
}
