// Package cli wires the driving CLI commands to the core services.
package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	configfile "github.com/custodia-labs/corpus-cli/internal/adapters/driven/config/file"
	"github.com/custodia-labs/corpus-cli/internal/adapters/driven/groups"
	"github.com/custodia-labs/corpus-cli/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/corpus-cli/internal/connectors/localdir"
	"github.com/custodia-labs/corpus-cli/internal/core/access"
	"github.com/custodia-labs/corpus-cli/internal/core/ports/driven"
	"github.com/custodia-labs/corpus-cli/internal/core/ports/driving"
	"github.com/custodia-labs/corpus-cli/internal/core/services"
	"github.com/custodia-labs/corpus-cli/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

// Services shared by the commands, wired once per invocation.
var (
	configStore    driven.ConfigStore
	pairingStore   driven.PairingStore
	crawlRunner    driving.CrawlRunner
	listingService driving.ListingService
	metadataStore  *sqlite.Store
)

var (
	flagConfigDir string
	flagVerbose   bool
)

var rootCmd = &cobra.Command{
	Use:   "corpus",
	Short: "Incremental content ingestion and access-controlled listing",
	Long: `Corpus ingests content from external sources through checkpointed
incremental crawls and serves access-controlled, paginated listings of
the ingested items.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		if cmd.Name() == "version" {
			return nil
		}
		logger.SetVerbose(flagVerbose)
		if servicesWired() {
			return nil
		}
		return initServices()
	},
	PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
		if metadataStore != nil {
			return metadataStore.Close()
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfigDir, "config", "", "config directory (default ~/.corpus)")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "verbose logging")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// servicesWired reports whether the service graph is already in place,
// either from a previous invocation or injected by tests.
func servicesWired() bool {
	return pairingStore != nil && crawlRunner != nil && listingService != nil
}

// crawlConfigFrom overlays configured crawl bounds onto the defaults.
func crawlConfigFrom(cfg driven.ConfigStore) (services.CrawlConfig, error) {
	crawlCfg := services.DefaultCrawlConfig()
	if n := cfg.GetInt(configfile.KeyMaxInvocations); n > 0 {
		crawlCfg.MaxInvocations = n
	}
	if s := cfg.GetString(configfile.KeyInvocationTimeout); s != "" {
		d, err := time.ParseDuration(s)
		if err != nil {
			return crawlCfg, fmt.Errorf("invalid %s %q: %w", configfile.KeyInvocationTimeout, s, err)
		}
		crawlCfg.InvocationTimeout = d
	}
	if rps := cfg.GetFloat(configfile.KeyInvocationsPerSecond); rps > 0 {
		crawlCfg.InvocationsPerSecond = rps
	}
	if _, ok := cfg.Get(configfile.KeyStrict); ok {
		crawlCfg.Strict = cfg.GetBool(configfile.KeyStrict)
	}
	return crawlCfg, nil
}

// initServices builds the service graph from configuration.
func initServices() error {
	cfg, err := configfile.NewConfigStore(flagConfigDir)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	configStore = cfg

	store, err := sqlite.NewStore(cfg.GetString(configfile.KeyDataDir))
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	metadataStore = store
	pairingStore = store.PairingStore()

	checker, err := access.NewChecker(cfg.GetString(configfile.KeyEdition))
	if err != nil {
		return err
	}

	factory := services.NewConnectorFactory()
	factory.Register("localdir", localdir.Builder)

	crawlCfg, err := crawlConfigFrom(cfg)
	if err != nil {
		return err
	}

	crawlRunner = services.NewCrawlRunner(
		store.PairingStore(),
		store.ItemStore(),
		store.CheckpointStore(),
		factory,
		crawlCfg,
	)

	listingService = services.NewListingService(
		store.ItemStore(),
		store.PairingStore(),
		groups.NewStaticResolver(cfg.StaticGroups()),
		checker,
		cfg.GetInt(configfile.KeyPageSize),
	)

	return nil
}
