package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/corpus-cli/internal/core/domain"
)

var (
	flagPairingType   string
	flagPairingName   string
	flagPairingAccess string
	flagPairingConfig []string
)

var pairingsCmd = &cobra.Command{
	Use:   "pairings",
	Short: "Manage connector pairings",
	Long: `A pairing links one connector configuration to a lifecycle status and
an access classification. Everything a crawl ingests is owned by the
pairing that produced it.`,
	RunE: runPairingsList,
}

var pairingsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List configured pairings",
	RunE:  runPairingsList,
}

var pairingsAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a pairing",
	RunE:  runPairingsAdd,
}

var pairingsPauseCmd = &cobra.Command{
	Use:   "pause <pairing-id>",
	Short: "Suspend crawling for a pairing",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setPairingStatus(cmd, args[0], domain.StatusPaused)
	},
}

var pairingsResumeCmd = &cobra.Command{
	Use:   "resume <pairing-id>",
	Short: "Resume crawling for a pairing",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setPairingStatus(cmd, args[0], domain.StatusActive)
	},
}

var pairingsRemoveCmd = &cobra.Command{
	Use:   "remove <pairing-id>",
	Short: "Mark a pairing for deletion",
	Long: `Marks the pairing as deleting. Its content disappears from listings
immediately; physical removal happens asynchronously.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setPairingStatus(cmd, args[0], domain.StatusDeleting)
	},
}

func init() {
	pairingsAddCmd.Flags().StringVar(&flagPairingType, "type", "", "connector type (required)")
	pairingsAddCmd.Flags().StringVar(&flagPairingName, "name", "", "human-readable name (required)")
	pairingsAddCmd.Flags().StringVar(&flagPairingAccess, "access", string(domain.AccessTypePublic),
		"access classification: public or sync")
	pairingsAddCmd.Flags().StringArrayVar(&flagPairingConfig, "set", nil,
		"connector config as key=value (repeatable)")

	pairingsCmd.AddCommand(pairingsListCmd)
	pairingsCmd.AddCommand(pairingsAddCmd)
	pairingsCmd.AddCommand(pairingsPauseCmd)
	pairingsCmd.AddCommand(pairingsResumeCmd)
	pairingsCmd.AddCommand(pairingsRemoveCmd)
	rootCmd.AddCommand(pairingsCmd)
}

func runPairingsList(cmd *cobra.Command, _ []string) error {
	if pairingStore == nil {
		return errors.New("pairing store not configured")
	}

	pairings, err := pairingStore.List(context.Background())
	if err != nil {
		return fmt.Errorf("list pairings: %w", err)
	}
	if len(pairings) == 0 {
		cmd.Println("No pairings configured.")
		return nil
	}

	for _, p := range pairings {
		cmd.Printf("%s  %-10s %-8s %-8s %s\n", p.ID, p.ConnectorType, p.AccessType, p.Status, p.Name)
	}
	return nil
}

func runPairingsAdd(cmd *cobra.Command, _ []string) error {
	if pairingStore == nil {
		return errors.New("pairing store not configured")
	}
	if flagPairingType == "" || flagPairingName == "" {
		return errors.New("--type and --name are required")
	}

	accessType := domain.AccessType(flagPairingAccess)
	if accessType != domain.AccessTypePublic && accessType != domain.AccessTypeSync {
		return fmt.Errorf("invalid --access %q: want public or sync", flagPairingAccess)
	}

	config := make(map[string]string, len(flagPairingConfig))
	for _, kv := range flagPairingConfig {
		key, value, ok := strings.Cut(kv, "=")
		if !ok {
			return fmt.Errorf("invalid --set %q: want key=value", kv)
		}
		config[key] = value
	}

	pairing := domain.Pairing{
		ID:            uuid.NewString(),
		ConnectorType: flagPairingType,
		Name:          flagPairingName,
		Config:        config,
		AccessType:    accessType,
		Status:        domain.StatusActive,
	}
	if err := pairingStore.Save(context.Background(), pairing); err != nil {
		return fmt.Errorf("save pairing: %w", err)
	}

	cmd.Printf("Added pairing %s (%s).\n", pairing.ID, pairing.ConnectorType)
	return nil
}

func setPairingStatus(cmd *cobra.Command, id string, status domain.PairingStatus) error {
	if pairingStore == nil {
		return errors.New("pairing store not configured")
	}
	if err := pairingStore.SetStatus(context.Background(), id, status); err != nil {
		return fmt.Errorf("set status: %w", err)
	}
	cmd.Printf("Pairing %s is now %s.\n", id, status)
	return nil
}
