package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	configfile "github.com/custodia-labs/corpus-cli/internal/adapters/driven/config/file"
	"github.com/custodia-labs/corpus-cli/internal/core/domain"
	"github.com/custodia-labs/corpus-cli/internal/core/keyset"
	"github.com/custodia-labs/corpus-cli/internal/core/ports/driving"
)

var (
	flagListPairing      string
	flagListSort         string
	flagListFoldersFirst bool
	flagListPageSize     int
	flagListCursor       string
	flagListEmail        string
	flagListGroups       []string
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List ingested content visible to an identity",
	Long: `Lists container nodes and items through the access filter. Every row
returned is visible to the requesting identity; rows the identity may
not see are skipped, never blanked.`,
}

var listNodesCmd = &cobra.Command{
	Use:   "nodes",
	Short: "List visible container nodes",
	RunE:  runListNodes,
}

var listItemsCmd = &cobra.Command{
	Use:   "items <node-id>",
	Short: "List one page of visible items under a node",
	Args:  cobra.ExactArgs(1),
	RunE:  runListItems,
}

func init() {
	listCmd.PersistentFlags().StringVar(&flagListEmail, "email", "", "requesting identity email (default anonymous)")
	listCmd.PersistentFlags().StringSliceVar(&flagListGroups, "group", nil, "requesting identity group ID (repeatable)")

	listNodesCmd.Flags().StringVar(&flagListPairing, "pairing", "", "restrict to one pairing")

	listItemsCmd.Flags().StringVar(&flagListSort, "sort", string(keyset.SortLastUpdated),
		"sort order: last_updated or name")
	listItemsCmd.Flags().BoolVar(&flagListFoldersFirst, "folders-first", false, "sort folder rows first")
	listItemsCmd.Flags().IntVar(&flagListPageSize, "page-size", 0, "items per page (0 = default)")
	listItemsCmd.Flags().StringVar(&flagListCursor, "cursor", "", "resume cursor from a previous page")

	listCmd.AddCommand(listNodesCmd)
	listCmd.AddCommand(listItemsCmd)
	rootCmd.AddCommand(listCmd)
}

// requestIdentity builds the identity from the shared listing flags.
func requestIdentity() domain.Identity {
	if flagListEmail == "" && len(flagListGroups) == 0 {
		return domain.Anonymous()
	}
	return domain.Identity{Email: flagListEmail, GroupIDs: flagListGroups}
}

func runListNodes(cmd *cobra.Command, _ []string) error {
	if listingService == nil {
		return errors.New("listing service not configured")
	}

	nodes, err := listingService.ListAccessibleNodes(context.Background(), flagListPairing, requestIdentity())
	if err != nil {
		return fmt.Errorf("list nodes: %w", err)
	}
	if len(nodes) == 0 {
		cmd.Println("No visible nodes.")
		return nil
	}

	for _, node := range nodes {
		parent := "-"
		if node.RawParentID != nil {
			parent = *node.RawParentID
		}
		cmd.Printf("%s  %-12s parent=%s  %s\n", node.RawID, node.NodeType, parent, node.DisplayName)
	}
	return nil
}

func runListItems(cmd *cobra.Command, args []string) error {
	if listingService == nil {
		return errors.New("listing service not configured")
	}

	sort := keyset.Sort(flagListSort)
	if sort != keyset.SortLastUpdated && sort != keyset.SortName {
		return fmt.Errorf("invalid --sort %q: want last_updated or name", flagListSort)
	}

	foldersFirst := flagListFoldersFirst
	if !cmd.Flags().Changed("folders-first") && configStore != nil {
		foldersFirst = configStore.GetBool(configfile.KeyFoldersFirst)
	}

	opts := driving.ListOptions{
		Sort:         sort,
		FoldersFirst: foldersFirst,
		PageSize:     flagListPageSize,
	}

	page, err := listingService.ListAccessibleItemsUnderNode(
		context.Background(), args[0], flagListCursor, opts, requestIdentity())
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCursor) {
			return errors.New("invalid --cursor: start over without one")
		}
		return fmt.Errorf("list items: %w", err)
	}

	if len(page.Items) == 0 {
		cmd.Println("No visible items.")
		return nil
	}
	for _, item := range page.Items {
		cmd.Printf("%s  %-6s %s  %s\n",
			item.ID, item.Kind, item.UpdatedAt.Format("2006-01-02 15:04"), item.DisplayName)
	}
	if page.NextCursor != "" {
		cmd.Printf("\nNext page: --cursor %s\n", page.NextCursor)
	}
	return nil
}
