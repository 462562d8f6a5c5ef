package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/corpus-cli/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/corpus-cli/internal/core/domain"
	"github.com/custodia-labs/corpus-cli/internal/core/keyset"
	"github.com/custodia-labs/corpus-cli/internal/core/ports/driven"
)

// folderRank sorts folder rows ahead of file rows when FoldersFirst is on.
const folderRank = "CASE WHEN kind = 'folder' THEN 0 ELSE 1 END"

// Store is a unified SQLite-based storage that provides access to
// all metadata store interfaces through wrapper types.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a new SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.corpus/data/corpus.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".corpus", "data")
	}

	// Ensure directory exists
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "corpus.db")

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	// Run migrations
	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// PairingStore returns a PairingStore interface backed by this store.
func (s *Store) PairingStore() driven.PairingStore {
	return &pairingStore{store: s}
}

// ItemStore returns an ItemStore interface backed by this store.
func (s *Store) ItemStore() driven.ItemStore {
	return &itemStore{store: s}
}

// CheckpointStore returns a CheckpointStore interface backed by this store.
func (s *Store) CheckpointStore() driven.CheckpointStore {
	return &checkpointStore{store: s}
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	// Ensure schema_migrations table exists
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	// Get current version
	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	// Find all up migrations
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	// Sort and run migrations
	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// Extract version number (e.g., "001_initial.up.sql" -> 1)
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue // Skip files that don't match pattern
		}

		if version <= currentVersion {
			continue // Already applied
		}

		// Read and execute migration
		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
	}

	return nil
}

// ==================== Pairing Store ====================

// pairingStore implements driven.PairingStore.
type pairingStore struct {
	store *Store
}

var _ driven.PairingStore = (*pairingStore)(nil)

// Save stores or updates a pairing.
func (s *pairingStore) Save(ctx context.Context, pairing domain.Pairing) error {
	configJSON, err := json.Marshal(pairing.Config)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}

	now := time.Now().UTC()
	if pairing.CreatedAt.IsZero() {
		pairing.CreatedAt = now
	}
	pairing.UpdatedAt = now

	_, err = s.store.db.ExecContext(ctx, `
		INSERT INTO pairings (id, connector_type, name, config, credential_id, access_type, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			connector_type = excluded.connector_type,
			name = excluded.name,
			config = excluded.config,
			credential_id = excluded.credential_id,
			access_type = excluded.access_type,
			status = excluded.status,
			updated_at = excluded.updated_at
	`, pairing.ID, pairing.ConnectorType, pairing.Name, string(configJSON),
		nullString(pairing.CredentialID), string(pairing.AccessType), string(pairing.Status),
		pairing.CreatedAt, pairing.UpdatedAt)

	if err != nil {
		return fmt.Errorf("saving pairing: %w", err)
	}
	return nil
}

// Get retrieves a pairing by ID.
func (s *pairingStore) Get(ctx context.Context, id string) (*domain.Pairing, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT id, connector_type, name, config, credential_id, access_type, status, created_at, updated_at
		FROM pairings WHERE id = ?
	`, id)

	return scanPairing(row.Scan)
}

// List returns all pairings.
func (s *pairingStore) List(ctx context.Context) ([]domain.Pairing, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, connector_type, name, config, credential_id, access_type, status, created_at, updated_at
		FROM pairings
	`)
	if err != nil {
		return nil, fmt.Errorf("querying pairings: %w", err)
	}
	defer rows.Close()

	var pairings []domain.Pairing //nolint:prealloc // size unknown from query
	for rows.Next() {
		pairing, err := scanPairing(rows.Scan)
		if err != nil {
			return nil, err
		}
		pairings = append(pairings, *pairing)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating pairings: %w", err)
	}

	return pairings, nil
}

// SetStatus transitions a pairing's lifecycle status.
func (s *pairingStore) SetStatus(ctx context.Context, id string, status domain.PairingStatus) error {
	res, err := s.store.db.ExecContext(ctx, `
		UPDATE pairings SET status = ?, updated_at = ? WHERE id = ?
	`, string(status), time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("updating pairing status: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking affected rows: %w", err)
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// scanPairing scans one pairing row via the given scan function.
func scanPairing(scan func(...any) error) (*domain.Pairing, error) {
	var pairing domain.Pairing
	var configJSON, accessType, status string
	var credentialID sql.NullString
	var createdAt, updatedAt sql.NullTime

	if err := scan(&pairing.ID, &pairing.ConnectorType, &pairing.Name, &configJSON,
		&credentialID, &accessType, &status, &createdAt, &updatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning pairing: %w", err)
	}

	if err := json.Unmarshal([]byte(configJSON), &pairing.Config); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	pairing.CredentialID = credentialID.String
	pairing.AccessType = domain.AccessType(accessType)
	pairing.Status = domain.PairingStatus(status)
	if createdAt.Valid {
		pairing.CreatedAt = createdAt.Time
	}
	if updatedAt.Valid {
		pairing.UpdatedAt = updatedAt.Time
	}

	return &pairing, nil
}

// ==================== Checkpoint Store ====================

// checkpointStore implements driven.CheckpointStore.
type checkpointStore struct {
	store *Store
}

var _ driven.CheckpointStore = (*checkpointStore)(nil)

// Save stores or replaces the checkpoint for a pairing.
func (s *checkpointStore) Save(ctx context.Context, pairingID string, cp domain.Checkpoint) error {
	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO checkpoints (pairing_id, cursor, has_more, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(pairing_id) DO UPDATE SET
			cursor = excluded.cursor,
			has_more = excluded.has_more,
			updated_at = excluded.updated_at
	`, pairingID, cp.Cursor, cp.HasMore, time.Now().UTC())

	if err != nil {
		return fmt.Errorf("saving checkpoint: %w", err)
	}
	return nil
}

// Get retrieves the checkpoint for a pairing.
func (s *checkpointStore) Get(ctx context.Context, pairingID string) (*domain.Checkpoint, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT cursor, has_more FROM checkpoints WHERE pairing_id = ?
	`, pairingID)

	var cp domain.Checkpoint
	if err := row.Scan(&cp.Cursor, &cp.HasMore); err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning checkpoint: %w", err)
	}
	return &cp, nil
}

// Delete removes the checkpoint for a pairing.
func (s *checkpointStore) Delete(ctx context.Context, pairingID string) error {
	_, err := s.store.db.ExecContext(ctx, "DELETE FROM checkpoints WHERE pairing_id = ?", pairingID)
	if err != nil {
		return fmt.Errorf("deleting checkpoint: %w", err)
	}
	return nil
}

// ==================== Item Store ====================

// itemStore implements driven.ItemStore.
type itemStore struct {
	store *Store
}

var _ driven.ItemStore = (*itemStore)(nil)

// UpsertContentItem stores or updates an item, keyed by item ID.
func (s *itemStore) UpsertContentItem(ctx context.Context, item *domain.ContentItem) error {
	if err := item.Validate(); err != nil {
		return err
	}

	sectionsJSON, err := json.Marshal(item.Sections)
	if err != nil {
		return fmt.Errorf("marshalling sections: %w", err)
	}
	metadataJSON, err := json.Marshal(item.Metadata)
	if err != nil {
		return fmt.Errorf("marshalling metadata: %w", err)
	}
	emailsJSON, err := json.Marshal(item.ExternalUserEmails)
	if err != nil {
		return fmt.Errorf("marshalling user emails: %w", err)
	}
	groupsJSON, err := json.Marshal(item.ExternalGroupIDs)
	if err != nil {
		return fmt.Errorf("marshalling group ids: %w", err)
	}

	_, err = s.store.db.ExecContext(ctx, `
		INSERT INTO content_items
			(id, pairing_id, display_name, kind, sections, metadata, is_public,
			 user_emails, group_ids, parent_container_id, updated_at_ns, synced_at_ns)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			pairing_id = excluded.pairing_id,
			display_name = excluded.display_name,
			kind = excluded.kind,
			sections = excluded.sections,
			metadata = excluded.metadata,
			is_public = excluded.is_public,
			user_emails = excluded.user_emails,
			group_ids = excluded.group_ids,
			parent_container_id = excluded.parent_container_id,
			updated_at_ns = excluded.updated_at_ns,
			synced_at_ns = excluded.synced_at_ns
	`, item.ID, item.PairingID, item.DisplayName, string(item.Kind),
		string(sectionsJSON), string(metadataJSON), item.IsPublic,
		string(emailsJSON), string(groupsJSON), item.ParentContainerID,
		item.UpdatedAt.UnixNano(), item.SyncedAt.UnixNano())

	if err != nil {
		return fmt.Errorf("saving item: %w", err)
	}
	return nil
}

// UpsertContainerNode stores or updates a node, keyed by (pairing, raw ID).
func (s *itemStore) UpsertContainerNode(ctx context.Context, node *domain.ContainerNode) error {
	if err := node.Validate(); err != nil {
		return err
	}

	emailsJSON, err := json.Marshal(node.ExternalUserEmails)
	if err != nil {
		return fmt.Errorf("marshalling user emails: %w", err)
	}
	groupsJSON, err := json.Marshal(node.ExternalGroupIDs)
	if err != nil {
		return fmt.Errorf("marshalling group ids: %w", err)
	}

	_, err = s.store.db.ExecContext(ctx, `
		INSERT INTO container_nodes
			(pairing_id, raw_id, raw_parent_id, display_name, node_type, is_public,
			 user_emails, group_ids, link)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(pairing_id, raw_id) DO UPDATE SET
			raw_parent_id = excluded.raw_parent_id,
			display_name = excluded.display_name,
			node_type = excluded.node_type,
			is_public = excluded.is_public,
			user_emails = excluded.user_emails,
			group_ids = excluded.group_ids,
			link = excluded.link
	`, node.PairingID, node.RawID, node.RawParentID, node.DisplayName, node.NodeType,
		node.IsPublic, string(emailsJSON), string(groupsJSON), node.Link)

	if err != nil {
		return fmt.Errorf("saving node: %w", err)
	}
	return nil
}

// RecordFailure persists a crawl failure.
func (s *itemStore) RecordFailure(ctx context.Context, pairingID string, failure domain.ConnectorFailure) error {
	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO crawl_failures (id, pairing_id, item_id, message, err, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, uuid.NewString(), pairingID, failure.ItemID, failure.Message, failure.Err, time.Now().UTC())

	if err != nil {
		return fmt.Errorf("recording failure: %w", err)
	}
	return nil
}

// GetContentItem retrieves an item by ID.
func (s *itemStore) GetContentItem(ctx context.Context, id string) (*domain.ContentItem, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT id, pairing_id, display_name, kind, sections, metadata, is_public,
		       user_emails, group_ids, parent_container_id, updated_at_ns, synced_at_ns
		FROM content_items WHERE id = ?
	`, id)

	item, err := scanItem(row.Scan)
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	return item, err
}

// ListNodes returns the container nodes of a pairing. An empty pairing ID
// spans all pairings.
func (s *itemStore) ListNodes(ctx context.Context, pairingID string) ([]domain.ContainerNode, error) {
	query := `
		SELECT pairing_id, raw_id, raw_parent_id, display_name, node_type, is_public,
		       user_emails, group_ids, link
		FROM container_nodes
	`
	var args []any
	if pairingID != "" {
		query += " WHERE pairing_id = ?"
		args = append(args, pairingID)
	}

	rows, err := s.store.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying nodes: %w", err)
	}
	defer rows.Close()

	var nodes []domain.ContainerNode //nolint:prealloc // size unknown from query
	for rows.Next() {
		var node domain.ContainerNode
		var rawParentID sql.NullString
		var emailsJSON, groupsJSON string
		if err := rows.Scan(&node.PairingID, &node.RawID, &rawParentID, &node.DisplayName,
			&node.NodeType, &node.IsPublic, &emailsJSON, &groupsJSON, &node.Link); err != nil {
			return nil, fmt.Errorf("scanning node: %w", err)
		}
		if rawParentID.Valid {
			node.RawParentID = &rawParentID.String
		}
		if err := json.Unmarshal([]byte(emailsJSON), &node.ExternalUserEmails); err != nil {
			return nil, fmt.Errorf("unmarshaling user emails: %w", err)
		}
		if err := json.Unmarshal([]byte(groupsJSON), &node.ExternalGroupIDs); err != nil {
			return nil, fmt.Errorf("unmarshaling group ids: %w", err)
		}
		nodes = append(nodes, node)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating nodes: %w", err)
	}

	return nodes, nil
}

// QueryItemsUnderNode returns up to limit items under the node, in keyset
// order, strictly after the cursor position. The cursor tuple comparison
// is expanded into nested range clauses because the sort mixes ascending
// and descending directions, which SQLite row-value comparison cannot
// express directly.
func (s *itemStore) QueryItemsUnderNode(
	ctx context.Context,
	nodeID string,
	cursor *keyset.Cursor,
	opts keyset.Options,
	limit int,
) ([]domain.ContentItem, error) {
	where := []string{"parent_container_id = ?"}
	args := []any{nodeID}

	if cursor != nil {
		pred, predArgs := cursorPredicate(cursor, opts)
		where = append(where, pred)
		args = append(args, predArgs...)
	}

	query := `
		SELECT id, pairing_id, display_name, kind, sections, metadata, is_public,
		       user_emails, group_ids, parent_container_id, updated_at_ns, synced_at_ns
		FROM content_items
		WHERE ` + strings.Join(where, " AND ") + `
		ORDER BY ` + orderClause(opts)
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.store.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying items: %w", err)
	}
	defer rows.Close()

	var items []domain.ContentItem //nolint:prealloc // size unknown from query
	for rows.Next() {
		item, err := scanItem(rows.Scan)
		if err != nil {
			return nil, err
		}
		items = append(items, *item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating items: %w", err)
	}

	return items, nil
}

// orderClause builds the ORDER BY expression for the given options.
func orderClause(opts keyset.Options) string {
	var parts []string
	if opts.FoldersFirst {
		parts = append(parts, folderRank+" ASC")
	}
	switch opts.Sort {
	case keyset.SortName:
		parts = append(parts, "display_name ASC")
	default:
		parts = append(parts, "updated_at_ns DESC", "synced_at_ns DESC")
	}
	parts = append(parts, "id ASC")
	return strings.Join(parts, ", ")
}

// cursorPredicate builds the strictly-after clause for a cursor. Cursor
// fields missing for the active sort fall through to the ID tie-break,
// matching the in-memory comparison.
func cursorPredicate(c *keyset.Cursor, opts keyset.Options) (string, []any) {
	// Innermost: the ID tie-break.
	pred := "id > ?"
	args := []any{c.ID}

	switch opts.Sort {
	case keyset.SortName:
		if c.Name != nil {
			pred = fmt.Sprintf("(display_name > ? OR (display_name = ? AND %s))", pred)
			args = append([]any{*c.Name, *c.Name}, args...)
		}
	default:
		if c.SyncedAt != nil {
			ns := c.SyncedAt.UnixNano()
			pred = fmt.Sprintf("(synced_at_ns < ? OR (synced_at_ns = ? AND %s))", pred)
			args = append([]any{ns, ns}, args...)
		}
		if c.UpdatedAt != nil {
			ns := c.UpdatedAt.UnixNano()
			pred = fmt.Sprintf("(updated_at_ns < ? OR (updated_at_ns = ? AND %s))", pred)
			args = append([]any{ns, ns}, args...)
		}
	}

	if opts.FoldersFirst && c.Folder != nil {
		rank := 1
		if *c.Folder {
			rank = 0
		}
		pred = fmt.Sprintf("(%s > ? OR (%s = ? AND %s))", folderRank, folderRank, pred)
		args = append([]any{rank, rank}, args...)
	}

	return pred, args
}

// scanItem scans one item row via the given scan function.
func scanItem(scan func(...any) error) (*domain.ContentItem, error) {
	var item domain.ContentItem
	var kind, sectionsJSON, metadataJSON, emailsJSON, groupsJSON string
	var parentID sql.NullString
	var updatedNS, syncedNS int64

	if err := scan(&item.ID, &item.PairingID, &item.DisplayName, &kind,
		&sectionsJSON, &metadataJSON, &item.IsPublic,
		&emailsJSON, &groupsJSON, &parentID, &updatedNS, &syncedNS); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("scanning item: %w", err)
	}

	item.Kind = domain.ItemKind(kind)
	if err := json.Unmarshal([]byte(sectionsJSON), &item.Sections); err != nil {
		return nil, fmt.Errorf("unmarshaling sections: %w", err)
	}
	if err := json.Unmarshal([]byte(metadataJSON), &item.Metadata); err != nil {
		return nil, fmt.Errorf("unmarshaling metadata: %w", err)
	}
	if err := json.Unmarshal([]byte(emailsJSON), &item.ExternalUserEmails); err != nil {
		return nil, fmt.Errorf("unmarshaling user emails: %w", err)
	}
	if err := json.Unmarshal([]byte(groupsJSON), &item.ExternalGroupIDs); err != nil {
		return nil, fmt.Errorf("unmarshaling group ids: %w", err)
	}
	if parentID.Valid {
		item.ParentContainerID = &parentID.String
	}
	item.UpdatedAt = time.Unix(0, updatedNS).UTC()
	item.SyncedAt = time.Unix(0, syncedNS).UTC()

	return &item, nil
}

// nullString converts an empty string to a SQL NULL.
func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
