package localdir

import (
	"fmt"
	"strconv"

	"github.com/custodia-labs/corpus-cli/internal/core/domain"
)

// DefaultBatchSize caps the items emitted per invocation.
const DefaultBatchSize = 100

// Config holds the parsed configuration for a local directory pairing.
type Config struct {
	// Path is the root directory to crawl. Required.
	Path string

	// BatchSize caps items per invocation. Default: DefaultBatchSize.
	BatchSize int

	// IncludeHidden includes dot-files and dot-directories.
	// Default: false.
	IncludeHidden bool
}

// ParseConfig parses a pairing's config map into a Config struct.
func ParseConfig(pairing domain.Pairing) (*Config, error) {
	cfg := &Config{
		BatchSize: DefaultBatchSize,
	}

	path, ok := pairing.Config["path"]
	if !ok || path == "" {
		return nil, fmt.Errorf("%w: localdir pairing %s has no path", domain.ErrConfiguration, pairing.ID)
	}
	cfg.Path = path

	if raw, ok := pairing.Config["batch_size"]; ok && raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("%w: invalid batch_size %q", domain.ErrConfiguration, raw)
		}
		cfg.BatchSize = n
	}

	if raw, ok := pairing.Config["include_hidden"]; ok && raw != "" {
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid include_hidden %q", domain.ErrConfiguration, raw)
		}
		cfg.IncludeHidden = b
	}

	return cfg, nil
}
