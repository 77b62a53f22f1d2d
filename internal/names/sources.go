package names

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// DefaultFiles are the reference files looked up when none are configured.
var DefaultFiles = []string{"all_locations.json", "all_decks.json", "all_cards.json"}

// RedisClient is the subset of the Redis client used to read name tables.
type RedisClient interface {
	HGetAll(ctx context.Context, key string) *redis.MapStringStringCmd
}

// Tables is a set of display->raw reference tables keyed by kind.
type Tables map[string]map[string]string

func (t Tables) merge(kind string, m map[string]string) {
	if t[kind] == nil {
		t[kind] = make(map[string]string, len(m))
	}
	for display, raw := range m {
		t[kind][display] = raw
	}
}

// Merge copies other into t. Entries from other win.
func (t Tables) Merge(other Tables) {
	for kind, m := range other {
		t.merge(kind, m)
	}
}

// LoadFiles reads reference tables from JSON, TOML or YAML files. A file is
// either one flat table whose kind comes from its name (all_cards.json) or a
// document with one section per kind. Unreadable files are logged and skipped.
func LoadFiles(paths []string, logger *zap.Logger) Tables {
	if logger == nil {
		logger = zap.NewNop()
	}
	log := logger.Sugar()

	tables := make(Tables)
	for _, path := range paths {
		loaded, err := loadFile(path)
		if err != nil {
			log.Warnw("Failed to load name table", "file", path, "error", err)
			continue
		}
		tables.Merge(loaded)
	}
	return tables
}

func loadFile(path string) (Tables, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var unmarshal func([]byte, any) error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		unmarshal = json.Unmarshal
	case ".toml":
		unmarshal = toml.Unmarshal
	case ".yaml", ".yml":
		unmarshal = yaml.Unmarshal
	default:
		return nil, fmt.Errorf("unsupported name table format %q", filepath.Ext(path))
	}

	var sections map[string]map[string]string
	if err := unmarshal(data, &sections); err == nil && len(sections) > 0 {
		return Tables(sections), nil
	}

	var flat map[string]string
	if err := unmarshal(data, &flat); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	kind := kindFromFilename(path)
	if kind == "" {
		return nil, fmt.Errorf("cannot tell which table %s holds", path)
	}
	return Tables{kind: flat}, nil
}

func kindFromFilename(path string) string {
	base := strings.ToLower(filepath.Base(path))
	for _, kind := range Kinds {
		if strings.Contains(base, strings.TrimSuffix(kind, "s")) {
			return kind
		}
	}
	return ""
}

// LoadRedis reads one hash per kind, named prefix+kind (e.g. "names:cards").
// Missing hashes are simply empty.
func LoadRedis(ctx context.Context, client RedisClient, prefix string, logger *zap.Logger) (Tables, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	tables := make(Tables)
	for _, kind := range Kinds {
		key := prefix + kind
		m, err := client.HGetAll(ctx, key).Result()
		if err != nil {
			return nil, fmt.Errorf("redis hgetall %s: %w", key, err)
		}
		if len(m) == 0 {
			logger.Sugar().Debugw("Empty name table", "key", key)
			continue
		}
		tables.merge(kind, m)
	}
	return tables, nil
}
