package names

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"sync"
	"testing"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestTable_Resolve(t *testing.T) {
	table := NewTable(map[string]map[string]string{
		"locations": {"Sanctum Sanctorum": "sanctum"},
		"cards":     {"Iron Man": "ironman", "Hulk": "hulk"},
		"decks":     {"Ongoing Control": "ongoing"},
	}, zap.NewNop())

	tests := []struct {
		raw, want string
	}{
		{"sanctum", "Sanctum Sanctorum"},
		{"ironman", "Iron Man"},
		{"ongoing", "Ongoing Control"},
		{"unknown_card", "unknown_card"},
	}
	for _, tt := range tests {
		if got := table.Resolve(tt.raw); got != tt.want {
			t.Errorf("Resolve(%q) = %q, want %q", tt.raw, got, tt.want)
		}
	}
	if table.Len() != 4 {
		t.Errorf("Len() = %d, want 4", table.Len())
	}
}

func TestTable_WarnsOncePerUnmappedName(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	table := NewTable(nil, zap.New(core))

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			table.Resolve("mystery")
			table.Resolve("enigma")
		}()
	}
	wg.Wait()
	table.Resolve("mystery")

	if n := logs.Len(); n != 2 {
		t.Errorf("got %d warnings, want 2", n)
	}
	if got, want := table.Unmapped(), []string{"enigma", "mystery"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Unmapped() = %v, want %v", got, want)
	}
}

func TestIdentity(t *testing.T) {
	if got := (Identity{}).Resolve("raw"); got != "raw" {
		t.Errorf("Identity.Resolve = %q", got)
	}
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestLoadFiles(t *testing.T) {
	dir := t.TempDir()
	paths := []string{
		writeFile(t, dir, "all_locations.json", `{"Sanctum Sanctorum": "sanctum"}`),
		writeFile(t, dir, "all_cards.json", `{"Iron Man": "ironman"}`),
		writeFile(t, dir, "extra.toml", "[decks]\n\"Ongoing Control\" = \"ongoing\"\n"),
		writeFile(t, dir, "more.yaml", "cards:\n  Hulk: hulk\n"),
		filepath.Join(dir, "missing.json"),
		writeFile(t, dir, "names.json", `{"Nameless": "nameless"}`),
	}

	core, logs := observer.New(zapcore.WarnLevel)
	tables := LoadFiles(paths, zap.New(core))

	want := Tables{
		"locations": {"Sanctum Sanctorum": "sanctum"},
		"cards":     {"Iron Man": "ironman", "Hulk": "hulk"},
		"decks":     {"Ongoing Control": "ongoing"},
	}
	if !reflect.DeepEqual(tables, want) {
		t.Errorf("LoadFiles() = %v, want %v", tables, want)
	}
	// missing.json and the kindless names.json are skipped with a warning.
	if logs.Len() != 2 {
		t.Errorf("got %d warnings, want 2", logs.Len())
	}
}

type mockRedis struct {
	hashes map[string]map[string]string
	err    error
}

func (m *mockRedis) HGetAll(ctx context.Context, key string) *redis.MapStringStringCmd {
	if m.err != nil {
		return redis.NewMapStringStringResult(nil, m.err)
	}
	return redis.NewMapStringStringResult(m.hashes[key], nil)
}

func TestLoadRedis(t *testing.T) {
	client := &mockRedis{hashes: map[string]map[string]string{
		"names:locations": {"Sanctum Sanctorum": "sanctum"},
		"names:cards":     {"Hulk": "hulk"},
	}}

	tables, err := LoadRedis(context.Background(), client, "names:", zap.NewNop())
	if err != nil {
		t.Fatalf("LoadRedis() error = %v", err)
	}
	if got := NewTable(tables, nil).Resolve("hulk"); got != "Hulk" {
		t.Errorf("Resolve(hulk) = %q, want Hulk", got)
	}
	if _, ok := tables["decks"]; ok {
		t.Errorf("empty decks hash should be omitted")
	}

	client.err = errors.New("connection refused")
	if _, err := LoadRedis(context.Background(), client, "names:", nil); err == nil {
		t.Error("expected error from failing redis")
	}
}

func TestTables_Merge(t *testing.T) {
	files := Tables{"cards": {"Hulk": "hulk", "Thanos": "thanos"}}
	files.Merge(Tables{
		"cards": {"The Incredible Hulk": "hulk"},
		"decks": {"Ongoing": "ongoing"},
	})

	want := Tables{
		"cards": {"Hulk": "hulk", "Thanos": "thanos", "The Incredible Hulk": "hulk"},
		"decks": {"Ongoing": "ongoing"},
	}
	if !reflect.DeepEqual(files, want) {
		t.Errorf("Merge() = %v, want %v", files, want)
	}
}
