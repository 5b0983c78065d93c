// Package cache persists the emitted Go source for a compiled grammar to a
// file keyed by a hash of its source text and active Conditions, so that
// httpapi can answer a resubmitted compilation request without running
// internal/emitter again.
//
// Grounded on dekarrin/rezi, the same binary-serialization library the
// teacher uses to persist world save state (server/dao/sqlite/sessions.go);
// what's cached here is deliberately the emitter's flat output string
// rather than a raw internal/ruletree.Node tree, since a Node's Sym field
// carries interface values (symbol.TokenKind, symbol.Nonterminal) that have
// no stable binary encoding of their own — see DESIGN.md.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/dekarrin/rezi"
)

// Entry is one cached compilation result.
type Entry struct {
	Hash      string
	Source    string
	GeneratedGo string
}

// Key derives the cache file name for a grammar source and active
// condition set. Conditions are sorted so that two runs requesting the same
// conditions in a different order still hit the cache.
func Key(source string, conditions []string) string {
	sorted := append([]string(nil), conditions...)
	sort.Strings(sorted)

	h := sha256.New()
	h.Write([]byte(source))
	h.Write([]byte{0})
	h.Write([]byte(strings.Join(sorted, ",")))
	return hex.EncodeToString(h.Sum(nil))
}

// Load reads the cached generated Go source for key from dir, or returns
// ok == false if no cache entry exists yet.
func Load(dir, key string) (string, bool, error) {
	data, err := os.ReadFile(filepath.Join(dir, key+".rezi"))
	if err != nil {
		if os.IsNotExist(err) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("cache: read %s: %w", key, err)
	}

	var e Entry
	if _, err := rezi.DecBinary(data, &e); err != nil {
		return "", false, fmt.Errorf("cache: decode %s: %w", key, err)
	}
	return e.GeneratedGo, true, nil
}

// Store writes the generated Go source for key under dir, creating dir if
// it does not already exist.
func Store(dir, key, source, generated string) error {
	if err := os.MkdirAll(dir, 0770); err != nil {
		return fmt.Errorf("cache: create %s: %w", dir, err)
	}

	e := Entry{Hash: key, Source: source, GeneratedGo: generated}
	data := rezi.EncBinary(e)

	path := filepath.Join(dir, key+".rezi")
	if err := os.WriteFile(path, data, 0660); err != nil {
		return fmt.Errorf("cache: write %s: %w", path, err)
	}
	return nil
}
