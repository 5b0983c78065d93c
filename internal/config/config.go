// Package config loads this module's session and server configuration from
// a TOML file, the same way the teacher's server/config.go builds its
// Database/Config structs straight out of a decoded file rather than a
// hand-rolled flag-by-flag parser.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Session carries the settings a single internal/driver.Driver run needs
// that spec.md §2's core never decides for itself: which Conditions are
// active, whether the grammar is ambiguous, which nonterminals are
// documented as non-left-recursive, and where emitted Go source may be
// cached.
type Session struct {
	// Conditions lists the named Conditions active for this run (spec.md
	// §3), e.g. ["lexical", "syntactic"] for the meta-grammar bootstrap.
	Conditions []string `toml:"conditions"`

	// Ambiguous toggles every Optional/Iteration/Selection in the loaded
	// grammar into ambiguous (union-preserving) mode.
	Ambiguous bool `toml:"ambiguous"`

	// NonLeftRecursive names the nonterminals the grammar author asserts
	// are not left-recursive, letting internal/driver take the cheap
	// reentry-guard path instead of running the fixpoint loop for them.
	NonLeftRecursive []string `toml:"non_left_recursive"`

	// CacheDir is where internal/cache stores the Go source emitted for a
	// compiled grammar, keyed by a hash of the compile request and its
	// conditions, so a resubmitted grammar skips internal/emitter.
	CacheDir string `toml:"cache_dir"`
}

// Server carries httpapi's startup configuration: the HTTP bind address,
// the JWT signing secret, and the API secret gating write endpoints (held
// in the clear here; httpapi.NewAPI hashes it with bcrypt at startup),
// mirroring the teacher's server.Config (itself loaded via this
// same toml.DecodeFile call in cmd/tqi/main.go).
type Server struct {
	ListenAddress string `toml:"listen_address"`
	JWTSecret     string `toml:"jwt_secret"`
	APISecret     string `toml:"api_secret"`
	SessionLogDir string `toml:"session_log_dir"`
}

// File is the top-level shape of a pathgram TOML configuration file.
type File struct {
	Session Session `toml:"session"`
	Server  Server  `toml:"server"`
}

// Load decodes path into a File, applying defaults for any fields the file
// omits.
func Load(path string) (File, error) {
	var f File
	if _, err := toml.DecodeFile(path, &f); err != nil {
		return File{}, fmt.Errorf("config: decode %s: %w", path, err)
	}
	f.applyDefaults()
	return f, nil
}

func (f *File) applyDefaults() {
	if f.Session.CacheDir == "" {
		f.Session.CacheDir = ".pathgram-cache"
	}
	if f.Server.ListenAddress == "" {
		f.Server.ListenAddress = ":8080"
	}
	if f.Server.SessionLogDir == "" {
		f.Server.SessionLogDir = "."
	}
}

// EnsureCacheDir creates Session.CacheDir if it does not already exist.
func (f File) EnsureCacheDir() error {
	return os.MkdirAll(f.Session.CacheDir, 0770)
}
