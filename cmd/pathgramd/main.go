/*
Pathgramd starts the pathgram grammar-compilation HTTP service.

It loads a TOML configuration file, opens the session diagnostics store, and
serves httpapi's router until interrupted.

Usage:

	pathgramd [flags]

The flags are:

	-v, --version
		Give the current version of pathgram and then exit.

	-c, --config FILE
		The TOML configuration file to load. Defaults to "pathgram.toml" in
		the current working directory.
*/
package main

import (
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/spf13/pflag"

	"github.com/holloway-dev/pathgram/httpapi"
	"github.com/holloway-dev/pathgram/internal/config"
	"github.com/holloway-dev/pathgram/internal/sessionlog"
	"github.com/holloway-dev/pathgram/internal/version"
)

var (
	flagVersion = pflag.BoolP("version", "v", false, "Gives the version info")
	configFile  = pflag.StringP("config", "c", "pathgram.toml", "The TOML configuration file to load")
)

func main() {
	pflag.Parse()

	if *flagVersion {
		fmt.Printf("%s\n", version.Current)
		return
	}

	cfg, err := config.Load(*configFile)
	if err != nil {
		log.Fatalf("FATAL could not load config: %s", err.Error())
	}

	if cfg.Server.JWTSecret == "" || cfg.Server.APISecret == "" {
		log.Fatalf("FATAL server.jwt_secret and server.api_secret must both be set in %s", *configFile)
	}

	if err := os.MkdirAll(cfg.Server.SessionLogDir, 0770); err != nil {
		log.Fatalf("FATAL could not create session log dir: %s", err.Error())
	}
	if err := cfg.EnsureCacheDir(); err != nil {
		log.Fatalf("FATAL could not create cache dir: %s", err.Error())
	}

	sessions, err := sessionlog.Open(cfg.Server.SessionLogDir)
	if err != nil {
		log.Fatalf("FATAL could not open session log: %s", err.Error())
	}
	defer sessions.Close()

	api, err := httpapi.NewAPI(cfg.Server.JWTSecret, cfg.Server.APISecret, sessions)
	if err != nil {
		log.Fatalf("FATAL could not initialize API: %s", err.Error())
	}
	api.CacheDir = cfg.Session.CacheDir
	api.Session = cfg.Session

	log.Printf("INFO  Starting pathgram server %s on %s...", version.Current, cfg.Server.ListenAddress)
	if err := http.ListenAndServe(cfg.Server.ListenAddress, api.Router()); err != nil {
		log.Fatalf("FATAL server exited: %s", err.Error())
	}
}
