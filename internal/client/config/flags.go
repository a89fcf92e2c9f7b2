package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/clinicauth/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   address and port of the provider server
//	-p string   provider mode: grpc or memory
//	-b string   document backend: grpc, datastore or s3
//	-f string   local database path
//	-s string   session storage: sqlite or file
//	-i int      online check interval in seconds
//	-v string   log level
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-p", "-b", "-f", "-s", "-i", "-v"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.ServerEndpointAddr, "a", cfg.ServerEndpointAddr, "address and port to access server")
	fs.StringVar(&cfg.ProviderMode, "p", cfg.ProviderMode, "provider mode (grpc|memory)")
	fs.StringVar(&cfg.DocumentBackend, "b", cfg.DocumentBackend, "document backend (grpc|datastore|s3)")
	fs.StringVar(&cfg.DatabasePath, "f", cfg.DatabasePath, "local database path")
	fs.StringVar(&cfg.SessionStorage, "s", cfg.SessionStorage, "session storage (sqlite|file)")
	onlineCheckInterval := fs.Int("i", int(cfg.OnlineCheckInterval.Seconds()), "online check interval (in seconds)")
	fs.StringVar(&cfg.LogLevel, "v", cfg.LogLevel, "log level")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.OnlineCheckInterval = time.Duration(*onlineCheckInterval) * time.Second
}
