package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/pixelboard/internal/flagx"
)

// parseFlags populates selected server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   HTTP bind address (e.g., ":8080")
//	-d string   PostgreSQL DSN
//	-s string   JWT HMAC secret key
//	-k string   HackaTime base URL
//	-t int      upstream timeout, seconds
//	-z int      grid size (cells per side)
//	-r int      signup grant, seconds
//	-x int      placement cost, seconds
//	-w          allow overwriting occupied coordinates (last-writer-wins)
//	-i int      snapshot interval, minutes (0 disables)
//	-u string   S3 root user
//	-p string   S3 root password
//	-b string   S3 bucket name
//	-g string   S3 region
//	-e string   S3 base endpoint (e.g., "http://127.0.0.1:9000/")
//
// Notes:
//   - The function first filters os.Args to only the flags it recognizes using
//     flagx.FilterArgs, avoiding collisions with other components.
//   - Duration flags are accepted as integers and converted to time.Duration.
func parseFlags(config *Config) {
	// Filter args to include only the flags handled here.
	args := flagx.FilterArgs(os.Args[1:], []string{
		"-a", "-d", "-s", "-k", "-t", "-z", "-r", "-x", "-w", "-i",
		"-u", "-p", "-b", "-g", "-e",
	})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddr, "a", config.EndpointAddr, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")
	fs.StringVar(&config.HackatimeBaseURL, "k", config.HackatimeBaseURL, "coding-time API base URL")

	upstreamTimeout := fs.Int("t", int(config.UpstreamTimeout.Seconds()), "upstream timeout (in seconds)")
	fs.IntVar(&config.GridSize, "z", config.GridSize, "grid size (cells per side)")
	fs.Int64Var(&config.GrantSeconds, "r", config.GrantSeconds, "signup grant (in seconds)")
	fs.Int64Var(&config.PlacementCost, "x", config.PlacementCost, "placement cost (in seconds)")
	fs.BoolVar(&config.OverwriteAllowed, "w", config.OverwriteAllowed, "allow overwriting occupied coordinates")
	snapshotInterval := fs.Int("i", int(config.SnapshotInterval.Minutes()), "snapshot interval (in minutes, 0 disables)")

	fs.StringVar(&config.S3RootUser, "u", config.S3RootUser, "S3 root user")
	fs.StringVar(&config.S3RootPassword, "p", config.S3RootPassword, "S3 root password")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 root bucket")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 root region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.UpstreamTimeout = time.Duration(*upstreamTimeout) * time.Second
	config.SnapshotInterval = time.Duration(*snapshotInterval) * time.Minute
}
