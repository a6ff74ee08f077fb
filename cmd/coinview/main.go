// Command coinview validates blocks against a UTXO coin store, inspects and seeds the store, and
// serves the store's health and metrics.
//
// Usage:
//
//	coinview [--utxostore URL] [--datafolder DIR] [--network NAME] <command>
//
// Commands:
//   - validate: validates one block read from a file and, when valid, commits it to the store
//   - fetch: prints the unspent outputs of the given transaction ids
//   - seed: loads unspent outputs from a JSON file into the store
//   - serve: serves grpc_health_v1 and prometheus metrics until interrupted
//   - health: asks a running serve for its health over gRPC
//
// Settings are read from settings.conf, settings_local.conf and the environment. A .env file, when
// present, is loaded into the environment first.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
