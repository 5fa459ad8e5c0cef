// Command relay runs the JSON-RPC gateway: it wires the mirror and
// consensus collaborator clients, the cache and rate-limit substrates,
// the eth/debug services, and the dispatch registry into one process,
// then serves JSON-RPC over HTTP and WebSocket until interrupted.
//
// Grounded on the teacher's cmd/evmd/main.go + cmd/evmd/cmd/root.go shape
// (spf13/cobra root command, graceful shutdown via an errgroup bound to
// os/signal.NotifyContext) scaled down to this gateway's much smaller
// process: no cosmos-sdk application lifecycle, no keyring, no genesis.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// NewRootCmd builds the relay command tree.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "relay",
		Short: "Ethereum-compatible JSON-RPC gateway",
	}
	root.AddCommand(newStartCmd())
	return root
}
