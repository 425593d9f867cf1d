// Command gns-core is an operational smoke-test surface around the
// library: generate and inspect identities, seal/open envelopes,
// create/verify breadcrumbs, and dial a relay from the command line.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "gns-core",
	Short: "gns-core CLI - identity, envelope, breadcrumb, and relay operations",
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true
}
