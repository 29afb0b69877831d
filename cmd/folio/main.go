// Command folio serves, builds, and scaffolds a folio site.
package main

import "os"

// version is set at build time via ldflags.
var version = "dev"

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
