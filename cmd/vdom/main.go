// Command vdom renders and previews vdom markup documents.
package main

import (
	"os"

	"github.com/go-drift/vdom/cmd/vdom/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
