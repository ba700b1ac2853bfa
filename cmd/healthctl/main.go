// Command healthctl runs the chatbot matcher and the risk assessor against
// local files, and manages the FAQ table in Postgres.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
