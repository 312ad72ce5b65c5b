// Command endpointd provisions a managed model-serving endpoint and answers
// queries against it.
package main

import (
	"os"

	"github.com/rs/zerolog/log"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		log.Error().Err(err).Msg("endpointd failed")
		os.Exit(1)
	}
}
