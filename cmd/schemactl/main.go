// Command schemactl inspects remote protobuf descriptor sets and decodes
// payloads with them.
//
//	schemactl --url https://registry.internal/schemas/events list
//	schemactl --url https://registry.internal/schemas/events get com.acme.events.Outer
//	schemactl --url https://registry.internal/schemas/events decode com.acme.events.Outer payload.bin
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
