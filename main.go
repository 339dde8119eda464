// Package main implements deploy-lambda-kinesis, a planner that turns a
// declarative configuration into the ordered resource intents for a
// Kinesis-triggered Lambda function with AppConfig and Secrets Manager
// wiring. An external provisioning engine applies the emitted intents.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "deploy-lambda-kinesis: %v\n", err)
		os.Exit(1)
	}
}
