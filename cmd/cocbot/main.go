// Package main is the entry point for the cocbot CLI.
package main

import "cocbot-go/presentation/cli"

// version is set at build time via ldflags:
//
//	go build -ldflags "-X main.version=1.0.0" ./cmd/cocbot
var version = "dev"

func main() {
	cli.Execute(version)
}
