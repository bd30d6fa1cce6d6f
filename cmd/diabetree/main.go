// Package main is the single-binary entrypoint for Diabetree.
// Diabetree turns a stream of glucose readings into a growing tree —
// one binary, local storage, no accounts.
package main

import "github.com/diabetree-app/diabetree/internal/cli"

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	cli.Execute(version)
}
