// Package main is the entry point for the hoopstats CLI, which aggregates
// amateur basketball box score sheets into per-team leaderboards.
package main

import "github.com/pable/hoopstats/cmd"

func main() {
	cmd.Execute()
}
