// Package main provides the facets CLI.
package main

import "github.com/mesh-intelligence/facets/internal/cli"

func main() {
	cli.Execute()
}
