// Package types defines the value model, selections, configuration and
// standard errors shared by the facets engine, its ingestion layer and CLI.
//
// A Value is text, a 64-bit integer or a fixed-point decimal. Decimals keep
// the number of fractional digits they were written with, so summing a
// price column never goes through floating point.
package types
