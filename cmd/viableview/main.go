// Package main provides the entry point for the ViableView registry crawler.
//
// ViableView extracts business records from a verification-gated registry
// search portal: it solves the access challenge, walks every result page,
// completes each record from its detail page, and writes the merged set as
// a JSON array.
//
// Usage:
//
//	viableview crawl --query llc --output output.json
//	viableview crawl --full-crawl
//	viableview proxy
//
// See --help for all available options.
package main

// main is the entry point for ViableView.
func main() {
	Execute()
}
