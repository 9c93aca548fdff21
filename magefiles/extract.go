//go:build mage

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// idsFile is the default document list for the Extract target.
const idsFile = "ids.txt"

// Extract builds the CLI and renders every document listed in ids.txt
// into output/.
func Extract() error {
	mg.Deps(Init, Build)
	if _, err := os.Stat(idsFile); err != nil {
		return fmt.Errorf("%s: %w (one document ID per line)", idsFile, err)
	}
	return sh.RunV(filepath.Join(binDir, binName), "extract", "--file", idsFile, "--output-dir", "output")
}

// Serve builds the CLI and serves output/ and the local image store.
func Serve() error {
	mg.Deps(Init, Build)
	return sh.RunWith(map[string]string{"OUTPUT_DIR": "output"},
		filepath.Join(binDir, binName), "serve")
}
