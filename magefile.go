//go:build mage

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const binary = "cardcreator"

// Default target to run when none is specified
var Default = Build

// Build compiles the cardcreator binary
func Build() error {
	fmt.Println("Building", binary)
	return sh.RunV("go", "build", "-o", binary, "./cmd/cardcreator")
}

// Test runs all tests
func Test() error {
	return sh.RunV("go", "test", "./...")
}

// Vet runs go vet
func Vet() error {
	return sh.RunV("go", "vet", "./...")
}

// Install installs the binary to $GOPATH/bin
func Install() error {
	mg.Deps(Test)
	return sh.RunV("go", "install", "./cmd/cardcreator")
}

// Dict downloads the CC-CEDICT dictionary into the data directory
func Dict() error {
	dataDir := os.Getenv("CARDCREATOR_PATHS_DATA")
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return err
		}
		dataDir = filepath.Join(home, ".local", "share", binary)
	}
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return err
	}

	archive := filepath.Join(dataDir, "cedict_1_0_ts_utf-8_mdbg.txt.gz")
	if err := sh.RunV("curl", "-fsSL", "-o", archive,
		"https://www.mdbg.net/chinese/export/cedict/cedict_1_0_ts_utf-8_mdbg.txt.gz"); err != nil {
		return err
	}
	return sh.RunV("sh", "-c", fmt.Sprintf("gunzip -c %q > %q", archive, filepath.Join(dataDir, "cedict_ts.u8")))
}

// Clean removes build artifacts
func Clean() error {
	return sh.Rm(binary)
}
