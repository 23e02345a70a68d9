//go:build mage
// +build mage

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

var (
	name = "eventfmt"
)

func Linux() error {
	return build("linux", "amd64", name)
}

func Windows() error {
	return build("windows", "amd64", name+".exe")
}

func Darwin() error {
	return build("darwin", "arm64", name+"-darwin")
}

func Test() error {
	return sh.RunV(mg.GoCmd(), "test", "./...")
}

// Check the formatter definitions in the given directory with a
// freshly built binary.
func Verify(definitions string) error {
	mg.Deps(Linux)

	return sh.RunV(filepath.Join("output", name), "verify", definitions)
}

func Clean() error {
	return sh.Rm("output")
}

func build(goos, goarch, output string) error {
	if err := os.Mkdir("output", 0700); err != nil && !os.IsExist(err) {
		return fmt.Errorf("failed to create output: %v", err)
	}

	env := map[string]string{
		"GOOS":        goos,
		"GOARCH":      goarch,
		"CGO_ENABLED": "0",
	}

	return sh.RunWith(
		env,
		mg.GoCmd(), "build",
		"-o", filepath.Join("output", output),
		"-ldflags=-s -w "+flags(),
		"./bin/")
}

func flags() string {
	timestamp := time.Now().Format(time.RFC3339)
	return fmt.Sprintf(`-X "www.velocidex.com/golang/eventfmt/constants.BUILD_TIME=%s" -X "www.velocidex.com/golang/eventfmt/constants.COMMIT_HASH=%s"`, timestamp, hash())
}

// hash returns the git hash for the current repo or "" if none.
func hash() string {
	hash, _ := sh.Output("git", "rev-parse", "--short", "HEAD")
	return hash
}
