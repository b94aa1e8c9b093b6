// Package web holds the dashboard page served by the monitor.
package web

import (
	"embed"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
)

// DevModeEnv names the variable that makes GetAssets serve the dashboard
// from the source tree, so that edits show up without rebuilding.
const DevModeEnv = "AHBLITE_MONITOR_DEV"

//go:embed dist/*
var staticAssets embed.FS

// GetAssets returns the dashboard files. They are embedded in the binary,
// unless development mode is on.
func GetAssets() http.FileSystem {
	if devMode() {
		dir := sourceDistDir()
		fmt.Fprintf(os.Stderr,
			"Monitor development mode, serving assets from %s\n", dir)

		return http.Dir(dir)
	}

	dist, err := fs.Sub(staticAssets, "dist")
	if err != nil {
		panic(err)
	}

	return http.FS(dist)
}

// sourceDistDir is the dist directory next to this file in the source tree.
func sourceDistDir() string {
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		panic("web: cannot locate the package source")
	}

	return filepath.Join(filepath.Dir(file), "dist")
}

func devMode() bool {
	value, ok := os.LookupEnv(DevModeEnv)
	if !ok {
		return false
	}

	on, err := strconv.ParseBool(strings.TrimSpace(value))

	return err == nil && on
}
