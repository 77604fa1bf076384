// Copyright 2026 The Mist Authors
// SPDX-License-Identifier: Apache-2.0

package supervisor

import (
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/libretro/mist/lib/protocol"
)

// command builds the worker invocation: the secret as the only
// argument, the worker directory as working directory, and that
// directory appended to the library search path.
func command(options Options) *exec.Cmd {
	dir := options.Dir
	if dir == "" {
		dir = filepath.Dir(options.Path)
	}
	base := options.Env
	if base == nil {
		base = os.Environ()
	}

	cmd := exec.Command(options.Path, protocol.Secret)
	cmd.Dir = dir
	cmd.Env = withLibraryPath(base, runtime.GOOS, dir)
	return cmd
}

// libraryPathVariable names the variable the dynamic loader searches
// on goos.
func libraryPathVariable(goos string) string {
	switch goos {
	case "windows":
		return "PATH"
	case "darwin":
		return "DYLD_LIBRARY_PATH"
	default:
		return "LD_LIBRARY_PATH"
	}
}

// withLibraryPath returns a copy of env with dir appended to goos's
// library search variable, creating the variable when absent.
func withLibraryPath(env []string, goos, dir string) []string {
	name := libraryPathVariable(goos)
	separator := ":"
	if goos == "windows" {
		separator = ";"
	}
	matches := func(key string) bool {
		if goos == "windows" {
			return strings.EqualFold(key, name)
		}
		return key == name
	}

	result := make([]string, 0, len(env)+1)
	found := false
	for _, entry := range env {
		key, value, ok := strings.Cut(entry, "=")
		if ok && matches(key) && !found {
			found = true
			if value == "" {
				entry = key + "=" + dir
			} else {
				entry = key + "=" + value + separator + dir
			}
		}
		result = append(result, entry)
	}
	if !found {
		result = append(result, name+"="+dir)
	}
	return result
}
