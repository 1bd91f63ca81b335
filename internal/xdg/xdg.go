// ABOUTME: XDG Base Directory support for termchat config, theme and log paths
// ABOUTME: Resolves app directories with HOME fallback and expands ~ / $XDG_* prefixes

package xdg

import (
	"os"
	"path/filepath"
	"strings"

	chaterrors "github.com/harper/termchat/internal/errors"
)

// AppName is the directory name used under every XDG base directory.
const AppName = "termchat"

type baseDir struct {
	env      string
	fallback []string
}

var (
	configBase = baseDir{env: "XDG_CONFIG_HOME", fallback: []string{".config"}}
	dataBase   = baseDir{env: "XDG_DATA_HOME", fallback: []string{".local", "share"}}
	cacheBase  = baseDir{env: "XDG_CACHE_HOME", fallback: []string{".cache"}}
)

func (b baseDir) root() string {
	if dir := os.Getenv(b.env); dir != "" {
		return dir
	}
	return filepath.Join(append([]string{getHome()}, b.fallback...)...)
}

// ConfigHome returns ~/.config/termchat or respects XDG_CONFIG_HOME.
func ConfigHome() string {
	return filepath.Join(configBase.root(), AppName)
}

// DataHome returns ~/.local/share/termchat or respects XDG_DATA_HOME.
func DataHome() string {
	return filepath.Join(dataBase.root(), AppName)
}

// CacheHome returns ~/.cache/termchat or respects XDG_CACHE_HOME.
func CacheHome() string {
	return filepath.Join(cacheBase.root(), AppName)
}

// ExpandPath expands a leading ~/ or $XDG_* variable in config paths.
// $XDG_* expands to the generic base directory, not the app directory.
func ExpandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(getHome(), path[2:])
	}

	for _, b := range []baseDir{dataBase, configBase, cacheBase} {
		prefix := "$" + b.env
		if strings.HasPrefix(path, prefix) {
			return strings.Replace(path, prefix, b.root(), 1)
		}
	}

	return path
}

// EnsureParent creates the directory that will hold path.
func EnsureParent(variable, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return chaterrors.NewXDGPathError(variable, dir, err)
	}
	return nil
}

// getHome returns HOME, falling back to the working directory.
func getHome() string {
	if home := os.Getenv("HOME"); home != "" {
		return home
	}

	if cwd, err := os.Getwd(); err == nil {
		return cwd
	}

	return "."
}
