package prefabs

import (
	"embed"
	"errors"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
)

//go:embed *.yaml scripts/*.tengo
var embedded embed.FS

// overlay reads a file from the prefab tree on disk when one exists, so edits
// take effect without a rebuild, and from the compiled-in copy otherwise.
type overlay struct {
	dir  string
	base fs.ReadFileFS
}

var files = overlay{dir: "prefabs", base: embedded}

func (o overlay) ReadFile(name string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(o.dir, filepath.FromSlash(name)))
	if err == nil {
		return data, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}
	return o.base.ReadFile(name)
}

// Load reads a spec file such as "tiles.yaml".
func Load(name string) ([]byte, error) {
	return files.ReadFile(specPath(name))
}

// LoadScript reads a tengo script by bare name ("wander") or by path.
func LoadScript(name string) ([]byte, error) {
	return files.ReadFile(scriptPath(name))
}

func specPath(name string) string {
	if name == "" {
		return ""
	}
	return strings.TrimPrefix(path.Clean(filepath.ToSlash(name)), "prefabs/")
}

func scriptPath(name string) string {
	s := strings.TrimPrefix(specPath(name), "scripts/")
	if path.Ext(s) != ".tengo" {
		s += ".tengo"
	}
	return "scripts/" + s
}
