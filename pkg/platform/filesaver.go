package platform

import (
	"os"
	"path/filepath"
)

// DirSaver writes export artifacts into a fixed directory.
type DirSaver struct {
	Dir string
}

func (s DirSaver) Save(name string, data []byte) error {
	if err := os.MkdirAll(s.Dir, 0755); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(s.Dir, name), data, 0644)
}
