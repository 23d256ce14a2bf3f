package zifui

import (
	"os"
	"path/filepath"
)

// fileStorage implements zmachine.Storage by writing/reading save files
// relative to the directory the story file itself lives in, so "zif run
// stories/zork1.z3" and a later restore agree on where game.sav lives
// without any extra configuration.
type fileStorage struct {
	dir string
}

func newFileStorage(romPath string) fileStorage {
	dir := filepath.Dir(romPath)
	if dir == "" {
		dir = "."
	}
	return fileStorage{dir: dir}
}

func (s fileStorage) WriteSave(name string, data []byte) error {
	return os.WriteFile(filepath.Join(s.dir, name), data, 0644)
}

func (s fileStorage) ReadSave(name string) ([]byte, error) {
	return os.ReadFile(filepath.Join(s.dir, name))
}
