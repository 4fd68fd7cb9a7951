package storage

import (
	"io/fs"
	"os"
	"path/filepath"

	"github.com/bytedance/sonic"
	"github.com/cockroachdb/errors"

	"github.com/pable/hoopstats/internal/model"
)

// ErrArtifactNotFound is returned when no artifact exists at the path.
var ErrArtifactNotFound = errors.New("artifact not found")

// SaveArtifact writes a as indented JSON with sorted keys. The file is
// replaced atomically so readers never observe a partial artifact.
func SaveArtifact(path string, a *model.Artifact) error {
	data, err := sonic.ConfigStd.MarshalIndent(a, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encode artifact")
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.Wrapf(err, "create %s", dir)
		}
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".leaders-*.json")
	if err != nil {
		return errors.Wrap(err, "create temp artifact")
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(append(data, '\n')); err != nil {
		tmp.Close()
		return errors.Wrap(err, "write artifact")
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, "close artifact")
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return errors.Wrap(err, "chmod artifact")
	}
	return errors.Wrapf(os.Rename(tmp.Name(), path), "rename artifact to %s", path)
}

// LoadArtifact reads and decodes the artifact at path.
func LoadArtifact(path string) (*model.Artifact, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, errors.Wrapf(ErrArtifactNotFound, "%s", path)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", path)
	}
	var a model.Artifact
	if err := sonic.Unmarshal(data, &a); err != nil {
		return nil, errors.Wrapf(err, "decode %s", path)
	}
	return &a, nil
}

// RemoveArtifact deletes the artifact. A missing file is ErrArtifactNotFound.
func RemoveArtifact(path string) error {
	err := os.Remove(path)
	if errors.Is(err, fs.ErrNotExist) {
		return errors.Wrapf(ErrArtifactNotFound, "%s", path)
	}
	return err
}
