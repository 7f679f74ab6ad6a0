package fleurs

import (
	"archive/tar"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"

	"github.com/klauspost/compress/gzip"

	"asrprep/internal/services"
)

// extractArchive unpacks the regular files of a gzip-compressed tar stream
// into dir, flattening member paths to their base names. It returns the
// extracted files keyed by base name.
func extractArchive(r io.Reader, dir string) (map[string]string, error) {
	gz, err := gzip.NewReader(r)
	if err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "fleurs", "open archive", "", err)
	}
	defer gz.Close()

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create %s: %w", dir, err)
	}

	files := make(map[string]string)
	tr := tar.NewReader(gz)
	for {
		header, err := tr.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, services.Wrap(services.ErrExternalTool, "fleurs", "read archive", "", err)
		}
		if header.Typeflag != tar.TypeReg {
			continue
		}
		name := path.Base(header.Name)
		if name == "." || name == "/" || name == ".." {
			continue
		}
		target := filepath.Join(dir, name)
		if err := writeMember(target, tr); err != nil {
			return nil, err
		}
		files[name] = target
	}
	return files, nil
}

func writeMember(target string, r io.Reader) error {
	f, err := os.Create(target)
	if err != nil {
		return fmt.Errorf("create %s: %w", target, err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", target, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", target, err)
	}
	return nil
}
