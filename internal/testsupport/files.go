package testsupport

import (
	"encoding/csv"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"testing"
)

// WriteFile fills the target path with the requested number of bytes using a
// simple repeating pattern. A size <= 0 writes a single byte.
func WriteFile(t testing.TB, path string, size int64) {
	t.Helper()

	if size <= 0 {
		size = 1
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()

	const chunkSize = 32 * 1024
	buf := make([]byte, chunkSize)
	for i := range buf {
		buf[i] = 0x42
	}

	remaining := size
	for remaining > 0 {
		toWrite := int64(chunkSize)
		if remaining < toWrite {
			toWrite = remaining
		}
		if _, err := f.Write(buf[:toWrite]); err != nil {
			t.Fatalf("write %s: %v", path, err)
		}
		remaining -= toWrite
	}
}

// WriteAudioSplit creates root/split with one placeholder audio file per
// entry and a metadata.csv mapping file names to transcriptions. Files are
// written in sorted name order.
func WriteAudioSplit(t testing.TB, root, split string, transcriptions map[string]string) {
	t.Helper()

	dir := filepath.Join(root, split)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", dir, err)
	}
	f, err := os.Create(filepath.Join(dir, "metadata.csv"))
	if err != nil {
		t.Fatalf("create metadata: %v", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"file_name", "transcription"}); err != nil {
		t.Fatalf("write metadata header: %v", err)
	}
	for _, name := range slices.Sorted(maps.Keys(transcriptions)) {
		WriteFile(t, filepath.Join(dir, name), 64)
		if err := w.Write([]string{name, transcriptions[name]}); err != nil {
			t.Fatalf("write metadata row: %v", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		t.Fatalf("flush metadata: %v", err)
	}
}
