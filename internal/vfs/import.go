package vfs

import (
	"archive/tar"
	"archive/zip"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/charlievieth/fastwalk"
	"github.com/klauspost/compress/gzip"
	"github.com/saintfish/chardet"
)

// maxImportEntry caps a single imported file; larger entries are skipped.
const maxImportEntry = 16 << 20

// ImportReport summarizes one import.
type ImportReport struct {
	Imported int
	Skipped  []string
	Charsets map[string]string // path → detected charset for non-UTF-8 text
}

// ImportDir walks a real directory and merges its files into the table under
// dest. Hidden directories (.git etc.) are skipped.
func (t *Table) ImportDir(dir, dest string) (*ImportReport, error) {
	report := newImportReport()
	batch := make(map[string]string)
	var mu sync.Mutex

	conf := fastwalk.Config{Follow: false}
	err := fastwalk.Walk(&conf, dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		name := d.Name()
		if d.IsDir() {
			if strings.HasPrefix(name, ".") && path != dir {
				return filepath.SkipDir
			}
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		mu.Lock()
		defer mu.Unlock()
		if len(data) > maxImportEntry {
			report.Skipped = append(report.Skipped, rel)
			return nil
		}
		key := joinDest(dest, filepath.ToSlash(rel))
		batch[key] = string(data)
		report.note(key, data)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", dir, err)
	}

	t.Merge(batch)
	report.Imported = len(batch)
	return report, nil
}

// ImportZip merges a zip archive into the table under dest.
func (t *Table) ImportZip(r io.ReaderAt, size int64, dest string) (*ImportReport, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("open zip: %w", err)
	}

	report := newImportReport()
	batch := make(map[string]string)
	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			continue
		}
		if f.UncompressedSize64 > maxImportEntry {
			report.Skipped = append(report.Skipped, f.Name)
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("open zip entry %s: %w", f.Name, err)
		}
		data, err := io.ReadAll(io.LimitReader(rc, maxImportEntry+1))
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("read zip entry %s: %w", f.Name, err)
		}
		key := joinDest(dest, f.Name)
		batch[key] = string(data)
		report.note(key, data)
	}

	t.Merge(batch)
	report.Imported = len(batch)
	return report, nil
}

// ImportTarGz merges a gzipped tarball into the table under dest.
func (t *Table) ImportTarGz(r io.Reader, dest string) (*ImportReport, error) {
	gz, err := gzip.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("open gzip: %w", err)
	}
	defer gz.Close()

	report := newImportReport()
	batch := make(map[string]string)
	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read tar: %w", err)
		}
		if hdr.Typeflag != tar.TypeReg {
			continue
		}
		if hdr.Size > maxImportEntry {
			report.Skipped = append(report.Skipped, hdr.Name)
			continue
		}
		data, err := io.ReadAll(io.LimitReader(tr, maxImportEntry+1))
		if err != nil {
			return nil, fmt.Errorf("read tar entry %s: %w", hdr.Name, err)
		}
		key := joinDest(dest, hdr.Name)
		batch[key] = string(data)
		report.note(key, data)
	}

	t.Merge(batch)
	report.Imported = len(batch)
	return report, nil
}

func newImportReport() *ImportReport {
	return &ImportReport{Charsets: make(map[string]string)}
}

// note records the detected charset for text entries that are not plain
// UTF-8/ASCII. Content is stored verbatim either way; the charset is only
// surfaced so callers can warn.
func (r *ImportReport) note(path string, data []byte) {
	if len(data) == 0 {
		return
	}
	res, err := chardet.NewTextDetector().DetectBest(data)
	if err != nil || res == nil {
		return
	}
	switch res.Charset {
	case "UTF-8", "ISO-8859-1":
		// common enough to stay quiet about
	default:
		r.Charsets[path] = res.Charset
	}
}

func joinDest(dest, rel string) string {
	dest = strings.TrimSuffix(dest, "/")
	return dest + "/" + strings.TrimPrefix(rel, "/")
}
