package services

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"
)

// ArchiveEntry is one regular file inside a .tar.gz archive.
type ArchiveEntry struct {
	Path string
	Name string
	Size int64
}

// ArchiveReader inspects .tar.gz delivery archives without extracting
// them to the filesystem.
type ArchiveReader struct {
	path string
}

// NewArchiveReader creates a reader for the given archive path.
func NewArchiveReader(path string) (*ArchiveReader, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("archive not found: %w", err)
	}
	return &ArchiveReader{path: path}, nil
}

// walk streams every regular file in the archive to fn. Returning a
// non-nil error from fn stops the walk; errStopWalk stops it cleanly.
var errStopWalk = fmt.Errorf("stop walk")

func (r *ArchiveReader) walk(fn func(header *tar.Header, body io.Reader) error) error {
	f, err := os.Open(r.path)
	if err != nil {
		return fmt.Errorf("failed to open archive: %w", err)
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return fmt.Errorf("not a gzip archive: %w", err)
	}
	defer gz.Close()

	tr := tar.NewReader(gz)
	for {
		header, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read archive: %w", err)
		}
		if header.Typeflag != tar.TypeReg {
			continue
		}
		if err := fn(header, tr); err != nil {
			if err == errStopWalk {
				return nil
			}
			return err
		}
	}
}

// Files lists every regular file in the archive.
func (r *ArchiveReader) Files() ([]ArchiveEntry, error) {
	var entries []ArchiveEntry
	err := r.walk(func(header *tar.Header, _ io.Reader) error {
		entries = append(entries, newEntry(header))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// ReadFile returns the content of one member by its full path.
func (r *ArchiveReader) ReadFile(memberPath string) ([]byte, error) {
	var content []byte
	found := false
	err := r.walk(func(header *tar.Header, body io.Reader) error {
		if header.Name != memberPath {
			return nil
		}
		data, err := io.ReadAll(body)
		if err != nil {
			return fmt.Errorf("failed to read %q: %w", memberPath, err)
		}
		content = data
		found = true
		return errStopWalk
	})
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("file not found in archive: %s", memberPath)
	}
	return content, nil
}

// SearchPattern lists members whose full path matches the regex.
func (r *ArchiveReader) SearchPattern(pattern *regexp.Regexp) ([]ArchiveEntry, error) {
	var matches []ArchiveEntry
	err := r.walk(func(header *tar.Header, _ io.Reader) error {
		if pattern.MatchString(header.Name) {
			matches = append(matches, newEntry(header))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return matches, nil
}

// SearchExtension lists members carrying the extension (leading dot
// optional, case-insensitive).
func (r *ArchiveReader) SearchExtension(extension string) ([]ArchiveEntry, error) {
	if !strings.HasPrefix(extension, ".") {
		extension = "." + extension
	}
	var matches []ArchiveEntry
	err := r.walk(func(header *tar.Header, _ io.Reader) error {
		if strings.HasSuffix(strings.ToLower(header.Name), strings.ToLower(extension)) {
			matches = append(matches, newEntry(header))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return matches, nil
}

func newEntry(header *tar.Header) ArchiveEntry {
	name := header.Name
	if idx := strings.LastIndex(name, "/"); idx >= 0 {
		name = name[idx+1:]
	}
	return ArchiveEntry{Path: header.Name, Name: name, Size: header.Size}
}

// CompareArchivesByExtension verifies that the single file carrying the
// extension in each archive is byte-identical between source and
// target. Exactly one such file must exist on each side.
func CompareArchivesByExtension(sourcePath, targetPath, extension string) error {
	source, err := NewArchiveReader(sourcePath)
	if err != nil {
		return err
	}
	target, err := NewArchiveReader(targetPath)
	if err != nil {
		return err
	}

	sourceFile, err := singleFileByExtension(source, extension, "source")
	if err != nil {
		return err
	}
	targetFile, err := singleFileByExtension(target, extension, "target")
	if err != nil {
		return err
	}

	sourceContent, err := source.ReadFile(sourceFile.Path)
	if err != nil {
		return err
	}
	targetContent, err := target.ReadFile(targetFile.Path)
	if err != nil {
		return err
	}

	if !bytes.Equal(sourceContent, targetContent) {
		return fmt.Errorf("files differ: source %q (%d bytes) vs target %q (%d bytes)",
			sourceFile.Path, len(sourceContent), targetFile.Path, len(targetContent))
	}
	return nil
}

func singleFileByExtension(reader *ArchiveReader, extension, side string) (ArchiveEntry, error) {
	matches, err := reader.SearchExtension(extension)
	if err != nil {
		return ArchiveEntry{}, fmt.Errorf("failed to scan %s archive: %w", side, err)
	}
	if len(matches) == 0 {
		return ArchiveEntry{}, fmt.Errorf("no %q file found in %s archive", extension, side)
	}
	if len(matches) > 1 {
		paths := make([]string, len(matches))
		for i, m := range matches {
			paths[i] = m.Path
		}
		return ArchiveEntry{}, fmt.Errorf("multiple %q files found in %s archive: %s",
			extension, side, strings.Join(paths, ", "))
	}
	return matches[0], nil
}
