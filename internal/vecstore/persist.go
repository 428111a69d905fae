package vecstore

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
)

// On-disk layout under the store directory:
//
//	vectors-<build>.bin   magic, dimension, count, then count*dimension float32 LE
//	meta-<build>.jsonl    one IndexEntry JSON record per line, ordinal order
//	manifest.json         build id, build time, counts, payload file names
//
// The payload files carry the build id in their names and the manifest rename
// is the single commit point: a crash mid-save leaves uncommitted payloads
// behind, never a manifest pointing at a desynchronized pair. Stale payloads
// are swept on the next successful save.
const (
	manifestFile  = "manifest.json"
	vectorsPrefix = "vectors-"
	metaPrefix    = "meta-"
)

var vectorsMagic = [4]byte{'L', 'F', 'V', '1'}

type manifest struct {
	BuildID   string    `json:"build_id"`
	BuiltAt   time.Time `json:"built_at"`
	Entries   int       `json:"entries"`
	Dimension int       `json:"dimension"`
	Vectors   string    `json:"vectors_file"`
	Meta      string    `json:"meta_file"`
}

func loadFiles(dir string) ([]IndexEntry, [][]float32, manifest, error) {
	var man manifest

	data, err := os.ReadFile(filepath.Join(dir, manifestFile))
	if errors.Is(err, os.ErrNotExist) {
		// No committed build. Leftover payloads from an interrupted save
		// carry no metadata pairing, so an empty store is the right answer.
		return nil, nil, man, nil
	}
	if err != nil {
		return nil, nil, man, err
	}
	if err := json.Unmarshal(data, &man); err != nil {
		return nil, nil, man, fmt.Errorf("%w: %v", ErrInconsistent, err)
	}
	if man.Vectors == "" || man.Meta == "" {
		return nil, nil, man, fmt.Errorf("%w: manifest names no payload files", ErrInconsistent)
	}

	vectors, err := readVectors(filepath.Join(dir, man.Vectors))
	if err != nil {
		return nil, nil, man, fmt.Errorf("%w: %v", ErrInconsistent, err)
	}
	entries, err := readMeta(filepath.Join(dir, man.Meta))
	if err != nil {
		return nil, nil, man, fmt.Errorf("%w: %v", ErrInconsistent, err)
	}

	if len(vectors) != len(entries) || len(entries) != man.Entries {
		return nil, nil, man, fmt.Errorf("%w: %d vectors, %d metadata records, manifest says %d",
			ErrInconsistent, len(vectors), len(entries), man.Entries)
	}
	for i := range entries {
		if entries[i].ID != i {
			return nil, nil, man, fmt.Errorf("%w: record %d carries ordinal %d", ErrInconsistent, i, entries[i].ID)
		}
	}
	return entries, vectors, man, nil
}

func saveFiles(dir string, entries []IndexEntry, vectors [][]float32, man manifest) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create store dir: %w", err)
	}

	man.Vectors = vectorsPrefix + man.BuildID + ".bin"
	man.Meta = metaPrefix + man.BuildID + ".jsonl"

	if err := writeVectors(filepath.Join(dir, man.Vectors), vectors, man.Dimension); err != nil {
		return err
	}
	if err := writeMeta(filepath.Join(dir, man.Meta), entries); err != nil {
		return err
	}

	data, err := json.MarshalIndent(man, "", "  ")
	if err != nil {
		return err
	}
	// The commit point. Everything before this is invisible to readers.
	if err := atomicWrite(filepath.Join(dir, manifestFile), func(w io.Writer) error {
		_, err := w.Write(data)
		return err
	}); err != nil {
		return err
	}

	sweepStale(dir, man)
	return nil
}

// sweepStale deletes payload files from earlier builds. Failures are
// ignored; an orphaned payload only costs disk space.
func sweepStale(dir string, man manifest) {
	for _, pattern := range []string{vectorsPrefix + "*.bin", metaPrefix + "*.jsonl"} {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			continue
		}
		for _, m := range matches {
			if base := filepath.Base(m); base != man.Vectors && base != man.Meta {
				os.Remove(m)
			}
		}
	}
}

func readVectors(path string) ([][]float32, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	r := bufio.NewReader(f)

	var magic [4]byte
	if _, err := io.ReadFull(r, magic[:]); err != nil {
		return nil, fmt.Errorf("vector index header: %w", err)
	}
	if magic != vectorsMagic {
		return nil, errors.New("vector index: bad magic")
	}
	var dim, count uint32
	if err := binary.Read(r, binary.LittleEndian, &dim); err != nil {
		return nil, err
	}
	if err := binary.Read(r, binary.LittleEndian, &count); err != nil {
		return nil, err
	}

	vectors := make([][]float32, count)
	for i := range vectors {
		vec := make([]float32, dim)
		if err := binary.Read(r, binary.LittleEndian, &vec); err != nil {
			return nil, fmt.Errorf("vector %d: %w", i, err)
		}
		vectors[i] = vec
	}
	return vectors, nil
}

func writeVectors(path string, vectors [][]float32, dim int) error {
	return atomicWrite(path, func(w io.Writer) error {
		if _, err := w.Write(vectorsMagic[:]); err != nil {
			return err
		}
		if err := binary.Write(w, binary.LittleEndian, uint32(dim)); err != nil {
			return err
		}
		if err := binary.Write(w, binary.LittleEndian, uint32(len(vectors))); err != nil {
			return err
		}
		for _, vec := range vectors {
			if err := binary.Write(w, binary.LittleEndian, vec); err != nil {
				return err
			}
		}
		return nil
	})
}

func readMeta(path string) ([]IndexEntry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var entries []IndexEntry
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for sc.Scan() {
		line := sc.Bytes()
		if len(line) == 0 {
			continue
		}
		var e IndexEntry
		if err := json.Unmarshal(line, &e); err != nil {
			return nil, fmt.Errorf("metadata record %d: %w", len(entries), err)
		}
		entries = append(entries, e)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}

func writeMeta(path string, entries []IndexEntry) error {
	return atomicWrite(path, func(w io.Writer) error {
		enc := json.NewEncoder(w)
		for i := range entries {
			if err := enc.Encode(&entries[i]); err != nil {
				return err
			}
		}
		return nil
	})
}

// atomicWrite writes to a temp file in the same directory and renames it
// into place, so readers never observe a partially written file.
func atomicWrite(path string, fill func(io.Writer) error) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	w := bufio.NewWriter(tmp)
	if err := fill(w); err != nil {
		tmp.Close()
		return err
	}
	if err := w.Flush(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
