package vector

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"

	"github.com/hyperjump/kotae/internal/models"
)

// Save persists the snapshot to path as a binary file. The write goes to a
// temporary file in the same directory followed by a rename, so readers
// never observe a partial file. Format: dimensions (4), n (4), then per
// chunk: id, documentID, content as length-prefixed strings, chunkIndex (4),
// vector (dimensions*4 bytes). All integers little-endian.
func (s *Snapshot) Save(path string) error {
	if path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create snapshot dir: %w", err)
	}
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("create snapshot file: %w", err)
	}
	if err := s.write(f); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("close snapshot file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replace snapshot file: %w", err)
	}
	return nil
}

func (s *Snapshot) write(f *os.File) error {
	if err := binary.Write(f, binary.LittleEndian, uint32(s.dimensions)); err != nil {
		return fmt.Errorf("write dimensions: %w", err)
	}
	if err := binary.Write(f, binary.LittleEndian, uint32(len(s.chunks))); err != nil {
		return fmt.Errorf("write count: %w", err)
	}
	for i, chunk := range s.chunks {
		if err := writeString(f, chunk.ID); err != nil {
			return fmt.Errorf("write chunk id: %w", err)
		}
		if err := writeString(f, chunk.DocumentID); err != nil {
			return fmt.Errorf("write document id: %w", err)
		}
		if err := writeString(f, chunk.Content); err != nil {
			return fmt.Errorf("write content: %w", err)
		}
		if err := binary.Write(f, binary.LittleEndian, uint32(chunk.ChunkIndex)); err != nil {
			return fmt.Errorf("write chunk index: %w", err)
		}
		if _, err := f.Write(Float32SliceToBytes(s.vectors[i])); err != nil {
			return fmt.Errorf("write vector: %w", err)
		}
	}
	return nil
}

// LoadSnapshot reads a snapshot previously written by Save. A missing file
// returns os.ErrNotExist; a truncated or malformed file returns an error.
func LoadSnapshot(path string) (*Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var dim, n uint32
	if err := binary.Read(f, binary.LittleEndian, &dim); err != nil {
		return nil, fmt.Errorf("read dimensions: %w", err)
	}
	if dim == 0 {
		return nil, fmt.Errorf("snapshot has zero dimensions")
	}
	if err := binary.Read(f, binary.LittleEndian, &n); err != nil {
		return nil, fmt.Errorf("read count: %w", err)
	}
	s := &Snapshot{
		dimensions: int(dim),
		chunks:     make([]*models.DocumentChunk, 0, n),
		vectors:    make([][]float32, 0, n),
	}
	buf := make([]byte, int(dim)*4)
	for i := uint32(0); i < n; i++ {
		id, err := readString(f)
		if err != nil {
			return nil, fmt.Errorf("read chunk id: %w", err)
		}
		docID, err := readString(f)
		if err != nil {
			return nil, fmt.Errorf("read document id: %w", err)
		}
		content, err := readString(f)
		if err != nil {
			return nil, fmt.Errorf("read content: %w", err)
		}
		var chunkIndex uint32
		if err := binary.Read(f, binary.LittleEndian, &chunkIndex); err != nil {
			return nil, fmt.Errorf("read chunk index: %w", err)
		}
		if _, err := io.ReadFull(f, buf); err != nil {
			return nil, fmt.Errorf("read vector: %w", err)
		}
		vec := BytesToFloat32Slice(buf)
		s.chunks = append(s.chunks, &models.DocumentChunk{
			ID:         id,
			DocumentID: docID,
			Content:    content,
			ChunkIndex: int(chunkIndex),
			Embedding:  vec,
		})
		s.vectors = append(s.vectors, vec)
	}
	return s, nil
}

func writeString(f *os.File, s string) error {
	b := []byte(s)
	if err := binary.Write(f, binary.LittleEndian, uint32(len(b))); err != nil {
		return err
	}
	_, err := f.Write(b)
	return err
}

func readString(f *os.File) (string, error) {
	var n uint32
	if err := binary.Read(f, binary.LittleEndian, &n); err != nil {
		return "", err
	}
	b := make([]byte, n)
	if _, err := io.ReadFull(f, b); err != nil {
		return "", err
	}
	return string(b), nil
}

// Float32SliceToBytes encodes a float32 slice as little-endian bytes.
func Float32SliceToBytes(s []float32) []byte {
	const size = 4
	out := make([]byte, len(s)*size)
	for i, v := range s {
		binary.LittleEndian.PutUint32(out[i*size:(i+1)*size], math.Float32bits(v))
	}
	return out
}

// BytesToFloat32Slice decodes little-endian bytes into a float32 slice.
func BytesToFloat32Slice(b []byte) []float32 {
	const size = 4
	out := make([]float32, len(b)/size)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*size : (i+1)*size]))
	}
	return out
}
