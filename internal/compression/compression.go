package compression

import (
	"errors"
	"sort"
	"sync"
)

var (
	ErrCompressorNotFound = errors.New("compressor not found")
	compressors           = make(map[string]Compressor)
	compressorsMu         sync.RWMutex
)

// Compressor transforms a whole container payload.
type Compressor interface {
	Compress(data []byte) ([]byte, error)
	Decompress(data []byte) ([]byte, error)
	Name() string
}

func RegisterCompressor(name string, c Compressor) {
	compressorsMu.Lock()
	defer compressorsMu.Unlock()
	compressors[name] = c
}

func GetCompressor(name string) (Compressor, error) {
	compressorsMu.RLock()
	defer compressorsMu.RUnlock()

	if c, exists := compressors[name]; exists {
		return c, nil
	}
	return nil, ErrCompressorNotFound
}

// Names returns the registered compressor names in sorted order.
func Names() []string {
	compressorsMu.RLock()
	defer compressorsMu.RUnlock()

	names := make([]string, 0, len(compressors))
	for name := range compressors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
