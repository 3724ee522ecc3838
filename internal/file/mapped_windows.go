//go:build windows

package file

import (
	"os"

	"github.com/streampager/streampager/internal/pagererr"
)

// OpenMapped reads path into memory and indexes its lines in one pass.
// Windows has no mmap equivalent in the standard library without cgo, so
// this variant falls back to a plain read; the file is still presented
// through the same read-only, fully-indexed-at-open MappedFile contract.
func OpenMapped(id int, path string) (*MappedFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, pagererr.New(pagererr.KindOpen, "open", err)
	}
	return newMappedFile(id, path, nil, decodeIfUTF16(data)), nil
}

func (f *MappedFile) Close() {}
