//go:build !windows

package file

import (
	"os"
	"syscall"

	"github.com/streampager/streampager/internal/pagererr"
)

// OpenMapped memory-maps path read-only and indexes its lines in one
// pass. UTF-16 content (BOM-detected, as the teacher's
// internal/fs/text.go does) is transcoded to UTF-8 up front so the rest
// of the pipeline only ever sees UTF-8.
func OpenMapped(id int, path string) (*MappedFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, pagererr.New(pagererr.KindOpen, "open", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, pagererr.New(pagererr.KindOpen, "stat", err)
	}
	if info.Size() == 0 {
		return newMappedFile(id, path, nil, nil), nil
	}

	raw, err := syscall.Mmap(int(f.Fd()), 0, int(info.Size()), syscall.PROT_READ, syscall.MAP_SHARED)
	if err != nil {
		return nil, pagererr.New(pagererr.KindOpen, "mmap", err)
	}
	return newMappedFile(id, path, raw, decodeIfUTF16(raw)), nil
}

func (f *MappedFile) Close() {
	if f.raw != nil {
		_ = syscall.Munmap(f.raw)
		f.raw = nil
	}
}
