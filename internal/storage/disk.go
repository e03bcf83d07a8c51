package storage

import "os"

// DiskUsageBytes returns the size of the database file at path, plus its
// WAL sidecar if present. Missing files count as zero.
func DiskUsageBytes(path string) int64 {
	var total int64
	for _, p := range []string{path, path + "-wal", path + "-shm"} {
		if info, err := os.Stat(p); err == nil {
			total += info.Size()
		}
	}
	return total
}
