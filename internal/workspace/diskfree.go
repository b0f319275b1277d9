//go:build unix

package workspace

import "golang.org/x/sys/unix"

// DiskFree returns the free bytes available on the filesystem holding path.
func DiskFree(path string) (uint64, error) {
	var stat unix.Statfs_t
	if err := unix.Statfs(path, &stat); err != nil {
		return 0, err
	}
	return stat.Bavail * uint64(stat.Bsize), nil
}
