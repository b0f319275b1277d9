//go:build !unix

package workspace

// DiskFree is unsupported on this platform and reports zero free bytes.
func DiskFree(path string) (uint64, error) {
	return 0, nil
}
