package shared

import "io/fs"

// FileSystem exposes the read-only filesystem operations repository discovery needs.
type FileSystem interface {
	Abs(path string) (string, error)
	ReadDir(path string) ([]fs.DirEntry, error)
	Stat(path string) (fs.FileInfo, error)
}
