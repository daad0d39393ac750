package domain

import "path/filepath"

const (
	// CogniDirName is the name of the internal working directory.
	CogniDirName = ".cogni"

	// CacheDirName is the name of the file storage directory.
	CacheDirName = "cache"

	// ConfigFileName is the name of the definition file.
	ConfigFileName = "cogni.yaml"

	// DirPerm is the default permission for directories (rwxr-x---).
	DirPerm = 0o750

	// FilePerm is the default permission for files (rw-r--r--).
	FilePerm = 0o644
)

// DefaultStorePath returns the default directory of the file storage backend.
// It joins .cogni and cache.
func DefaultStorePath() string {
	return filepath.Join(CogniDirName, CacheDirName)
}
