package model

type StorageBackend string

const (
	// In-process
	StorageBackendMemory StorageBackend = "memory"
	StorageBackendLocal  StorageBackend = "local"

	// Distributed file systems
	StorageBackendHDFS StorageBackend = "hdfs"

	// Object storage
	StorageBackendS3    StorageBackend = "s3"
	StorageBackendMinIO StorageBackend = "minio"
	StorageBackendAzure StorageBackend = "azure"
	StorageBackendOSS   StorageBackend = "oss"
	StorageBackendCOS   StorageBackend = "cos"
)

// IsValidStorageBackend checks if a backend name is known
func IsValidStorageBackend(backend string) bool {
	switch StorageBackend(backend) {
	case StorageBackendMemory, StorageBackendLocal, StorageBackendHDFS,
		StorageBackendS3, StorageBackendMinIO, StorageBackendAzure,
		StorageBackendOSS, StorageBackendCOS:
		return true
	default:
		return false
	}
}

// GetStorageCategory returns the category of a storage backend
func GetStorageCategory(backend StorageBackend) string {
	switch backend {
	case StorageBackendS3, StorageBackendMinIO, StorageBackendAzure, StorageBackendOSS, StorageBackendCOS:
		return "object_storage"
	case StorageBackendHDFS:
		return "filesystems"
	default:
		return "local"
	}
}

// HasAtomicRename reports whether a backend can replace a file by renaming
// a temporary one. Object stores replace whole objects on put instead.
func HasAtomicRename(backend StorageBackend) bool {
	switch backend {
	case StorageBackendLocal, StorageBackendHDFS:
		return true
	default:
		return false
	}
}
