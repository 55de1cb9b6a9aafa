package domain

// StorageStats aggregates the live collections of the storage manager.
type StorageStats struct {
	TotalDocuments int
	TotalChunks    int
	TotalSizeBytes int
}
