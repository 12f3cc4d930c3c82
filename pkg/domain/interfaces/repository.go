package interfaces

// Repository defines the interface for the host directory and run history persistence
type Repository interface {
	Directory() DirectoryRepository
	DirectoryWriter() DirectoryWriter
	RunHistory() RunHistoryRepository

	Close() error
}
