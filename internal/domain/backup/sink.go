package backup

// Sink stores encoded backup blobs outside the database and reads them back.
// It decouples the interchange service from the concrete storage medium.
type Sink interface {
	// Write stores content under a suggested filename and returns an opaque
	// location handle for later read-back.
	Write(name string, content string) (location string, err error)
	// Read returns the blob previously stored at location.
	Read(location string) (content string, err error)
}
