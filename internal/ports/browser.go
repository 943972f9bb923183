package ports

// URLOpener defines the interface for showing a document in a web browser
type URLOpener interface {
	// OpenDocument opens the published page of a document
	OpenDocument(docPath string) error

	// DocumentURL returns the published URL of a document
	DocumentURL(docPath string) (string, error)
}
