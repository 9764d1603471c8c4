package fixes

// Extractor pulls candidate field values for a property out of its
// supporting document. Implementations return column name to raw string
// value; fields the document does not cover are simply absent from the map.
type Extractor interface {
	Extract(pdfPath string, missingFields []string) (map[string]string, error)
}

// StubExtractor is the placeholder used until a real document parser is
// wired in. It reads nothing and proposes nothing.
type StubExtractor struct{}

func (StubExtractor) Extract(pdfPath string, missingFields []string) (map[string]string, error) {
	return map[string]string{}, nil
}
