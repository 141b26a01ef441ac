package services

import "errors"

var (
	// ErrUnsupportedFormat is returned for uploads that are not PDF documents.
	ErrUnsupportedFormat = errors.New("unsupported file format")
	// ErrExtraction is returned when no text could be read from a document.
	ErrExtraction  = errors.New("text extraction failed")
	ErrTranslation = errors.New("translation failed")
)
