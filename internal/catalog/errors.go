package catalog

import "fmt"

const (
	catalogReadErrorTemplateConstant  = "unable to read catalog %s: %v"
	catalogParseErrorTemplateConstant = "unable to parse catalog %s: %v"
	catalogWriteErrorTemplateConstant = "unable to write catalog %s: %v"
)

// ErrorKind classifies catalog failures.
type ErrorKind string

// Supported catalog error kinds.
const (
	ErrorKindRead       ErrorKind = ErrorKind("read")
	ErrorKindParse      ErrorKind = ErrorKind("parse")
	ErrorKindValidation ErrorKind = ErrorKind("validation")
	ErrorKindWrite      ErrorKind = ErrorKind("write")
)

// CatalogError reports a catalog that could not be read, decoded, validated or persisted.
type CatalogError struct {
	Kind    ErrorKind
	Path    string
	Message string
	Cause   error
}

// Error describes the catalog failure.
func (catalogError *CatalogError) Error() string {
	switch catalogError.Kind {
	case ErrorKindRead:
		return fmt.Sprintf(catalogReadErrorTemplateConstant, catalogError.Path, catalogError.Cause)
	case ErrorKindParse:
		return fmt.Sprintf(catalogParseErrorTemplateConstant, catalogError.Path, catalogError.Cause)
	case ErrorKindWrite:
		return fmt.Sprintf(catalogWriteErrorTemplateConstant, catalogError.Path, catalogError.Cause)
	default:
		return catalogError.Message
	}
}

// Unwrap exposes the underlying failure.
func (catalogError *CatalogError) Unwrap() error {
	return catalogError.Cause
}
