// Package errors provides classified error primitives used across pagebuilder.
//
// A ClassifiedError carries a category (config, template, filesystem, ...), a
// severity and a retry strategy next to the usual message and cause. The CLI
// adapter turns categories into process exit codes.
//
// Example usage:
//
//	err := errors.FileSystemError("write page").
//		WithCause(writeErr).
//		WithContext("path", fullPath).
//		Build()
package errors
