// Package mcp exposes the document server over the Model Context Protocol.
package mcp

import (
	"errors"
	"fmt"

	docerrors "github.com/andrea9293/mcp-documentation-server/internal/errors"
)

// MCP protocol error codes.
const (
	// ErrCodeDocumentNotFound indicates the requested document id does
	// not exist.
	ErrCodeDocumentNotFound = -32001

	// ErrCodeEmbeddingFailed indicates embedding generation failed.
	ErrCodeEmbeddingFailed = -32002

	// ErrCodeProviderNotReady indicates the embedding provider did not
	// initialize in time.
	ErrCodeProviderNotReady = -32003

	// ErrCodeUploadFailed indicates the uploads pipeline failed.
	ErrCodeUploadFailed = -32004

	// Standard JSON-RPC error codes.
	ErrCodeInvalidParams = -32602
	ErrCodeInternalError = -32603
)

// MCPError is a protocol-level error with a JSON-RPC code.
type MCPError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *MCPError) Error() string {
	return fmt.Sprintf("MCP error %d: %s", e.Code, e.Message)
}

// NewInvalidParamsError builds a -32602 error for malformed tool input.
func NewInvalidParamsError(message string) *MCPError {
	return &MCPError{Code: ErrCodeInvalidParams, Message: message}
}

// MapError converts internal typed errors to protocol errors. The message
// carries the internal suggestion when one exists, so clients can relay
// actionable guidance.
func MapError(err error) *MCPError {
	if err == nil {
		return nil
	}

	var docErr *docerrors.DocError
	if !errors.As(err, &docErr) {
		return &MCPError{Code: ErrCodeInternalError, Message: err.Error()}
	}

	message := docErr.Message
	if docErr.Suggestion != "" {
		message = fmt.Sprintf("%s. %s", docErr.Message, docErr.Suggestion)
	}

	switch docErr.Code {
	case docerrors.ErrCodeDocumentNotFound:
		return &MCPError{Code: ErrCodeDocumentNotFound, Message: message}
	case docerrors.ErrCodeProviderInitTimeout, docerrors.ErrCodeProviderUnavailable:
		return &MCPError{Code: ErrCodeProviderNotReady, Message: message}
	case docerrors.ErrCodeEmbeddingFailed, docerrors.ErrCodeDimensionMismatch:
		return &MCPError{Code: ErrCodeEmbeddingFailed, Message: message}
	case docerrors.ErrCodeUploadFailed:
		return &MCPError{Code: ErrCodeUploadFailed, Message: message}
	case docerrors.ErrCodeInvalidInput, docerrors.ErrCodeQueryEmpty:
		return &MCPError{Code: ErrCodeInvalidParams, Message: message}
	default:
		return &MCPError{Code: ErrCodeInternalError, Message: message}
	}
}
