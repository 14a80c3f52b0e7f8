// Package proxy implements the OpenAI-compatible HTTP surface: request
// parsing, response and SSE formatting, and mapping of internal errors to
// OpenAI-style error responses.
package proxy
