// Package utils holds small formatting helpers shared by the middleware and
// the command line: JSON rendering for output, truncation for logs, and a
// short preview of embedding vectors.
package utils
