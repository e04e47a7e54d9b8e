// Package server implements the HTTP upload service: the POST /upload
// handler that stores one multipart file per request under a sanitized
// name, static serving and listing of stored files, plus the config,
// logging, metrics and health plumbing around them.
package server
