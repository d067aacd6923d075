// Package logger builds the process logger from ServerConfig and carries
// request-scoped loggers (with trace_id and user_id attached) through a context.
package logger
