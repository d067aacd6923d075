// Package api serves the task, project, tag and user resources over HTTP.
//
// Handlers read the authenticated user from the request context, decode and
// validate the body or query string, and call a service. Every failure goes
// through ErrorResponder, which is the only place a domain or store error is
// turned into a status code and the {success, error, trace_id} envelope.
package api
