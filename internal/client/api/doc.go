// Package api is the HTTP client for the todo backend.
//
// Every call goes through Client.Do, which joins the base URL and path, sends
// JSON with the bearer token of the bound Session and maps the reply status to
// an *Error. A 401 reply also invalidates the session. Callers match errors
// with errors.Is against the Err* sentinels.
package api
