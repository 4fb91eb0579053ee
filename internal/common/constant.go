package common

// AccessTokenCookieName is the cookie that mirrors the bearer token for the
// double-submission check on protected routes.
const AccessTokenCookieName = "access_token"

// RequestIDHeaderName carries the correlation id for error reporting.
const RequestIDHeaderName = "X-Request-Id"
