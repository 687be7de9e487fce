// Package testutil contains helper builders and scripted agents used across
// tests to reduce boilerplate when constructing core model objects (sessions,
// turns, panels) and asserting scheduling behaviors. These helpers are
// intentionally minimal and avoid adding third-party dependencies. They are
// not intended for production usage.
package testutil
