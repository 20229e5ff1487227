// Package middleware provides HTTP middleware for the photo grid service:
// request logging through the leveled logger, Prometheus request metrics
// labelled by route template, and gzip compression of JSON responses.
package middleware
