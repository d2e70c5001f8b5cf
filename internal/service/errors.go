package service

import "errors"

var (
	// ErrLinkNotFound is returned by Redirect when no link has the requested id.
	ErrLinkNotFound = errors.New("link not found")

	// ErrURLMalformed is returned when a target url is not an absolute url.
	ErrURLMalformed = errors.New("url malformed")
)
