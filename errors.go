package wonderfloyd

import "errors"

// ErrUnsupportedMedia marks an upload that is not a decodable image of an
// allowed type. It is recoverable: the handler reports it and the user
// retries with a different file.
var ErrUnsupportedMedia = errors.New("unsupported media")

// ErrDuplicateTitle marks a post submission whose title (or derived slug)
// collides with an existing post's unique constraint.
var ErrDuplicateTitle = errors.New("a post with this title already exists")

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")
