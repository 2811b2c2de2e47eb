package eventtypes

import "errors"

var ErrNotFound = errors.New("event type not found")
