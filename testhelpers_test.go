package docengine

import "errors"

var errBoom = errors.New("boom: transform blew up")
