package codec

import "errors"

var errTrailingData = errors.New("codec: trailing data after JSON value")
