package ta

import "errors"

// ErrInvalidParameter is returned by constructors when a period is zero or
// negative. Construction is the only fallible operation: once an indicator
// exists, Next never fails.
var ErrInvalidParameter = errors.New("ta: invalid parameter")
