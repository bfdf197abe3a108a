package mmap

import "math"

// MaxSize is the largest file Open maps; the mapping length is an int.
const MaxSize = math.MaxInt
