package filter

// Transpose implements the DZ byte transposition.
// Raw data is organized as rows of columns bytes; stored data is organized
// as [all column 0 bytes][all column 1 bytes]...[trailing partial row].
type Transpose struct {
	columns int
}

// NewTranspose creates a transposition filter for rows of the given width.
func NewTranspose(columns uint32) *Transpose {
	return &Transpose{columns: int(columns)}
}

func (f *Transpose) Encode(input []byte) ([]byte, error) {
	return f.apply(input, true), nil
}

func (f *Transpose) Decode(input []byte) ([]byte, error) {
	return f.apply(input, false), nil
}

func (f *Transpose) apply(input []byte, encode bool) []byte {
	cols := f.columns
	if cols <= 1 {
		return input
	}
	rows := len(input) / cols
	if rows <= 1 {
		return input
	}

	output := make([]byte, len(input))
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			if encode {
				output[c*rows+r] = input[r*cols+c]
			} else {
				output[r*cols+c] = input[c*rows+r]
			}
		}
	}
	// The partial last row is stored as is.
	copy(output[rows*cols:], input[rows*cols:])
	return output
}
