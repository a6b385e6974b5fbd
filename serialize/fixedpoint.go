// Package serialize implements the text-based fixed-point format this
// module reads and writes its trained parameters in: a scaled integer
// token per value, "*" standing in for zero or -Inf.
package serialize

import (
	"fmt"
	"math"
	"strconv"

	"github.com/soedinglab/csblast/cserr"
)

// LogScale is the fixed-point scale factor applied before rounding to an
// integer token.
const LogScale = 1000

const zeroToken = "*"

// EncodeLog2 encodes a linear-space probability (0,1] as a base-2
// log-fixed-point token: round(-log2(v)*LogScale). A non-positive v
// encodes as the zero sentinel.
func EncodeLog2(v float64) string {
	if v <= 0 {
		return zeroToken
	}
	return strconv.Itoa(-iround(math.Log2(v) * LogScale))
}

// DecodeLog2 reverses EncodeLog2: v = 2^(-tok/LogScale).
func DecodeLog2(tok string) (float64, error) {
	if tok == zeroToken {
		return 0, nil
	}
	n, err := strconv.Atoi(tok)
	if err != nil {
		return 0, fmt.Errorf("%w: bad fixed-point token %q: %v", cserr.ErrIO, tok, err)
	}
	return math.Exp2(-float64(n) / LogScale), nil
}

// EncodeFixed encodes an unconstrained real value (a CRF weight or bias,
// not a probability) as a fixed-point token: round(-v*LogScale). -Inf
// encodes as the zero sentinel.
func EncodeFixed(v float64) string {
	if math.IsInf(v, -1) {
		return zeroToken
	}
	return strconv.Itoa(-iround(v * LogScale))
}

// DecodeFixed reverses EncodeFixed: v = -tok/LogScale.
func DecodeFixed(tok string) (float64, error) {
	if tok == zeroToken {
		return math.Inf(-1), nil
	}
	n, err := strconv.Atoi(tok)
	if err != nil {
		return 0, fmt.Errorf("%w: bad fixed-point token %q: %v", cserr.ErrIO, tok, err)
	}
	return -float64(n) / LogScale, nil
}

func iround(v float64) int {
	if v >= 0 {
		return int(v + 0.5)
	}
	return -int(-v + 0.5)
}
