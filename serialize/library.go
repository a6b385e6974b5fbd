package serialize

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/soedinglab/csblast/alphabet"
	"github.com/soedinglab/csblast/context"
	"github.com/soedinglab/csblast/cserr"
)

// WriteLibrary writes lib in the fixed-point text format: a header giving
// the component count, window width, alphabet size and iteration count,
// followed by one record per component (its prior, its W profile columns,
// and its pseudocount vector), terminated by "//".
func WriteLibrary(w io.Writer, lib *context.Library) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, "ProfileLibrary")
	fmt.Fprintf(bw, "SIZE\t%d\n", lib.K())
	fmt.Fprintf(bw, "LENG\t%d\n", lib.W)
	fmt.Fprintf(bw, "NALPH\t%d\n", lib.Alphabet.Size())
	fmt.Fprintf(bw, "ITERS\t%d\n", lib.Iterations)

	for k, c := range lib.Components {
		fmt.Fprintf(bw, "COMPONENT\t%d\n", k)
		fmt.Fprintf(bw, "PRIOR\t%s\n", EncodeLog2(c.Prior))
		fmt.Fprintf(bw, "PC")
		for _, v := range c.Pseudocounts {
			fmt.Fprintf(bw, "\t%s", EncodeLog2(v))
		}
		fmt.Fprintln(bw)
		for i, col := range c.Profile {
			fmt.Fprintf(bw, "%d", i+1)
			for _, v := range col {
				lin := v
				if lib.LogSpace {
					lin = math.Exp2(v)
				}
				fmt.Fprintf(bw, "\t%s", EncodeLog2(lin))
			}
			fmt.Fprintln(bw)
		}
		fmt.Fprintln(bw, "//")
	}
	return bw.Flush()
}

// ReadLibrary parses the format WriteLibrary produces. The resulting
// library is always in linear space.
func ReadLibrary(r io.Reader, a alphabet.Alphabet) (*context.Library, error) {
	sc := bufio.NewScanner(r)
	if !sc.Scan() {
		return nil, fmt.Errorf("%w: empty input", cserr.ErrIO)
	}
	if strings.TrimSpace(sc.Text()) != "ProfileLibrary" {
		return nil, fmt.Errorf("%w: expected ProfileLibrary tag", cserr.ErrIO)
	}

	k, err := readIntField(sc, "SIZE")
	if err != nil {
		return nil, err
	}
	leng, err := readIntField(sc, "LENG")
	if err != nil {
		return nil, err
	}
	nalph, err := readIntField(sc, "NALPH")
	if err != nil {
		return nil, err
	}
	if nalph != a.Size() {
		return nil, fmt.Errorf("%w: library alphabet size %d, want %d", cserr.ErrShapeMismatch, nalph, a.Size())
	}
	iters, err := readIntField(sc, "ITERS")
	if err != nil {
		return nil, err
	}

	lib, err := context.New(a, leng, k)
	if err != nil {
		return nil, err
	}
	lib.Iterations = iters

	for c := 0; c < k; c++ {
		if !sc.Scan() {
			return nil, fmt.Errorf("%w: missing COMPONENT record", cserr.ErrIO)
		}
		fields := strings.Fields(sc.Text())
		if len(fields) < 1 || fields[0] != "COMPONENT" {
			return nil, fmt.Errorf("%w: expected COMPONENT record", cserr.ErrIO)
		}

		if !sc.Scan() {
			return nil, fmt.Errorf("%w: missing PRIOR record", cserr.ErrIO)
		}
		priorFields := strings.Fields(sc.Text())
		if len(priorFields) != 2 || priorFields[0] != "PRIOR" {
			return nil, fmt.Errorf("%w: expected PRIOR record", cserr.ErrIO)
		}
		prior, err := DecodeLog2(priorFields[1])
		if err != nil {
			return nil, err
		}
		lib.Components[c].Prior = prior

		if !sc.Scan() {
			return nil, fmt.Errorf("%w: missing PC record", cserr.ErrIO)
		}
		pcFields := strings.Fields(sc.Text())
		if len(pcFields) != nalph+1 || pcFields[0] != "PC" {
			return nil, fmt.Errorf("%w: expected PC record with %d entries", cserr.ErrIO, nalph)
		}
		for x := 0; x < nalph; x++ {
			v, err := DecodeLog2(pcFields[x+1])
			if err != nil {
				return nil, err
			}
			lib.Components[c].Pseudocounts[x] = v
		}

		for i := 0; i < leng; i++ {
			if !sc.Scan() {
				return nil, fmt.Errorf("%w: missing profile row %d", cserr.ErrIO, i+1)
			}
			row := strings.Fields(sc.Text())
			if len(row) != nalph+1 {
				return nil, fmt.Errorf("%w: profile row %d has %d fields, want %d", cserr.ErrIO, i+1, len(row), nalph+1)
			}
			for x := 0; x < nalph; x++ {
				v, err := DecodeLog2(row[x+1])
				if err != nil {
					return nil, err
				}
				lib.Components[c].Profile[i][x] = v
			}
		}

		if !sc.Scan() || strings.TrimSpace(sc.Text()) != "//" {
			return nil, fmt.Errorf("%w: missing '//' terminator for component %d", cserr.ErrIO, c)
		}
	}
	return lib, nil
}

func readIntField(sc *bufio.Scanner, key string) (int, error) {
	if !sc.Scan() {
		return 0, fmt.Errorf("%w: missing %s record", cserr.ErrIO, key)
	}
	fields := strings.Fields(sc.Text())
	if len(fields) != 2 || fields[0] != key {
		return 0, fmt.Errorf("%w: expected %s record", cserr.ErrIO, key)
	}
	return strconv.Atoi(fields[1])
}
