package serialize

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/soedinglab/csblast/alphabet"
	"github.com/soedinglab/csblast/crf"
	"github.com/soedinglab/csblast/cserr"
)

// WriteCRF writes m in the fixed-point text format, one CRFState record
// per state: a header (INDEX/NSTATES/NCOLS/ALPH) followed by a body (CWT
// matrix, PC row). Unlike a profile's columns, context weights and pc
// logits are unconstrained reals, so they are encoded with EncodeFixed
// rather than EncodeLog2.
func WriteCRF(w io.Writer, m *crf.Model) error {
	bw := bufio.NewWriter(w)
	for k, s := range m.States {
		fmt.Fprintln(bw, "CRFState")
		fmt.Fprintf(bw, "INDEX\t%d\n", k)
		fmt.Fprintf(bw, "NSTATES\t%d\n", m.K())
		fmt.Fprintf(bw, "NCOLS\t%d\n", m.W)
		fmt.Fprintf(bw, "ALPH\t%d\n", m.Alphabet.Size())
		fmt.Fprintf(bw, "BIAS\t%s\n", EncodeFixed(s.Bias))

		fmt.Fprintf(bw, "CWT\t%s\n", m.Alphabet.String())
		for i, col := range s.ContextWeights {
			fmt.Fprintf(bw, "%d", i+1)
			for _, v := range col {
				fmt.Fprintf(bw, "\t%s", EncodeFixed(v))
			}
			fmt.Fprintln(bw)
		}

		fmt.Fprintf(bw, "PC")
		for _, v := range s.PCWeights {
			fmt.Fprintf(bw, "\t%s", EncodeFixed(v))
		}
		fmt.Fprintln(bw)
		fmt.Fprintln(bw, "//")
	}
	return bw.Flush()
}

// ReadCRF parses the format WriteCRF produces.
func ReadCRF(r io.Reader, a alphabet.Alphabet) (*crf.Model, error) {
	sc := bufio.NewScanner(r)
	var m *crf.Model

	for {
		if !sc.Scan() {
			break
		}
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		if line != "CRFState" {
			return nil, fmt.Errorf("%w: expected CRFState tag, got %q", cserr.ErrIO, line)
		}

		index, err := readIntField(sc, "INDEX")
		if err != nil {
			return nil, err
		}
		nstates, err := readIntField(sc, "NSTATES")
		if err != nil {
			return nil, err
		}
		ncols, err := readIntField(sc, "NCOLS")
		if err != nil {
			return nil, err
		}
		nalph, err := readIntField(sc, "ALPH")
		if err != nil {
			return nil, err
		}
		if nalph != a.Size() {
			return nil, fmt.Errorf("%w: state alphabet size %d, want %d", cserr.ErrShapeMismatch, nalph, a.Size())
		}
		if m == nil {
			var err error
			m, err = crf.New(a, ncols, nstates)
			if err != nil {
				return nil, err
			}
		}
		if index < 0 || index >= m.K() {
			return nil, fmt.Errorf("%w: state index %d out of range", cserr.ErrShapeMismatch, index)
		}

		if !sc.Scan() {
			return nil, fmt.Errorf("%w: missing BIAS record", cserr.ErrIO)
		}
		biasFields := strings.Fields(sc.Text())
		if len(biasFields) != 2 || biasFields[0] != "BIAS" {
			return nil, fmt.Errorf("%w: expected BIAS record", cserr.ErrIO)
		}
		bias, err := DecodeFixed(biasFields[1])
		if err != nil {
			return nil, err
		}
		m.States[index].Bias = bias

		if !sc.Scan() {
			return nil, fmt.Errorf("%w: missing CWT record", cserr.ErrIO)
		}

		for i := 0; i < ncols; i++ {
			if !sc.Scan() {
				return nil, fmt.Errorf("%w: missing context-weight row %d", cserr.ErrIO, i+1)
			}
			row := strings.Fields(sc.Text())
			if len(row) != nalph+1 {
				return nil, fmt.Errorf("%w: context-weight row %d has %d fields, want %d", cserr.ErrIO, i+1, len(row), nalph+1)
			}
			for x := 0; x < nalph; x++ {
				v, err := DecodeFixed(row[x+1])
				if err != nil {
					return nil, err
				}
				m.States[index].ContextWeights[i][x] = v
			}
		}

		if !sc.Scan() {
			return nil, fmt.Errorf("%w: missing PC record", cserr.ErrIO)
		}
		pcFields := strings.Fields(sc.Text())
		if len(pcFields) != nalph+1 || pcFields[0] != "PC" {
			return nil, fmt.Errorf("%w: expected PC record with %d entries", cserr.ErrIO, nalph)
		}
		for x := 0; x < nalph; x++ {
			v, err := DecodeFixed(pcFields[x+1])
			if err != nil {
				return nil, err
			}
			m.States[index].PCWeights[x] = v
		}

		if !sc.Scan() || strings.TrimSpace(sc.Text()) != "//" {
			return nil, fmt.Errorf("%w: missing '//' terminator for state %d", cserr.ErrIO, index)
		}
	}
	if m == nil {
		return nil, fmt.Errorf("%w: no CRFState records found", cserr.ErrIO)
	}
	return m, nil
}
