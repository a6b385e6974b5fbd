// Package alphabet defines the ordered residue alphabets (amino acid and
// nucleotide) shared by every profile, library and CRF in this module, plus
// the background distribution used as the reference denominator in
// log-likelihood computations.
package alphabet

import "fmt"

// Alphabet is an ordered, fixed-size set of one-letter symbols plus a
// distinguished "any" symbol (e.g. 'X' for amino acids, 'N' for
// nucleotides). It is an immutable handle threaded through constructors;
// there is no process-wide singleton.
type Alphabet struct {
	letters   []byte
	index     map[byte]int
	any       int
	anyLetter byte
}

// New builds an Alphabet from ordinary letters (in canonical order) plus a
// distinguished "any" letter, which is assigned the index equal to len(letters)
// so that it always compares >= the alphabet size for ordinary residues.
func New(letters []byte, any byte) (Alphabet, error) {
	if len(letters) == 0 {
		return Alphabet{}, fmt.Errorf("alphabet: empty letter set")
	}
	idx := make(map[byte]int, len(letters)+1)
	for i, l := range letters {
		if _, dup := idx[l]; dup {
			return Alphabet{}, fmt.Errorf("alphabet: duplicate letter %q", l)
		}
		idx[l] = i
	}
	anyIdx := len(letters)
	if _, dup := idx[any]; dup {
		return Alphabet{}, fmt.Errorf("alphabet: any-symbol %q collides with an ordinary letter", any)
	}
	idx[any] = anyIdx
	cp := make([]byte, len(letters))
	copy(cp, letters)
	return Alphabet{letters: cp, index: idx, any: anyIdx, anyLetter: any}, nil
}

// aminoAcidLetters is the canonical 20-letter amino-acid order.
var aminoAcidLetters = []byte("ACDEFGHIKLMNPQRSTVWY")

// nucleotideLetters is the canonical 4-letter nucleotide order.
var nucleotideLetters = []byte("ACGT")

// AminoAcid returns the canonical 20-letter amino-acid alphabet with 'X' as
// the any-symbol.
func AminoAcid() Alphabet {
	a, err := New(aminoAcidLetters, 'X')
	if err != nil {
		panic(err) // unreachable: the canonical letters never collide
	}
	return a
}

// Nucleotide returns the canonical 4-letter nucleotide alphabet with 'N' as
// the any-symbol.
func Nucleotide() Alphabet {
	a, err := New(nucleotideLetters, 'N')
	if err != nil {
		panic(err)
	}
	return a
}

// Size returns A, the number of ordinary (non-any) letters.
func (a Alphabet) Size() int { return len(a.letters) }

// Any returns the index reserved for the any-symbol; it always equals
// Size().
func (a Alphabet) Any() int { return a.any }

// Index looks up the integer index of a letter, including the any-symbol.
func (a Alphabet) Index(letter byte) (int, bool) {
	i, ok := a.index[letter]
	return i, ok
}

// Letter returns the one-letter symbol at index i (0 <= i <= Size(), where
// Size() is the any-symbol).
func (a Alphabet) Letter(i int) byte {
	if i == a.any {
		return a.anyLetter
	}
	if i < 0 || i >= len(a.letters) {
		return 0
	}
	return a.letters[i]
}

// Letters returns the ordinary letters in canonical order (excludes the
// any-symbol).
func (a Alphabet) Letters() []byte {
	cp := make([]byte, len(a.letters))
	copy(cp, a.letters)
	return cp
}

// String renders the alphabet as its canonical letter string.
func (a Alphabet) String() string { return string(a.letters) }

// Encode maps a byte sequence to alphabet indices, mapping any letter not in
// the alphabet to the any-symbol index rather than failing: unrecognized
// residues (gaps, ambiguity codes) are common in real sequence windows.
func (a Alphabet) Encode(seq []byte) []int {
	out := make([]int, len(seq))
	for i, b := range seq {
		if idx, ok := a.index[b]; ok {
			out[i] = idx
		} else {
			out[i] = a.any
		}
	}
	return out
}
