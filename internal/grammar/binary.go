package grammar

import (
	"fmt"

	"github.com/dekarrin/rezi"
)

// This file contains the binary snapshot format of grammars. A snapshot keeps
// variable order and productions; productions are written in production order
// so equal grammars always give equal bytes.

// decCount decodes an element count that must be backed by the remaining data.
// Every element takes at least one byte, so a count past the end of data is
// corrupt.
func decCount(data []byte) (int, int, error) {
	count, n, err := rezi.DecInt(data)
	if err != nil {
		return 0, 0, err
	}
	if count < 0 || count > len(data)-n {
		return 0, 0, fmt.Errorf("count %d out of range for %d remaining bytes", count, len(data)-n)
	}
	return count, n, nil
}

func (s Symbol) MarshalBinary() ([]byte, error) {
	var data []byte

	data = append(data, rezi.EncBool(s.IsVariable())...)
	if s.IsVariable() {
		data = append(data, rezi.EncString(s.Name)...)
	} else {
		data = append(data, rezi.EncInt(int(s.Char))...)
	}

	return data, nil
}

func (s *Symbol) UnmarshalBinary(data []byte) error {
	isVar, n, err := rezi.DecBool(data)
	if err != nil {
		return fmt.Errorf("kind: %w", err)
	}
	data = data[n:]

	if isVar {
		name, _, err := rezi.DecString(data)
		if err != nil {
			return fmt.Errorf("name: %w", err)
		}
		*s = Var(name)
		return nil
	}

	ch, _, err := rezi.DecInt(data)
	if err != nil {
		return fmt.Errorf("char: %w", err)
	}
	*s = Term(rune(ch))
	return nil
}

func (p Production) MarshalBinary() ([]byte, error) {
	var data []byte

	data = append(data, rezi.EncInt(len(p))...)
	for _, sym := range p {
		data = append(data, rezi.EncBinary(sym)...)
	}

	return data, nil
}

func (p *Production) UnmarshalBinary(data []byte) error {
	count, n, err := decCount(data)
	if err != nil {
		return fmt.Errorf("symbol count: %w", err)
	}
	data = data[n:]

	syms := make(Production, count)
	for i := 0; i < count; i++ {
		n, err := rezi.DecBinary(data, &syms[i])
		if err != nil {
			return fmt.Errorf("symbol %d: %w", i, err)
		}
		data = data[n:]
	}

	*p = syms
	return nil
}

func (g Grammar) MarshalBinary() ([]byte, error) {
	var data []byte

	data = append(data, rezi.EncInt(len(g.order))...)
	for _, name := range g.order {
		prods := g.Productions(name)

		data = append(data, rezi.EncString(name)...)
		data = append(data, rezi.EncInt(len(prods))...)
		for _, p := range prods {
			data = append(data, rezi.EncBinary(p)...)
		}
	}

	return data, nil
}

func (g *Grammar) UnmarshalBinary(data []byte) error {
	varCount, n, err := decCount(data)
	if err != nil {
		return fmt.Errorf("variable count: %w", err)
	}
	data = data[n:]

	decoded := New()
	for i := 0; i < varCount; i++ {
		name, n, err := rezi.DecString(data)
		if err != nil {
			return fmt.Errorf("variable %d: name: %w", i, err)
		}
		data = data[n:]

		prodCount, n, err := decCount(data)
		if err != nil {
			return fmt.Errorf("variable %q: production count: %w", name, err)
		}
		data = data[n:]

		set := NewProductionSet()
		for j := 0; j < prodCount; j++ {
			var p Production
			n, err := rezi.DecBinary(data, &p)
			if err != nil {
				return fmt.Errorf("variable %q: production %d: %w", name, j, err)
			}
			data = data[n:]
			set.Add(p)
		}
		decoded.putRules(name, set)
	}

	*g = decoded
	return nil
}
