package dataset

import (
	"math"
	"strconv"
)

// Kind identifies what a Cell holds.
type Kind uint8

const (
	KindMissing Kind = iota
	KindNumber
	KindText
)

func (k Kind) String() string {
	switch k {
	case KindNumber:
		return "number"
	case KindText:
		return "text"
	default:
		return "missing"
	}
}

// Cell is a single table value. The zero value is a missing cell.
type Cell struct {
	kind Kind
	num  float64
	text string
}

// Num returns a numeric cell. NaN is the "no value" marker and yields a missing cell.
func Num(v float64) Cell {
	if math.IsNaN(v) {
		return Cell{}
	}
	return Cell{kind: KindNumber, num: v}
}

// Text returns a text cell.
func Text(s string) Cell { return Cell{kind: KindText, text: s} }

// Null returns a missing cell.
func Null() Cell { return Cell{} }

func (c Cell) Kind() Kind      { return c.kind }
func (c Cell) IsMissing() bool { return c.kind == KindMissing }

// Float returns the numeric value and whether the cell holds a number.
func (c Cell) Float() (float64, bool) {
	if c.kind != KindNumber {
		return 0, false
	}
	return c.num, true
}

// Str returns the text value and whether the cell holds text.
func (c Cell) Str() (string, bool) {
	if c.kind != KindText {
		return "", false
	}
	return c.text, true
}

// Equal reports full value equality. Two missing cells are equal.
func (c Cell) Equal(o Cell) bool {
	if c.kind != o.kind {
		return false
	}
	switch c.kind {
	case KindNumber:
		return c.num == o.num
	case KindText:
		return c.text == o.text
	default:
		return true
	}
}

// String renders the cell the way the CSV writer does; missing is empty.
func (c Cell) String() string {
	switch c.kind {
	case KindNumber:
		return strconv.FormatFloat(c.num, 'f', -1, 64)
	case KindText:
		return c.text
	default:
		return ""
	}
}

// appendKey appends an unambiguous encoding of the cell used for row hashing.
func (c Cell) appendKey(b []byte) []byte {
	b = append(b, byte('0'+c.kind))
	switch c.kind {
	case KindNumber:
		v := c.num
		if v == 0 {
			v = 0 // fold -0 into +0, they compare equal
		}
		b = strconv.AppendFloat(b, v, 'g', -1, 64)
	case KindText:
		b = strconv.AppendInt(b, int64(len(c.text)), 10)
		b = append(b, ':')
		b = append(b, c.text...)
	}
	return append(b, 0x1f)
}
