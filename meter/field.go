package meter

import "strconv"

// Field is one labelled value cell on the display. Rows and columns are
// 1-based.
type Field struct {
	Name     string
	Label    string
	Row      byte
	LabelCol byte
	ValueCol byte
	Width    int
	Unit     string
	Channel  uint8
}

// DefaultLayout places voltage and current on row 1 and the current limit on
// row 2 of a 16x2 display:
//
//	V:12.50V I:0.25A
//	Limit:0.32A
func DefaultLayout() [3]Field {
	return [3]Field{
		{Name: "voltage", Label: "V:", Row: 1, LabelCol: 1, ValueCol: 3, Width: 6, Unit: "V", Channel: 0},
		{Name: "current", Label: "I:", Row: 1, LabelCol: 10, ValueCol: 12, Width: 5, Unit: "A", Channel: 1},
		{Name: "limit", Label: "Limit:", Row: 2, LabelCol: 1, ValueCol: 7, Width: 6, Unit: "A", Channel: 2},
	}
}

// appendValue formats v with two decimals and the unit, padded with spaces
// to width so a shorter value overwrites a longer one. Text longer than
// width is cut.
func appendValue(buf []byte, v float32, unit string, width int) []byte {
	start := len(buf)
	buf = strconv.AppendFloat(buf, float64(v), 'f', 2, 32)
	buf = append(buf, unit...)
	for len(buf)-start < width {
		buf = append(buf, ' ')
	}
	if width > 0 && len(buf)-start > width {
		buf = buf[:start+width]
	}
	return buf
}
