package models

// MinLabels is the smallest label set the application runs with
const MinLabels = 2

// LabelSet is the ordered list of classification labels shown as tabs
type LabelSet []string

// Configured reports whether there are enough labels to classify into
func (l LabelSet) Configured() bool {
	return len(l) >= MinLabels
}

// Contains reports whether label is part of the set
func (l LabelSet) Contains(label string) bool {
	for _, name := range l {
		if name == label {
			return true
		}
	}
	return false
}

// First returns the default tab label, or "" for an empty set
func (l LabelSet) First() string {
	if len(l) == 0 {
		return ""
	}
	return l[0]
}

// labelColors is cycled through when a label set is longer than the palette
var labelColors = []string{
	"green-400", "red-400", "blue-400", "yellow-400",
	"pink-400", "purple-400", "gray-400",
	"green-800", "red-800", "blue-800", "yellow-800",
	"pink-800", "purple-800", "gray-800",
	"green-100", "red-100", "blue-100", "yellow-100",
	"pink-100", "purple-100", "gray-100",
}

// LabelColor returns the chip color class for the label at index i
func LabelColor(i int) string {
	if i < 0 {
		i = -i
	}
	return "label-" + labelColors[i%len(labelColors)]
}
