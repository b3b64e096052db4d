package codec

import "fmt"

// PadRight left-justifies s in a field of width size. Longer strings are
// returned unchanged.
func PadRight(s string, size int) string {
	return fmt.Sprintf("%-*s", size, s)
}
