package common

import "fmt"

// Assert checks a condition and panics if it is false.
//
// Use it for conditions that can only be false if the compiler itself is broken
// (a rule produced a ColumnRef past its input, a switch over node kinds fell
// through). Problems caused by user input, such as an unknown table, are
// returned as errors instead.
func Assert(cond bool, format string, args ...any) {
	if !cond {
		panic(fmt.Sprintf(format, args...))
	}
}
