// Package console is indexerctl's small print/exit helper, grounded
// on the teacher's proxi/console package: plain fmt.Printf wrappers
// plus a NoError/Fatalf pair that exits 1 instead of panicking, since
// a CLI's own malformed invocation is an operator-facing error, not a
// programmer error.
package console

import (
	"fmt"
	"os"
)

func Infof(format string, args ...any) {
	fmt.Printf(format+"\n", args...)
}

func Errorf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
}

func Fatalf(format string, args ...any) {
	Errorf(format, args...)
	os.Exit(1)
}

func NoError(err error) {
	if err != nil {
		Fatalf("%v", err)
	}
}
