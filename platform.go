package tablefsm

import (
	"fmt"
)

var version = 0x000100

// Version returns the version of the engine and its compiled machine format.
func Version() string {
	return fmt.Sprintf("%d.%d.%d (format v%d)", version>>16&0xff, version>>8&0xff, version&0xff, binaryVersion)
}
