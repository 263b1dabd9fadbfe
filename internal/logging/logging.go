// Package logging provides a component-logger factory over
// github.com/ipfs/go-log/v2, the same way the teacher wires it up. The
// engine and vault packages call go-log directly rather than this helper.
package logging

import (
	logging "github.com/ipfs/go-log/v2"
)

// Logger returns a named component logger. Call sites keep a package-level
// `var log = logging.Logger("condensedb/<component>")`.
func Logger(name string) *logging.ZapEventLogger {
	return logging.Logger(name)
}
