// Package wmfdb provides shared constants and helpers for the Wikimedia
// MariaDB operator toolkit.
package wmfdb

import (
	"fmt"
	"log"
	"os"
	"path"
	"runtime"
)

const VERSION = "1.0.0"

var SHA = ""

const (
	ENV_DEBUG = "WMFDB_DEBUG"
)

var (
	Debugging = false
	debugLog  = log.New(os.Stderr, "DEBUG ", log.LstdFlags|log.Lmicroseconds)
)

func Debug(msg string, v ...interface{}) {
	if !Debugging {
		return
	}
	_, file, line, _ := runtime.Caller(1)
	msg = fmt.Sprintf("%s:%d %s", path.Base(file), line, msg)
	debugLog.Printf(msg, v...)
}
