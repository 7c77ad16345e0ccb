package ftp

import "time"

// timeNow is swapped in tests for deterministic LIST output.
var timeNow = time.Now
