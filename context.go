package xbus

import "runtime"

var goroutinePrefix = []byte("goroutine ")

// goroutineID returns the numeric id of the calling goroutine, parsed
// from the runtime.Stack header ("goroutine N [running]:"). The runtime
// offers no cheaper public accessor; the header format has been stable
// since Go 1.
func goroutineID() uint64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	b := buf[:n]
	if len(b) <= len(goroutinePrefix) {
		return 0
	}
	b = b[len(goroutinePrefix):]
	var id uint64
	for _, c := range b {
		if c < '0' || c > '9' {
			break
		}
		id = id*10 + uint64(c-'0')
	}
	return id
}
