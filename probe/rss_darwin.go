package probe

import "golang.org/x/sys/unix"

// On darwin ru_maxrss is reported in bytes.
func peakRSSBytes() (uint64, error) {
	var ru unix.Rusage
	if err := unix.Getrusage(unix.RUSAGE_SELF, &ru); err != nil {
		return 0, err
	}

	return uint64(ru.Maxrss), nil
}
