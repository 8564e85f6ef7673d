package probe

import "golang.org/x/sys/unix"

// On linux ru_maxrss is reported in kilobytes.
func peakRSSBytes() (uint64, error) {
	var ru unix.Rusage
	if err := unix.Getrusage(unix.RUSAGE_SELF, &ru); err != nil {
		return 0, err
	}

	return uint64(ru.Maxrss) * 1024, nil
}
