package probe

import (
	"unsafe"

	"golang.org/x/sys/windows"
)

func peakRSSBytes() (uint64, error) {
	var counters windows.PROCESS_MEMORY_COUNTERS

	err := windows.GetProcessMemoryInfo(
		windows.CurrentProcess(),
		&counters,
		uint32(unsafe.Sizeof(counters)),
	)
	if err != nil {
		return 0, err
	}

	return uint64(counters.PeakWorkingSetSize), nil
}
