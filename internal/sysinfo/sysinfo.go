package sysinfo

import (
	"os"
	"runtime"
	"strconv"
	"strings"
)

// LoadAvg holds the 1/5/15 minute load averages.
type LoadAvg struct {
	Load1  float64 `json:"1"`
	Load5  float64 `json:"5"`
	Load15 float64 `json:"15"`
}

// Memory holds process memory numbers from the Go runtime.
type Memory struct {
	AllocBytes     uint64 `json:"alloc_bytes"`
	SysBytes       uint64 `json:"sys_bytes"`
	HeapAllocBytes uint64 `json:"heap_alloc_bytes"`
	HeapObjects    uint64 `json:"heap_objects"`
	NumGC          uint32 `json:"num_gc"`
	GoroutineCount int    `json:"goroutines"`
}

// Stats is the system snapshot reported by /health.
type Stats struct {
	LoadAvg *LoadAvg `json:"load_avg,omitempty"`
	Memory  Memory   `json:"memory"`
}

// Collect gathers a best-effort system snapshot. Load averages are only
// available where the OS exposes /proc/loadavg.
func Collect() Stats {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	return Stats{
		LoadAvg: readLoadAvg("/proc/loadavg"),
		Memory: Memory{
			AllocBytes:     mem.Alloc,
			SysBytes:       mem.Sys,
			HeapAllocBytes: mem.HeapAlloc,
			HeapObjects:    mem.HeapObjects,
			NumGC:          mem.NumGC,
			GoroutineCount: runtime.NumGoroutine(),
		},
	}
}

func readLoadAvg(path string) *LoadAvg {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}

	fields := strings.Fields(string(data))
	if len(fields) < 3 {
		return nil
	}

	load1, err1 := strconv.ParseFloat(fields[0], 64)
	load5, err2 := strconv.ParseFloat(fields[1], 64)
	load15, err3 := strconv.ParseFloat(fields[2], 64)
	if err1 != nil || err2 != nil || err3 != nil {
		return nil
	}

	return &LoadAvg{Load1: load1, Load5: load5, Load15: load15}
}
