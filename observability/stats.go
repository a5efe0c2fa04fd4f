// Package observability exposes lightweight runtime metrics for the stats
// endpoint.
package observability

import (
	"os"

	"github.com/shirou/gopsutil/process"
)

// ProcessStats are the technical metrics (memory, CPU, OS status) of the
// relay process.
type ProcessStats struct {
	Pid        int     `json:"pid"`
	Status     string  `json:"status"`
	CPUPercent float64 `json:"cpuPercent"`
	RSSBytes   uint64  `json:"rssBytes"`
}

// Collector samples the relay's own process.
type Collector struct {
	p *process.Process
}

func NewCollector() (*Collector, error) {
	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return nil, err
	}
	return &Collector{p: p}, nil
}

func (c *Collector) Collect() (ProcessStats, error) {
	memInfo, err := c.p.MemoryInfo()
	if err != nil {
		return ProcessStats{}, err
	}
	cpuPercent, err := c.p.CPUPercent()
	if err != nil {
		return ProcessStats{}, err
	}
	status, err := c.p.Status()
	if err != nil {
		return ProcessStats{}, err
	}
	return ProcessStats{
		Pid:        os.Getpid(),
		Status:     status,
		CPUPercent: cpuPercent,
		RSSBytes:   memInfo.RSS,
	}, nil
}
