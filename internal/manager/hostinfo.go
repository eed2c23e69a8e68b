package manager

import (
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/host"

	"upscaled/pkg/types"
)

// collectHostInfo describes the machine the upscaler runs on.
// Lookups that fail leave their field at a placeholder.
func collectHostInfo() types.HostInfo {
	hi := types.HostInfo{OS: "Unknown OS", CPU: "Unknown CPU"}
	if info, err := host.Info(); err == nil && info != nil {
		hi.Hostname = info.Hostname
		hi.OS = info.OS + " " + info.Platform
	}
	if infos, err := cpu.Info(); err == nil && len(infos) > 0 {
		hi.CPU = infos[0].ModelName
	}
	if n, err := cpu.Counts(true); err == nil {
		hi.Cores = n
	}
	return hi
}

// hostInfo is collected once per process.
func (m *Manager) hostInfo() types.HostInfo {
	m.hostOnce.Do(func() { m.host = collectHostInfo() })
	return m.host
}
