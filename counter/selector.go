package counter

import (
	"slices"
	"strings"
)

// DefaultExcludePrefixes 虚拟网卡、隧道、抓包驱动等不计入总流量
var DefaultExcludePrefixes = []string{
	// Windows
	"Loopback", "Software Loopback", "isatap", "Teredo", "vEthernet", "VMware",
	"VirtualBox", "Npcap", "NPF_", "WAN Miniport", "Bluetooth", "Hyper-V",
	// Linux
	"docker", "veth", "br-", "virbr", "vmnet", "vboxnet", "cni", "flannel", "kube-ipvs",
}

// Selector 决定哪些网卡参与统计
type Selector struct {
	// Preferred 用户指定的网卡；存在且 up 时只统计它
	Preferred       string
	ExcludePrefixes []string
}

// Includes 网卡是否属于自动选择范围 (不考虑 Preferred)
func (s *Selector) Includes(iface Interface) bool {
	if !iface.Up || iface.Loopback {
		return false
	}
	for _, p := range s.ExcludePrefixes {
		if p != "" && strings.HasPrefix(iface.Name, p) {
			return false
		}
	}
	return true
}

// Select 返回参与统计的网卡名 (已排序)
func (s *Selector) Select(ifaces []Interface) []string {
	if s.Preferred != "" {
		for _, iface := range ifaces {
			if iface.Name == s.Preferred && iface.Up {
				return []string{iface.Name}
			}
		}
	}
	var names []string
	for _, iface := range ifaces {
		if s.Includes(iface) {
			names = append(names, iface.Name)
		}
	}
	slices.Sort(names)
	return names
}
