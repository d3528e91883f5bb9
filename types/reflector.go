package types

import (
	"sort"
	"strings"
	"time"
)

// Node is a repeater or hotspot connected directly to the reflector.
type Node struct {
	Callsign      string
	Suffix        string
	IP            string
	LinkedModule  string
	Protocol      string
	ConnectTime   time.Time
	LastHeardTime time.Time
}

// CallsignWithSuffix joins callsign and suffix the way module listings show them.
func (n Node) CallsignWithSuffix() string {
	if n.Suffix == "" {
		return n.Callsign
	}
	return n.Callsign + "-" + n.Suffix
}

// Peer is another reflector linked to this one.
type Peer struct {
	Callsign      string
	IP            string
	LinkedModule  string
	Protocol      string
	ConnectTime   time.Time
	LastHeardTime time.Time
}

// Station is an operator heard through a node or peer.
type Station struct {
	Callsign      string
	CallsignExtra string
	// ViaNode is the raw node text, ViaNodeCallsign/ViaNodeSuffix its parts.
	ViaNode         string
	ViaNodeCallsign string
	ViaNodeSuffix   string
	OnModule        string
	ViaPeer         string
	LastHeardTime   time.Time
}

// Module is a named channel and the nodes currently linked to it.
type Module struct {
	Name  string
	Nodes []Node
}

// Gateway is an auxiliary-protocol link recovered from a reflector log.
type Gateway struct {
	Protocol  string
	Callsign  string
	Timestamp time.Time
	Address   string
}

// Host returns the address without its port.
func (g Gateway) Host() string {
	if i := strings.LastIndex(g.Address, ":"); i >= 0 {
		return strings.Trim(g.Address[:i], "[]")
	}
	return g.Address
}

// ReflectorData is a point-in-time snapshot of the reflector status files.
type ReflectorData struct {
	Name     string
	Version  string
	Nodes    []Node
	Peers    []Peer
	Stations []Station
	// FileTime is the modification time of the XML status file.
	FileTime time.Time
	Running  bool
	Uptime   time.Duration
	Flags    *FlagTable
}

// DisplayName is the reflector name as published by URF dashboards.
func (d *ReflectorData) DisplayName() string {
	return strings.Replace(d.Name, "XLX", "URF", 1)
}

// Modules returns the distinct linked modules of all nodes, sorted.
func (d *ReflectorData) Modules() []string {
	seen := make(map[string]bool)
	var modules []string
	for _, n := range d.Nodes {
		if n.LinkedModule == "" || seen[n.LinkedModule] {
			continue
		}
		seen[n.LinkedModule] = true
		modules = append(modules, n.LinkedModule)
	}
	sort.Strings(modules)
	return modules
}

// NodesInModule returns the nodes linked to module, in source order.
func (d *ReflectorData) NodesInModule(module string) []Node {
	var nodes []Node
	for _, n := range d.Nodes {
		if n.LinkedModule == module {
			nodes = append(nodes, n)
		}
	}
	return nodes
}

// ModulesInUse groups nodes by module.
func (d *ReflectorData) ModulesInUse() []Module {
	names := d.Modules()
	modules := make([]Module, 0, len(names))
	for _, name := range names {
		modules = append(modules, Module{Name: name, Nodes: d.NodesInModule(name)})
	}
	return modules
}
