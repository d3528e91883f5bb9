package api

import (
	"time"

	"github.com/vainnor/reflector-dashboard/types"
)

// jsonTimeLayout renders as e.g. 2024-01-15T10:00:00Z once a time is in UTC.
const jsonTimeLayout = "2006-01-02T15:04:05Z07:00"

// formatTime renders t in UTC. A missing time renders as the Unix epoch.
func formatTime(t time.Time) string {
	if t.IsZero() {
		t = time.Unix(0, 0)
	}
	return t.UTC().Format(jsonTimeLayout)
}

func unixOrZero(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.Unix()
}

func statusWord(running bool) string {
	if running {
		return "up"
	}
	return "down"
}

func RenderLinks(d *types.ReflectorData) []LinkItem {
	items := make([]LinkItem, 0, len(d.Nodes))
	for _, n := range d.Nodes {
		items = append(items, LinkItem{
			Callsign:      n.Callsign + " " + n.Suffix,
			IP:            n.IP,
			LinkedModule:  n.LinkedModule,
			Protocol:      n.Protocol,
			ConnectTime:   formatTime(n.ConnectTime),
			LastHeardTime: formatTime(n.LastHeardTime),
		})
	}
	return items
}

func RenderPeers(d *types.ReflectorData) []PeerItem {
	items := make([]PeerItem, 0, len(d.Peers))
	for _, p := range d.Peers {
		items = append(items, PeerItem{
			Callsign:      p.Callsign,
			IP:            p.IP,
			LinkedModule:  p.LinkedModule,
			ConnectTime:   formatTime(p.ConnectTime),
			LastHeardTime: formatTime(p.LastHeardTime),
		})
	}
	return items
}

func RenderStations(d *types.ReflectorData) StationsResponse {
	items := make([]StationItem, 0, len(d.Stations))
	for _, s := range d.Stations {
		code, name := d.Flags.Lookup(s.Callsign)
		items = append(items, StationItem{
			Callsign:       s.Callsign,
			CallsignSuffix: s.ViaNodeSuffix,
			ViaNode:        s.ViaNode,
			OnModule:       s.OnModule,
			LastHeard:      formatTime(s.LastHeardTime),
			Country:        CountryInfo{Country: name, CountryCode: code},
		})
	}
	return StationsResponse{Stations: items}
}

func RenderModules(d *types.ReflectorData) []ModuleItem {
	modules := d.ModulesInUse()
	items := make([]ModuleItem, 0, len(modules))
	for _, m := range modules {
		callsigns := make([]string, 0, len(m.Nodes))
		for _, n := range m.Nodes {
			callsigns = append(callsigns, n.CallsignWithSuffix())
		}
		items = append(items, ModuleItem{Name: m.Name, Callsigns: callsigns})
	}
	return items
}

// DashboardInfo is the operator-supplied part of /json/metadata.
type DashboardInfo struct {
	Version      string
	ContactEmail string
	IPv4         string
	IPv6         string
}

func RenderMetadata(d *types.ReflectorData, info DashboardInfo) MetadataResponse {
	return MetadataResponse{
		DashboardVersion:  info.Version,
		IPv4:              info.IPv4,
		IPv6:              info.IPv6,
		ReflectorCallsign: d.DisplayName(),
		ReflectorVersion:  d.Version,
		SysopEmail:        info.ContactEmail,
	}
}

func RenderStatus(d *types.ReflectorData, now time.Time) StatusResponse {
	return StatusResponse{
		LastUpdate:             now.Unix(),
		LastURFDUpdate:         unixOrZero(d.FileTime),
		ReflectorStatus:        statusWord(d.Running),
		ReflectorUptimeSeconds: int64(d.Uptime / time.Second),
	}
}

func RenderReflector(d *types.ReflectorData, now time.Time) ReflectorResponse {
	stations := make([]ReflectorStation, 0, len(d.Stations))
	for _, s := range d.Stations {
		stations = append(stations, ReflectorStation{
			Callsign:      s.Callsign,
			ViaNode:       s.ViaNode,
			OnModule:      s.OnModule,
			ViaPeer:       s.ViaPeer,
			LastHeardTime: formatTime(s.LastHeardTime),
		})
	}
	return ReflectorResponse{
		LastUpdateCheckTime: formatTime(now),
		Status:              statusWord(d.Running),
		Uptime:              int64(d.Uptime / time.Second),
		Data: ReflectorDetail{
			FileTime: formatTime(d.FileTime),
			Callsign: d.DisplayName(),
			Version:  d.Version,
			Peers:    RenderPeers(d),
			Nodes:    RenderLinks(d),
			Stations: stations,
		},
	}
}
