package collector

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/vainnor/reflector-dashboard/types"
)

// The daemon stamps records with strftime("%A %c"), e.g.
// "Monday Mon Jan 15 10:00:00 2024". Fields are re-joined with single
// spaces before parsing since %c pads the day of month.
const statusTimeLayout = "Monday Mon Jan 2 15:04:05 2006"

var errMalformedStatus = errors.New("malformed status document")

// section tags are written as "<" + reflector callsign + suffix + ">".
var sectionSuffixes = []string{"linked peers>", "linked nodes>", "heard users>"}

// ParseStatus reads the daemon's status document. Element names such as
// <XLX270  linked peers> or <Via node> contain spaces, so the document is
// scanned by tag text rather than decoded as XML.
func ParseStatus(r io.Reader, loc *time.Location) (*types.ReflectorData, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading status: %w", err)
	}
	doc := string(raw)
	if loc == nil {
		loc = time.UTC
	}

	data := &types.ReflectorData{
		Version: strings.TrimSpace(element(doc, "Version")),
		Name:    reflectorName(doc),
	}
	if data.Version == "" && data.Name == "" {
		return nil, errMalformedStatus
	}

	for _, block := range elements(doc, "PEER") {
		data.Peers = append(data.Peers, types.Peer{
			Callsign:      strings.TrimSpace(element(block, "Callsign")),
			IP:            strings.TrimSpace(element(block, "IP")),
			LinkedModule:  strings.TrimSpace(element(block, "LinkedModule")),
			Protocol:      strings.TrimSpace(element(block, "Protocol")),
			ConnectTime:   parseStatusTime(element(block, "ConnectTime"), loc),
			LastHeardTime: parseStatusTime(element(block, "LastHeardTime"), loc),
		})
	}

	for _, block := range elements(doc, "NODE") {
		callsign, suffix := splitFirst(element(block, "Callsign"))
		data.Nodes = append(data.Nodes, types.Node{
			Callsign:      callsign,
			Suffix:        suffix,
			IP:            strings.TrimSpace(element(block, "IP")),
			LinkedModule:  strings.TrimSpace(element(block, "LinkedModule")),
			Protocol:      strings.TrimSpace(element(block, "Protocol")),
			ConnectTime:   parseStatusTime(element(block, "ConnectTime"), loc),
			LastHeardTime: parseStatusTime(element(block, "LastHeardTime"), loc),
		})
	}

	for _, block := range elements(doc, "STATION") {
		callsign, extra := splitFirst(element(block, "Callsign"))
		via := strings.TrimSpace(element(block, "Via node"))
		viaCallsign, viaSuffix := splitFirst(via)
		data.Stations = append(data.Stations, types.Station{
			Callsign:        callsign,
			CallsignExtra:   extra,
			ViaNode:         via,
			ViaNodeCallsign: viaCallsign,
			ViaNodeSuffix:   firstField(viaSuffix),
			OnModule:        strings.TrimSpace(element(block, "On module")),
			ViaPeer:         strings.TrimSpace(element(block, "Via peer")),
			LastHeardTime:   parseStatusTime(element(block, "LastHeardTime"), loc),
		})
	}

	return data, nil
}

// element returns the text of the first <tag>...</tag> in s.
func element(s, tag string) string {
	openTag, closeTag := "<"+tag+">", "</"+tag+">"
	i := strings.Index(s, openTag)
	if i < 0 {
		return ""
	}
	s = s[i+len(openTag):]
	j := strings.Index(s, closeTag)
	if j < 0 {
		return ""
	}
	return s[:j]
}

// elements returns the bodies of every <tag>...</tag> in document order.
func elements(s, tag string) []string {
	openTag, closeTag := "<"+tag+">", "</"+tag+">"
	var out []string
	for {
		i := strings.Index(s, openTag)
		if i < 0 {
			return out
		}
		s = s[i+len(openTag):]
		j := strings.Index(s, closeTag)
		if j < 0 {
			return out
		}
		out = append(out, s[:j])
		s = s[j+len(closeTag):]
	}
}

func reflectorName(doc string) string {
	for _, suffix := range sectionSuffixes {
		i := strings.Index(doc, suffix)
		if i < 0 {
			continue
		}
		start := strings.LastIndex(doc[:i], "<")
		if start < 0 {
			continue
		}
		name := strings.TrimPrefix(doc[start+1:i], "/")
		return strings.TrimSpace(name)
	}
	return ""
}

// splitFirst splits at the first run of whitespace.
func splitFirst(s string) (head, rest string) {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return "", ""
	}
	return fields[0], strings.Join(fields[1:], " ")
}

func firstField(s string) string {
	head, _ := splitFirst(s)
	return head
}

func parseStatusTime(s string, loc *time.Location) time.Time {
	s = strings.Join(strings.Fields(s), " ")
	if s == "" {
		return time.Time{}
	}
	t, err := time.ParseInLocation(statusTimeLayout, s, loc)
	if err != nil {
		return time.Time{}
	}
	return t.UTC()
}
