package api

import (
	"fmt"
	"net/netip"
	"strings"

	"github.com/vainnor/reflector-dashboard/config"
)

// visibleParts is the number of trailing octets or groups each mode shows.
var visibleParts = map[string]int{
	config.ShowLast1ByteOfIP: 1,
	config.ShowLast2ByteOfIP: 2,
	config.ShowLast3ByteOfIP: 3,
}

// MaskIP hides the leading octets (IPv4) or groups (IPv6) of addr according
// to mode. IPv6 addresses are expanded to eight groups first.
func MaskIP(addr, mode, mask string) string {
	switch mode {
	case config.ShowFullIP:
		return addr
	case config.HideIP:
		return ""
	}
	keep, ok := visibleParts[mode]
	if !ok {
		return addr
	}

	ip, err := netip.ParseAddr(strings.TrimSpace(addr))
	if err != nil {
		return mask
	}
	ip = ip.WithZone("")

	var parts []string
	if ip.Is4() || ip.Is4In6() {
		for _, b := range ip.Unmap().As4() {
			parts = append(parts, fmt.Sprintf("%d", b))
		}
		return joinMasked(parts, keep, mask, ".")
	}

	raw := ip.As16()
	for i := 0; i < 16; i += 2 {
		parts = append(parts, fmt.Sprintf("%x", uint16(raw[i])<<8|uint16(raw[i+1])))
	}
	return joinMasked(parts, keep, mask, ":")
}

func joinMasked(parts []string, keep int, mask, sep string) string {
	out := make([]string, len(parts))
	for i, p := range parts {
		if i < len(parts)-keep {
			out[i] = mask
		} else {
			out[i] = p
		}
	}
	return strings.Join(out, sep)
}
