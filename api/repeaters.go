package api

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"strings"
	"time"

	"github.com/vainnor/reflector-dashboard/config"
	"github.com/vainnor/reflector-dashboard/types"
)

//go:embed templates/*.html
var templateFS embed.FS

var repeatersTemplate = template.Must(template.ParseFS(templateFS, "templates/repeaters.html"))

const lastHeardLayout = "02.01.2006 15:04"

// RepeatersOptions controls the repeaters table.
type RepeatersOptions struct {
	IPMode   string
	MaskChar string
	// LimitTo caps node rows, 0 means unlimited. Gateway rows are not capped.
	LimitTo int
	// FlagExists reports whether an image exists for a country code. A nil
	// func shows every known flag.
	FlagExists func(code string) bool
}

type RepeaterRow struct {
	Index     int
	FlagCode  string
	FlagName  string
	Callsign  string
	LastHeard string
	LinkedFor string
	Protocol  string
	IP        string
}

type RepeatersView struct {
	ShowIP bool
	Rows   []RepeaterRow
}

// BuildRepeatersView lists nodes first, then gateways, numbered from 1.
func BuildRepeatersView(d *types.ReflectorData, gateways []types.Gateway, opts RepeatersOptions, now time.Time) RepeatersView {
	view := RepeatersView{ShowIP: opts.IPMode != config.HideIP}

	flag := func(callsign string) (string, string) {
		code, name := d.Flags.Lookup(callsign)
		if code == "" || (opts.FlagExists != nil && !opts.FlagExists(code)) {
			return "", ""
		}
		return code, name
	}

	for i, n := range d.Nodes {
		if opts.LimitTo > 0 && i >= opts.LimitTo {
			break
		}
		code, name := flag(n.Callsign)
		view.Rows = append(view.Rows, RepeaterRow{
			Index:     len(view.Rows) + 1,
			FlagCode:  code,
			FlagName:  name,
			Callsign:  n.Callsign,
			LastHeard: n.LastHeardTime.UTC().Format(lastHeardLayout),
			LinkedFor: formatSeconds(now.Sub(n.ConnectTime)) + " s",
			Protocol:  n.Protocol,
			IP:        MaskIP(n.IP, opts.IPMode, opts.MaskChar),
		})
	}

	for _, g := range gateways {
		code, name := flag(g.Callsign)
		view.Rows = append(view.Rows, RepeaterRow{
			Index:    len(view.Rows) + 1,
			FlagCode: code,
			FlagName: name,
			Callsign: firstToken(g.Callsign),
			Protocol: g.Protocol,
			IP:       MaskIP(g.Host(), opts.IPMode, opts.MaskChar),
		})
	}
	return view
}

func firstToken(s string) string {
	if f := strings.Fields(s); len(f) > 0 {
		return f[0]
	}
	return ""
}

// formatSeconds renders a duration as "N days HH:MM:SS".
func formatSeconds(d time.Duration) string {
	secs := int64(d / time.Second)
	if secs < 0 {
		secs = -secs
	}
	return fmt.Sprintf("%d days %02d:%02d:%02d", secs/86400, (secs/3600)%24, (secs/60)%60, secs%60)
}

// RenderRepeaters writes the table partial.
func RenderRepeaters(w io.Writer, view RepeatersView) error {
	return repeatersTemplate.ExecuteTemplate(w, "repeaters", view)
}
