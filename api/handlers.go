package api

import (
	"bytes"
	"context"
	"net"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/goccy/go-json"

	"github.com/vainnor/reflector-dashboard/config"
	"github.com/vainnor/reflector-dashboard/logging"
	"github.com/vainnor/reflector-dashboard/services/gatewaylog"
	"github.com/vainnor/reflector-dashboard/types"
)

// Resolver looks up the dashboard host for /json/metadata.
type Resolver interface {
	LookupIPAddr(ctx context.Context, host string) ([]net.IPAddr, error)
}

// Handler serves the dashboard views. Every request reads a fresh snapshot.
type Handler struct {
	collector  Collector
	cfg        *config.Config
	resolver   Resolver
	now        func() time.Time
	flagExists func(code string) bool
}

func NewHandler(collector Collector, cfg *config.Config) *Handler {
	h := &Handler{
		collector: collector,
		cfg:       cfg,
		resolver:  net.DefaultResolver,
		now:       time.Now,
	}
	if dir := cfg.Reflector.FlagDir; dir != "" {
		h.flagExists = func(code string) bool {
			_, err := os.Stat(filepath.Join(dir, code+".png"))
			return err == nil
		}
	}
	return h
}

// WithClock replaces the request clock.
func (h *Handler) WithClock(now func() time.Time) *Handler {
	h.now = now
	return h
}

// WithResolver replaces the DNS resolver used for metadata.
func (h *Handler) WithResolver(r Resolver) *Handler {
	h.resolver = r
	return h
}

func (h *Handler) snapshot(r *http.Request) *types.ReflectorData {
	data, err := h.collector.GetCurrentData(r.Context())
	if err != nil {
		logging.Ctx(r.Context()).Warn().Err(err).Msg("serving without reflector status")
	}
	if data == nil {
		data = &types.ReflectorData{}
	}
	return data
}

func writeJSON(w http.ResponseWriter, r *http.Request, v interface{}) {
	body, err := json.Marshal(v)
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("encoding response")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(body)
}

func (h *Handler) GetLinks(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, RenderLinks(h.snapshot(r)))
}

func (h *Handler) GetPeers(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, RenderPeers(h.snapshot(r)))
}

func (h *Handler) GetStations(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, RenderStations(h.snapshot(r)))
}

func (h *Handler) GetModulesInUse(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, RenderModules(h.snapshot(r)))
}

func (h *Handler) GetStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, RenderStatus(h.snapshot(r), h.now()))
}

func (h *Handler) GetReflector(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, RenderReflector(h.snapshot(r), h.now()))
}

func (h *Handler) GetMetadata(w http.ResponseWriter, r *http.Request) {
	data := h.snapshot(r)
	info := DashboardInfo{
		Version:      h.cfg.Dashboard.Version,
		ContactEmail: h.cfg.Dashboard.ContactEmail,
	}
	info.IPv4, info.IPv6 = h.lookupDashboardHost(r.Context())
	writeJSON(w, r, RenderMetadata(data, info))
}

// lookupDashboardHost returns the first A and AAAA record of the dashboard URL host.
func (h *Handler) lookupDashboardHost(ctx context.Context) (v4, v6 string) {
	if h.cfg.Dashboard.URL == "" || h.resolver == nil {
		return "", ""
	}
	u, err := url.Parse(h.cfg.Dashboard.URL)
	if err != nil || u.Hostname() == "" {
		return "", ""
	}

	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	addrs, err := h.resolver.LookupIPAddr(ctx, u.Hostname())
	if err != nil {
		logging.Ctx(ctx).Debug().Err(err).Str("host", u.Hostname()).Msg("dashboard host lookup failed")
		return "", ""
	}
	for _, a := range addrs {
		if ip4 := a.IP.To4(); ip4 != nil {
			if v4 == "" {
				v4 = ip4.String()
			}
		} else if v6 == "" {
			v6 = a.IP.String()
		}
	}
	return v4, v6
}

// GetRepeaters renders the repeaters table partial: connected nodes followed
// by gateways linked to the auxiliary reflectors.
func (h *Handler) GetRepeaters(w http.ResponseWriter, r *http.Request) {
	data := h.snapshot(r)
	now := h.now()

	var gateways []types.Gateway
	for _, src := range h.cfg.Gateways {
		found, err := gatewaylog.ScanFile(r.Context(), src, now)
		if err != nil {
			logging.Ctx(r.Context()).Warn().Err(err).Str("protocol", src.Protocol).Msg("gateway log unavailable")
			continue
		}
		gateways = append(gateways, found...)
	}

	view := BuildRepeatersView(data, gateways, RepeatersOptions{
		IPMode:     h.cfg.Dashboard.IPMode,
		MaskChar:   h.cfg.Dashboard.MaskChar,
		LimitTo:    h.cfg.Dashboard.LimitTo,
		FlagExists: h.flagExists,
	}, now)

	var buf bytes.Buffer
	if err := RenderRepeaters(&buf, view); err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("rendering repeaters")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(buf.Bytes())
}

// NotFound answers unknown paths with a plain-text 404.
func NotFound(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusNotFound)
	w.Write([]byte("404 page not found"))
}
