// Package portal lets hotspot owners register their callsign, sign in and
// store the transmit and receive frequencies used by the reflector.
package portal

import (
	"bytes"
	"embed"
	"errors"
	"html/template"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"golang.org/x/crypto/bcrypt"

	"github.com/vainnor/reflector-dashboard/config"
	"github.com/vainnor/reflector-dashboard/db"
	"github.com/vainnor/reflector-dashboard/logging"
	"github.com/vainnor/reflector-dashboard/metrics"
	"github.com/vainnor/reflector-dashboard/models"
)

const errSomethingWrong = "Oops! Something went wrong. Please try again later."

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.New("portal").Funcs(template.FuncMap{
	"mhz":   formatMHz,
	"field": newField,
}).ParseFS(templateFS, "templates/*.html"))

type Portal struct {
	sessions *Sessions
}

func New(cfg config.PortalConfig) (*Portal, error) {
	sessions, err := NewSessions(cfg)
	if err != nil {
		return nil, err
	}
	return &Portal{sessions: sessions}, nil
}

// RegisterRoutes mounts the portal screens under /portal.
func (p *Portal) RegisterRoutes(r *mux.Router) {
	s := r.PathPrefix("/portal").Subrouter()
	s.HandleFunc("/register", p.Register).Methods(http.MethodGet, http.MethodPost)
	s.HandleFunc("/login", p.Login).Methods(http.MethodGet, http.MethodPost)
	s.HandleFunc("/frequency", p.requireLogin(p.Frequency)).Methods(http.MethodGet, http.MethodPost)
	s.HandleFunc("/finish", p.requireLogin(p.Finish)).Methods(http.MethodGet)
	s.HandleFunc("/logout", p.Logout).Methods(http.MethodGet, http.MethodPost)
	s.Handle("/", http.RedirectHandler("/portal/login", http.StatusFound)).Methods(http.MethodGet)
}

// page is the data every portal template receives.
type page struct {
	Callsign string
	Errors   map[string]string
	TxMHz    string
	RxMHz    string
	Account  models.Account
}

func (p *Portal) render(w http.ResponseWriter, r *http.Request, name string, data page) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		p.fail(w, r, "render", err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(buf.Bytes())
}

func (p *Portal) fail(w http.ResponseWriter, r *http.Request, action string, err error) {
	logging.Ctx(r.Context()).Error().Err(err).Str("action", action).Msg("portal request failed")
	metrics.PortalEvents.WithLabelValues(action, "error").Inc()
	http.Error(w, errSomethingWrong, http.StatusInternalServerError)
}

// formField is one labelled input of a form.
type formField struct {
	Label string
	Type  string
	Name  string
	Value string
	Err   string
}

func newField(label, typ, name, value, err string) formField {
	return formField{Label: label, Type: typ, Name: name, Value: value, Err: err}
}

type callsignHandler func(w http.ResponseWriter, r *http.Request, callsign string)

func (p *Portal) requireLogin(next callsignHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		callsign, ok := p.sessions.Current(r)
		if !ok {
			http.Redirect(w, r, "/portal/login", http.StatusFound)
			return
		}
		next(w, r, callsign)
	}
}

func normalizeCallsign(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

func (p *Portal) Register(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		p.render(w, r, "register", page{})
		return
	}

	form := models.RegisterForm{
		Callsign:        normalizeCallsign(r.PostFormValue("callsign")),
		Password:        strings.TrimSpace(r.PostFormValue("password")),
		ConfirmPassword: strings.TrimSpace(r.PostFormValue("confirm_password")),
	}
	errs := validateForm(&form, "Please enter a password.")

	if _, bad := errs["Callsign"]; !bad {
		taken, err := db.CallsignExists(r.Context(), form.Callsign)
		if err != nil {
			p.fail(w, r, "register", err)
			return
		}
		if taken {
			if errs == nil {
				errs = make(map[string]string)
			}
			errs["Callsign"] = "This callsign is already taken."
		}
	}
	if len(errs) > 0 {
		metrics.PortalEvents.WithLabelValues("register", "invalid").Inc()
		p.render(w, r, "register", page{Callsign: form.Callsign, Errors: errs})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(form.Password), bcrypt.DefaultCost)
	if err != nil {
		p.fail(w, r, "register", err)
		return
	}
	if err := db.CreateAccount(r.Context(), form.Callsign, string(hash)); err != nil {
		if errors.Is(err, db.ErrCallsignTaken) {
			metrics.PortalEvents.WithLabelValues("register", "invalid").Inc()
			p.render(w, r, "register", page{
				Callsign: form.Callsign,
				Errors:   map[string]string{"Callsign": "This callsign is already taken."},
			})
			return
		}
		p.fail(w, r, "register", err)
		return
	}

	logging.Ctx(r.Context()).Info().Str("callsign", form.Callsign).Msg("account registered")
	metrics.PortalEvents.WithLabelValues("register", "ok").Inc()
	http.Redirect(w, r, "/portal/login", http.StatusSeeOther)
}

func (p *Portal) Login(w http.ResponseWriter, r *http.Request) {
	if _, ok := p.sessions.Current(r); ok {
		http.Redirect(w, r, "/portal/frequency", http.StatusFound)
		return
	}
	if r.Method != http.MethodPost {
		p.render(w, r, "login", page{})
		return
	}

	form := models.LoginForm{
		Callsign: normalizeCallsign(r.PostFormValue("callsign")),
		Password: strings.TrimSpace(r.PostFormValue("password")),
	}
	if errs := validateForm(&form, "Please enter your password."); len(errs) > 0 {
		p.render(w, r, "login", page{Callsign: form.Callsign, Errors: errs})
		return
	}

	account, err := db.GetAccount(r.Context(), form.Callsign)
	if errors.Is(err, db.ErrAccountNotFound) {
		metrics.PortalEvents.WithLabelValues("login", "invalid").Inc()
		p.render(w, r, "login", page{
			Callsign: form.Callsign,
			Errors:   map[string]string{"Callsign": "No account found with that callsign."},
		})
		return
	}
	if err != nil {
		p.fail(w, r, "login", err)
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(form.Password)); err != nil {
		metrics.PortalEvents.WithLabelValues("login", "invalid").Inc()
		p.render(w, r, "login", page{
			Callsign: form.Callsign,
			Errors:   map[string]string{"Password": "The password you entered was not valid."},
		})
		return
	}

	if err := p.sessions.Issue(w, account.Callsign); err != nil {
		p.fail(w, r, "login", err)
		return
	}
	metrics.PortalEvents.WithLabelValues("login", "ok").Inc()
	http.Redirect(w, r, "/portal/frequency", http.StatusSeeOther)
}

// parseMHz reads a submitted frequency. Anything that is not a number
// becomes NaN, which fails the range check.
func parseMHz(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return math.NaN()
	}
	return v
}

func toHz(mhz float64) int64 {
	return int64(math.Round(mhz * 1e6))
}

func formatMHz(mhz float64) string {
	return strconv.FormatFloat(mhz, 'f', -1, 64)
}

func (p *Portal) Frequency(w http.ResponseWriter, r *http.Request, callsign string) {
	account, err := db.GetAccount(r.Context(), callsign)
	if errors.Is(err, db.ErrAccountNotFound) {
		p.sessions.Clear(w)
		http.Redirect(w, r, "/portal/login", http.StatusFound)
		return
	}
	if err != nil {
		p.fail(w, r, "frequency", err)
		return
	}

	if r.Method != http.MethodPost {
		p.render(w, r, "frequency", page{
			Callsign: callsign,
			TxMHz:    formatMHz(account.TxMHz()),
			RxMHz:    formatMHz(account.RxMHz()),
		})
		return
	}

	rawTx, rawRx := r.PostFormValue("txfreq"), r.PostFormValue("rxfreq")
	form := models.FrequencyForm{TxMHz: parseMHz(rawTx), RxMHz: parseMHz(rawRx)}
	if errs := validateForm(&form, ""); len(errs) > 0 {
		metrics.PortalEvents.WithLabelValues("frequency", "invalid").Inc()
		p.render(w, r, "frequency", page{Callsign: callsign, Errors: errs, TxMHz: rawTx, RxMHz: rawRx})
		return
	}

	if err := db.SetFrequencies(r.Context(), callsign, toHz(form.TxMHz), toHz(form.RxMHz)); err != nil {
		p.fail(w, r, "frequency", err)
		return
	}
	logging.Ctx(r.Context()).Info().
		Str("callsign", callsign).
		Float64("tx_mhz", form.TxMHz).
		Float64("rx_mhz", form.RxMHz).
		Msg("frequencies updated")
	metrics.PortalEvents.WithLabelValues("frequency", "ok").Inc()
	http.Redirect(w, r, "/portal/finish", http.StatusSeeOther)
}

func (p *Portal) Finish(w http.ResponseWriter, r *http.Request, callsign string) {
	account, err := db.GetAccount(r.Context(), callsign)
	if errors.Is(err, db.ErrAccountNotFound) {
		p.sessions.Clear(w)
		http.Redirect(w, r, "/portal/login", http.StatusFound)
		return
	}
	if err != nil {
		p.fail(w, r, "finish", err)
		return
	}
	p.render(w, r, "finish", page{Callsign: callsign, Account: account})
}

func (p *Portal) Logout(w http.ResponseWriter, r *http.Request) {
	p.sessions.Clear(w)
	http.Redirect(w, r, "/portal/login", http.StatusFound)
}
