package portal

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"

	"github.com/vainnor/reflector-dashboard/config"
	"github.com/vainnor/reflector-dashboard/db"
)

func newTestPortal(t *testing.T) http.Handler {
	t.Helper()
	if err := db.InitDB(context.Background(), config.DatabaseConfig{Driver: "sqlite", Name: ":memory:"}); err != nil {
		t.Fatalf("InitDB: %v", err)
	}
	t.Cleanup(db.CloseDB)

	p, err := New(config.PortalConfig{SessionSecret: "test-secret", SessionTTL: time.Hour})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	r := mux.NewRouter()
	p.RegisterRoutes(r)
	return r
}

func post(h http.Handler, path string, form url.Values, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func getPage(h http.Handler, path string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func register(h http.Handler, callsign, password, confirm string) *httptest.ResponseRecorder {
	return post(h, "/portal/register", url.Values{
		"callsign":         {callsign},
		"password":         {password},
		"confirm_password": {confirm},
	})
}

func sessionCookieFrom(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == sessionCookie && c.Value != "" {
			return c
		}
	}
	t.Fatal("no session cookie set")
	return nil
}

func login(t *testing.T, h http.Handler, callsign, password string) *http.Cookie {
	t.Helper()
	rec := post(h, "/portal/login", url.Values{"callsign": {callsign}, "password": {password}})
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/portal/frequency" {
		t.Fatalf("login: status=%d location=%q body=%s", rec.Code, rec.Header().Get("Location"), rec.Body.String())
	}
	return sessionCookieFrom(t, rec)
}

func TestRegister(t *testing.T) {
	h := newTestPortal(t)

	rec := register(h, "n0call", "abcdef", "abcdef")
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/portal/login" {
		t.Fatalf("status=%d location=%q body=%s", rec.Code, rec.Header().Get("Location"), rec.Body.String())
	}

	exists, err := db.CallsignExists(context.Background(), "N0CALL")
	if err != nil || !exists {
		t.Fatalf("account not stored upper-cased: %v %v", exists, err)
	}
	a, err := db.GetAccount(context.Background(), "N0CALL")
	if err != nil {
		t.Fatal(err)
	}
	if a.PasswordHash == "abcdef" || a.PasswordHash == "" {
		t.Error("password stored unhashed")
	}

	rec = register(h, "N0CALL", "abcdef", "abcdef")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "This callsign is already taken.") {
		t.Errorf("duplicate: status=%d body=%s", rec.Code, rec.Body.String())
	}
}

func TestRegisterValidation(t *testing.T) {
	h := newTestPortal(t)

	tests := []struct {
		name     string
		callsign string
		password string
		confirm  string
		want     []string
	}{
		{"empty callsign", "  ", "abcdef", "abcdef", []string{"Please enter your callsign."}},
		{"too long", "DL1ABCDE", "abcdef", "abcdef", []string{"Callsign is too long."}},
		{"not a callsign", "QA1BC", "abcdef", "abcdef", []string{"Not a valid callsign."}},
		{"digits only", "1234", "abcdef", "abcdef", []string{"Not a valid callsign."}},
		{"empty password", "N0CALL", "", "", []string{"Please enter a password.", "Please confirm password."}},
		{"short password", "N0CALL", "abc", "abc", []string{"Password must have at least 6 characters."}},
		{"mismatch", "N0CALL", "abcdef", "abcdeg", []string{"Password did not match."}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := register(h, tt.callsign, tt.password, tt.confirm)
			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d", rec.Code)
			}
			body := rec.Body.String()
			for _, want := range tt.want {
				if !strings.Contains(body, want) {
					t.Errorf("body missing %q", want)
				}
			}
		})
	}

	if exists, _ := db.CallsignExists(context.Background(), "N0CALL"); exists {
		t.Error("invalid form created an account")
	}
}

func TestShortPasswordHidesMismatch(t *testing.T) {
	h := newTestPortal(t)
	rec := register(h, "N0CALL", "abc", "xyz")
	if strings.Contains(rec.Body.String(), "Password did not match.") {
		t.Error("mismatch reported while password itself is invalid")
	}
}

func TestIsValidCallsign(t *testing.T) {
	tests := map[string]bool{
		"N0CALL": true,
		"W1AW":   true,
		"DL1ABC": true,
		"2E0ABC": true,
		"9A1A":   true,
		"Q1ABC":  false,
		"W1AW1":  false,
		"0A1B":   false,
		"n0call": false,
	}
	for cs, want := range tests {
		if got := IsValidCallsign(cs); got != want {
			t.Errorf("IsValidCallsign(%q) = %v, want %v", cs, got, want)
		}
	}
}

func TestLogin(t *testing.T) {
	h := newTestPortal(t)
	register(h, "N0CALL", "abcdef", "abcdef")

	tests := []struct {
		name     string
		callsign string
		password string
		want     string
	}{
		{"empty callsign", "", "abcdef", "Please enter your callsign."},
		{"empty password", "N0CALL", "", "Please enter your password."},
		{"unknown", "W1AW", "abcdef", "No account found with that callsign."},
		{"wrong password", "N0CALL", "abcdeg", "The password you entered was not valid."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := post(h, "/portal/login", url.Values{"callsign": {tt.callsign}, "password": {tt.password}})
			if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), tt.want) {
				t.Errorf("status=%d, body missing %q", rec.Code, tt.want)
			}
		})
	}

	cookie := login(t, h, "n0call", "abcdef")
	if !cookie.HttpOnly {
		t.Error("session cookie should be HttpOnly")
	}

	rec := getPage(h, "/portal/login", cookie)
	if rec.Code != http.StatusFound || rec.Header().Get("Location") != "/portal/frequency" {
		t.Errorf("logged-in login page: status=%d location=%q", rec.Code, rec.Header().Get("Location"))
	}
}

func TestFrequencyRequiresLogin(t *testing.T) {
	h := newTestPortal(t)
	for _, path := range []string{"/portal/frequency", "/portal/finish"} {
		rec := getPage(h, path)
		if rec.Code != http.StatusFound || rec.Header().Get("Location") != "/portal/login" {
			t.Errorf("%s: status=%d location=%q", path, rec.Code, rec.Header().Get("Location"))
		}
	}

	forged := &http.Cookie{Name: sessionCookie, Value: "not.a.token"}
	if rec := getPage(h, "/portal/frequency", forged); rec.Code != http.StatusFound {
		t.Errorf("forged cookie accepted: status=%d", rec.Code)
	}
}

func TestFrequencyOutOfRange(t *testing.T) {
	h := newTestPortal(t)
	register(h, "N0CALL", "abcdef", "abcdef")
	cookie := login(t, h, "N0CALL", "abcdef")

	tests := []struct {
		tx, rx string
		want   []string
	}{
		{"1500", "430.2", []string{"TX out of range."}},
		{"438.8", "9.99", []string{"RX out of range."}},
		{"abc", "", []string{"TX out of range.", "RX out of range."}},
	}
	for _, tt := range tests {
		rec := post(h, "/portal/frequency", url.Values{"txfreq": {tt.tx}, "rxfreq": {tt.rx}}, cookie)
		if rec.Code != http.StatusOK {
			t.Fatalf("tx=%s rx=%s: status = %d", tt.tx, tt.rx, rec.Code)
		}
		for _, want := range tt.want {
			if !strings.Contains(rec.Body.String(), want) {
				t.Errorf("tx=%s rx=%s: body missing %q", tt.tx, tt.rx, want)
			}
		}
	}

	a, err := db.GetAccount(context.Background(), "N0CALL")
	if err != nil {
		t.Fatal(err)
	}
	if a.TxFreqHz != 0 || a.RxFreqHz != 0 {
		t.Errorf("frequencies written despite errors: %+v", a)
	}
}

func TestFrequencyUpdateAndFinish(t *testing.T) {
	h := newTestPortal(t)
	register(h, "N0CALL", "abcdef", "abcdef")
	cookie := login(t, h, "N0CALL", "abcdef")

	rec := post(h, "/portal/frequency", url.Values{"txfreq": {"438.8125"}, "rxfreq": {"430.2"}}, cookie)
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/portal/finish" {
		t.Fatalf("status=%d location=%q body=%s", rec.Code, rec.Header().Get("Location"), rec.Body.String())
	}

	a, err := db.GetAccount(context.Background(), "N0CALL")
	if err != nil {
		t.Fatal(err)
	}
	if a.TxFreqHz != 438_812_500 || a.RxFreqHz != 430_200_000 {
		t.Errorf("stored = %d / %d", a.TxFreqHz, a.RxFreqHz)
	}

	rec = getPage(h, "/portal/frequency", cookie)
	if !strings.Contains(rec.Body.String(), `value="438.8125"`) {
		t.Errorf("frequency form does not show stored value:\n%s", rec.Body.String())
	}

	rec = getPage(h, "/portal/finish", cookie)
	body := rec.Body.String()
	if rec.Code != http.StatusOK || !strings.Contains(body, "438.8125 MHz") || !strings.Contains(body, "430.2 MHz") {
		t.Errorf("finish: status=%d body=%s", rec.Code, body)
	}
}

func TestLogout(t *testing.T) {
	h := newTestPortal(t)
	rec := getPage(h, "/portal/logout")
	if rec.Code != http.StatusFound || rec.Header().Get("Location") != "/portal/login" {
		t.Fatalf("status=%d location=%q", rec.Code, rec.Header().Get("Location"))
	}
	var cleared bool
	for _, c := range rec.Result().Cookies() {
		if c.Name == sessionCookie && c.MaxAge < 0 {
			cleared = true
		}
	}
	if !cleared {
		t.Error("session cookie not cleared")
	}
}

func TestToHz(t *testing.T) {
	tests := map[float64]int64{
		438.8:    438_800_000,
		430.0125: 430_012_500,
		10:       10_000_000,
	}
	for mhz, want := range tests {
		if got := toHz(mhz); got != want {
			t.Errorf("toHz(%v) = %d, want %d", mhz, got, want)
		}
	}
}
