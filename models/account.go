package models

// Account is one row of the ysfnodes table.
type Account struct {
	Callsign     string `json:"callsign"`
	PasswordHash string `json:"-"`
	TxFreqHz     int64  `json:"txfreq"`
	RxFreqHz     int64  `json:"rxfreq"`
}

// TxMHz returns the transmit frequency in MHz.
func (a Account) TxMHz() float64 {
	return float64(a.TxFreqHz) / 1e6
}

// RxMHz returns the receive frequency in MHz.
func (a Account) RxMHz() float64 {
	return float64(a.RxFreqHz) / 1e6
}

// RegisterForm is the submitted registration form.
type RegisterForm struct {
	Callsign        string `validate:"required,max=7,callsign"`
	Password        string `validate:"required,min=6"`
	ConfirmPassword string `validate:"required,eqfield=Password"`
}

type LoginForm struct {
	Callsign string `validate:"required"`
	Password string `validate:"required"`
}

// FrequencyForm carries frequencies in MHz.
type FrequencyForm struct {
	TxMHz float64 `validate:"gte=10,lte=1000"`
	RxMHz float64 `validate:"gte=10,lte=1000"`
}
