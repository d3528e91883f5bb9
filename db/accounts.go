package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/vainnor/reflector-dashboard/models"
)

var (
	ErrAccountNotFound = errors.New("account not found")
	ErrCallsignTaken   = errors.New("callsign already registered")
)

// CallsignExists reports whether an account is registered for callsign.
func CallsignExists(ctx context.Context, callsign string) (bool, error) {
	var found string
	err := DB.QueryRowContext(ctx, `SELECT callsign FROM ysfnodes WHERE callsign = $1`, callsign).Scan(&found)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("looking up callsign %s: %w", callsign, err)
	}
	return true, nil
}

// CreateAccount inserts a new account with zero frequencies.
func CreateAccount(ctx context.Context, callsign, passwordHash string) error {
	_, err := DB.ExecContext(ctx, `INSERT INTO ysfnodes (callsign, password) VALUES ($1, $2)`, callsign, passwordHash)
	if err == nil {
		return nil
	}
	// A concurrent registration can win between the existence check and the insert.
	if exists, lookupErr := CallsignExists(ctx, callsign); lookupErr == nil && exists {
		return ErrCallsignTaken
	}
	return fmt.Errorf("creating account %s: %w", callsign, err)
}

// GetAccount loads the account row for callsign.
func GetAccount(ctx context.Context, callsign string) (models.Account, error) {
	a := models.Account{Callsign: callsign}
	err := DB.QueryRowContext(ctx,
		`SELECT password, txfreq, rxfreq FROM ysfnodes WHERE callsign = $1`, callsign,
	).Scan(&a.PasswordHash, &a.TxFreqHz, &a.RxFreqHz)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Account{}, ErrAccountNotFound
	}
	if err != nil {
		return models.Account{}, fmt.Errorf("loading account %s: %w", callsign, err)
	}
	return a, nil
}

// SetFrequencies stores tx and rx frequencies in Hz.
func SetFrequencies(ctx context.Context, callsign string, txHz, rxHz int64) error {
	res, err := DB.ExecContext(ctx,
		`UPDATE ysfnodes SET txfreq = $1, rxfreq = $2 WHERE callsign = $3`, txHz, rxHz, callsign)
	if err != nil {
		return fmt.Errorf("updating frequencies for %s: %w", callsign, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrAccountNotFound
	}
	return nil
}
