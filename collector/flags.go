package collector

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/vainnor/reflector-dashboard/types"
)

// ParseFlags reads the dashboard country table, one country per line:
//
//	Germany;DE;DA-DB-DC-DD-DF-DG-DH-DJ-DK-DL-DM-DN-DO-DP-DQ-DR
func ParseFlags(r io.Reader) (*types.FlagTable, error) {
	cr := csv.NewReader(r)
	cr.Comma = ';'
	cr.Comment = '#'
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true

	var countries []types.Country
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading country table: %w", err)
		}
		if len(rec) < 3 {
			continue
		}
		countries = append(countries, types.Country{
			Name:     strings.TrimSpace(rec[0]),
			Code:     strings.TrimSpace(rec[1]),
			Prefixes: strings.Split(rec[2], "-"),
		})
	}
	return types.NewFlagTable(countries), nil
}

// LoadFlags opens and parses the country table at path.
func LoadFlags(path string) (*types.FlagTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ParseFlags(f)
}
