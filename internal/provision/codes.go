package provision

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
)

const (
	companyCodeAttempts = 40
	rosterIDAttempts    = 80
)

// uniqueCompanyCode draws PREFIX+6digit candidates until one is free. After
// the attempt budget it falls back to a timestamp-suffixed code rather than
// failing signup over a run of collisions.
func (s *Service) uniqueCompanyCode(ctx context.Context, companyName string) (string, error) {
	prefix := CompanyCodePrefix(companyName)

	for i := 0; i < companyCodeAttempts; i++ {
		digits, err := randomDigits(6)
		if err != nil {
			return "", err
		}
		candidate := prefix + digits

		taken, err := s.store.CompanyCodeExists(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
	}

	return fmt.Sprintf("%s%06d", prefix, s.now().UnixMilli()%1000000), nil
}

// NewRosterID generates a unique human-readable roster identifier
// (PREFIX+9digits) within a company. After the attempt budget the last
// candidate is used as-is; a duplicate there is vanishingly unlikely and the
// backend will still reject it if it happens.
func (s *Service) NewRosterID(ctx context.Context, companyID, companyName string) (string, error) {
	prefix := RosterIDPrefix(companyName)

	var candidate string
	for i := 0; i < rosterIDAttempts; i++ {
		digits, err := randomDigits(9)
		if err != nil {
			return "", err
		}
		candidate = prefix + digits

		taken, err := s.store.EmployeeRosterIDExists(ctx, companyID, candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
	}
	return candidate, nil
}

// CompanyCodePrefix keeps the first three ASCII alphanumerics of the name,
// upper-cased, defaulting to COM.
func CompanyCodePrefix(companyName string) string {
	p := alnumPrefix(companyName)
	if p == "" {
		return "COM"
	}
	return p
}

// RosterIDPrefix is like CompanyCodePrefix but pads short names with X so the
// identifier always has a 3-character prefix.
func RosterIDPrefix(companyName string) string {
	p := alnumPrefix(companyName)
	if p == "" {
		p = "COM"
	}
	for len(p) < 3 {
		p += "X"
	}
	return p
}

func alnumPrefix(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z':
			b.WriteRune(r - 'a' + 'A')
		case (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9'):
			b.WriteRune(r)
		}
		if b.Len() == 3 {
			break
		}
	}
	return b.String()
}

func randomDigits(n int) (string, error) {
	max := big.NewInt(1)
	for i := 0; i < n; i++ {
		max.Mul(max, big.NewInt(10))
	}
	v, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", n, v), nil
}
