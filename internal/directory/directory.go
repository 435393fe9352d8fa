// Package directory provides read-only lookup over employee and
// manager records for LeavePipe.
//
// Phone matching tolerates country-code prefixes by comparing the
// trailing 10 digits of both sides.
package directory

import (
	"log/slog"
	"regexp"
	"strings"

	"github.com/BTreeMap/LeavePipe/internal/models"
)

// PhoneMatchDigits is how many trailing digits two phone numbers must
// share to be considered the same line.
const PhoneMatchDigits = 10

// Directory is the read-only people lookup consumed by the engine.
type Directory interface {
	// FindByPhone resolves a person by phone number, matching on the
	// trailing digits. Returns nil when no record matches.
	FindByPhone(phone string) (*models.Person, error)

	// FindByName resolves a person by exact case-insensitive name match.
	// Returns nil when no record matches.
	FindByName(name string) (*models.Person, error)

	// ListOthers returns up to limit people excluding the named person,
	// in deterministic order. Used for substitute suggestions.
	ListOthers(excludeName string, limit int) ([]models.Person, error)
}

var nonDigitRe = regexp.MustCompile(`[^\d]`)

// CanonicalPhone strips everything but digits from a phone number.
func CanonicalPhone(phone string) string {
	return nonDigitRe.ReplaceAllString(phone, "")
}

// SamePhone reports whether two phone numbers refer to the same line,
// comparing the trailing PhoneMatchDigits digits.
func SamePhone(a, b string) bool {
	ca, cb := CanonicalPhone(a), CanonicalPhone(b)
	if ca == "" || cb == "" {
		return false
	}
	return tail(ca, PhoneMatchDigits) == tail(cb, PhoneMatchDigits)
}

func tail(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}

// ManagerCheck answers "is this phone the designated manager" against a
// single configured manager address.
type ManagerCheck struct {
	managerPhone string
}

// NewManagerCheck creates a ManagerCheck for the configured manager
// address. An empty address means nobody is the manager.
func NewManagerCheck(managerPhone string) *ManagerCheck {
	if managerPhone == "" {
		slog.Warn("ManagerCheck created without a manager phone; manager commands will be unreachable")
	}
	return &ManagerCheck{managerPhone: managerPhone}
}

// IsManager reports whether the phone belongs to the configured manager.
func (m *ManagerCheck) IsManager(phone string) bool {
	if m.managerPhone == "" {
		return false
	}
	return SamePhone(m.managerPhone, phone)
}

// Phone returns the configured manager address.
func (m *ManagerCheck) Phone() string {
	return m.managerPhone
}

// InMemoryDirectory is a Directory over a fixed slice of people.
// Used in tests and for seed-file deployments.
type InMemoryDirectory struct {
	people []models.Person
}

// NewInMemoryDirectory creates a directory over the given records.
func NewInMemoryDirectory(people []models.Person) *InMemoryDirectory {
	return &InMemoryDirectory{people: people}
}

// FindByPhone resolves a person by trailing-digit phone match.
func (d *InMemoryDirectory) FindByPhone(phone string) (*models.Person, error) {
	for i := range d.people {
		if SamePhone(d.people[i].Phone, phone) {
			p := d.people[i]
			return &p, nil
		}
	}
	slog.Debug("InMemoryDirectory FindByPhone no match", "digits", tail(CanonicalPhone(phone), PhoneMatchDigits))
	return nil, nil
}

// FindByName resolves a person by exact case-insensitive name match.
func (d *InMemoryDirectory) FindByName(name string) (*models.Person, error) {
	for i := range d.people {
		if strings.EqualFold(d.people[i].Name, name) {
			p := d.people[i]
			return &p, nil
		}
	}
	return nil, nil
}

// ListOthers returns up to limit people excluding the named person, in
// directory order.
func (d *InMemoryDirectory) ListOthers(excludeName string, limit int) ([]models.Person, error) {
	var out []models.Person
	for i := range d.people {
		if strings.EqualFold(d.people[i].Name, excludeName) {
			continue
		}
		out = append(out, d.people[i])
		if len(out) == limit {
			break
		}
	}
	return out, nil
}
