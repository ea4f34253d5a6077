// Package fakedata builds the synthetic records served by the fake API.
package fakedata

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/benvon/fake-api/internal/models"
	"github.com/brianvoe/gofakeit/v7"
)

const (
	// DefaultUserCount is the number of users generated when none is configured
	DefaultUserCount = 10
	// DefaultSeed keeps the dataset stable across restarts
	DefaultSeed uint64 = 42
)

// Dataset is an immutable set of fake users, generated once and shared by all requests.
type Dataset struct {
	users []models.User
}

// NewDataset generates count users from seed. A zero seed uses DefaultSeed
// because gofakeit treats zero as "seed randomly".
func NewDataset(count int, seed uint64) *Dataset {
	if count < 1 {
		count = DefaultUserCount
	}
	if seed == 0 {
		seed = DefaultSeed
	}
	return &Dataset{users: generateUsers(count, seed)}
}

func generateUsers(count int, seed uint64) []models.User {
	f := gofakeit.New(seed)
	users := make([]models.User, 0, count)
	for i := 1; i <= count; i++ {
		first := f.FirstName()
		last := f.LastName()
		domain := f.DomainName()
		username := strings.ToLower(first) + "." + strings.ToLower(last)
		users = append(users, models.User{
			ID:       i,
			Name:     first + " " + last,
			Username: username,
			Email:    username + "@" + domain,
			Phone:    f.Phone(),
			Website:  domain,
			Address: models.Address{
				Street:  f.Street(),
				Suite:   fmt.Sprintf("Suite %d", f.Number(100, 999)),
				City:    f.City(),
				Zipcode: f.Zip(),
			},
			Company: models.Company{
				Name:        f.Company(),
				CatchPhrase: f.BuzzWord() + " " + f.BS(),
			},
		})
	}
	return users
}

// Users returns every user in ID order. The returned slice is a copy.
func (d *Dataset) Users() []models.User {
	out := make([]models.User, len(d.users))
	copy(out, d.users)
	return out
}

// Len reports how many users the dataset holds
func (d *Dataset) Len() int {
	return len(d.users)
}

// UserByID resolves the raw "id" query value to a user. An empty value means 1.
// Values are read like a leading integer ("2abc" is 2, "0x2" is 2); anything that does not
// name an existing user falls back to the first one.
func (d *Dataset) UserByID(raw string) models.User {
	if raw == "" {
		raw = "1"
	}
	if id, ok := parseLeadingInt(raw); ok {
		for _, u := range d.users {
			if u.ID == id {
				return u
			}
		}
	}
	return d.users[0]
}

// parseLeadingInt parses an optional sign followed by decimal digits, or hex
// digits after a 0x prefix, ignoring leading whitespace and anything after
// the digits.
func parseLeadingInt(s string) (int, bool) {
	s = strings.TrimLeftFunc(s, unicode.IsSpace)
	neg := false
	if s != "" && (s[0] == '+' || s[0] == '-') {
		neg = s[0] == '-'
		s = s[1:]
	}
	base := 10
	if len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		base = 16
		s = s[2:]
	}
	n, digits := 0, 0
	for _, r := range s {
		d := digitValue(r)
		if d < 0 || d >= base {
			break
		}
		// Anything this large cannot name a generated user.
		if n > 1<<30 {
			return 0, false
		}
		n = n*base + d
		digits++
	}
	if digits == 0 {
		return 0, false
	}
	if neg {
		n = -n
	}
	return n, true
}

func digitValue(r rune) int {
	switch {
	case r >= '0' && r <= '9':
		return int(r - '0')
	case r >= 'a' && r <= 'f':
		return int(r-'a') + 10
	case r >= 'A' && r <= 'F':
		return int(r-'A') + 10
	}
	return -1
}
