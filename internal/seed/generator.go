package seed

import (
	"fmt"
	"strings"
)

var (
	firstNames = []string{"Maria", "Carlos", "Sofia", "Diego", "Valentina", "Sebastian", "Camila", "Mateo"}
	lastNames  = []string{"Gonzalez", "Rodriguez", "Martinez", "Fernandez", "Torres", "Morales", "Rojas", "Silva"}
)

// phoneBase keeps generated numbers in the Chilean mobile range.
const phoneBase = 56_900_000_000

// Generate returns count distinct participants. The same index always yields
// the same participant, so reseeding finds the existing accounts.
func Generate(count int, domain string) []Fake {
	if domain == "" {
		domain = DefaultDomain
	}
	out := make([]Fake, count)
	for i := range out {
		first := firstNames[i%len(firstNames)]
		last := lastNames[(i/len(firstNames))%len(lastNames)]
		out[i] = Fake{
			Email:    fmt.Sprintf("%s.%s.%d@%s", strings.ToLower(first), strings.ToLower(last), i+1, domain),
			FullName: first + " " + last,
			Phone:    fmt.Sprintf("+%d", phoneBase+i+1),
		}
	}
	return out
}
