package profiles

import (
	"fmt"
	"path"
	"strings"
	"sync"

	"github.com/astroview/voprod/internal/products"
)

// Profile is one compiled archive profile.
type Profile struct {
	Name      string
	Match     MatchProps
	Options   products.Options
	CutoutDeg float64
}

// Set holds the compiled profiles and answers per-table option lookups.
// Safe for concurrent use; Replace swaps the whole set atomically.
type Set struct {
	mu       sync.RWMutex
	profiles []Profile
}

func NewSet() *Set {
	return &Set{}
}

// Mapper converts the parsed YAML profiles into compiled Profiles.
type Mapper struct{}

func NewMapper() *Mapper {
	return &Mapper{}
}

// MapProfiles validates and converts the file config. Profiles without a
// name are rejected; profiles without any match rule only ever apply
// when named "default".
func (m *Mapper) MapProfiles(config FileConfig) ([]Profile, error) {
	out := make([]Profile, 0, len(config.Profiles))
	for _, p := range config.Profiles {
		if p.Name == "" {
			return nil, fmt.Errorf("profile without a name")
		}
		for _, pat := range p.Match.TableIDs {
			if _, err := path.Match(pat, ""); err != nil {
				return nil, fmt.Errorf("profile %s: bad table id pattern %q: %w", p.Name, pat, err)
			}
		}
		out = append(out, Profile{
			Name:  p.Name,
			Match: p.Match,
			Options: products.Options{
				ActivateServiceDef:  p.ActivateServiceDef,
				SingleViewImageOnly: p.SingleViewImageOnly,
				SingleViewTableOnly: p.SingleViewTableOnly,
				ComponentKey:        p.ComponentKey,
				ParamNameKeys:       p.ParamNameKeys,
				UCDKeys:             p.UCDKeys,
				UtypeKeys:           p.UtypeKeys,
				XtypeKeys:           p.XtypeKeys,
			},
			CutoutDeg: p.CutoutDeg,
		})
	}
	return out, nil
}

// Replace swaps in a new profile list.
func (s *Set) Replace(profiles []Profile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles = profiles
}

// Count returns the number of loaded profiles.
func (s *Set) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.profiles)
}

// Names returns the loaded profile names in file order.
func (s *Set) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, len(s.profiles))
	for i, p := range s.profiles {
		out[i] = p.Name
	}
	return out
}

// OptionsFor resolves the display options for a source table and its
// DataLink URL. The first matching profile wins; a profile named
// "default" matches anything not claimed earlier. The second return is
// the winning profile name, "" when nothing matched.
func (s *Set) OptionsFor(tableID, dlURL string) (products.Options, string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.profiles {
		if p.matches(tableID, dlURL) {
			return p.Options, p.Name
		}
	}
	return products.Options{}, ""
}

// CutoutFor resolves the per-profile cutout default, 0 when the matched
// profile does not set one.
func (s *Set) CutoutFor(tableID, dlURL string) float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.profiles {
		if p.matches(tableID, dlURL) {
			return p.CutoutDeg
		}
	}
	return 0
}

func (p *Profile) matches(tableID, dlURL string) bool {
	if p.Name == "default" && len(p.Match.TableIDs) == 0 && len(p.Match.URLPrefixes) == 0 {
		return true
	}
	for _, pat := range p.Match.TableIDs {
		if ok, _ := path.Match(pat, tableID); ok {
			return true
		}
	}
	for _, prefix := range p.Match.URLPrefixes {
		if prefix != "" && strings.HasPrefix(dlURL, prefix) {
			return true
		}
	}
	return false
}
