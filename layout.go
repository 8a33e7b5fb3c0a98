package recordseal

import (
	"fmt"
	"strings"
)

// Layout maps an identifier to the names of its artifacts in the Source.
// Each template holds exactly one %s, replaced by the identifier.
//
// The original record is never rewritten: sealing writes the fingerprinted
// copy under Sealed, and validation reads it back from there.
type Layout struct {
	Original   string `yaml:"original"`
	Sealed     string `yaml:"sealed"`
	Ciphertext string `yaml:"ciphertext"`
}

// DefaultLayout returns uploads-style names: H001.csv, sealed/H001.csv and
// encrypted/H001.enc.
func DefaultLayout() Layout {
	return Layout{
		Original:   DefaultOriginalTemplate,
		Sealed:     DefaultSealedTemplate,
		Ciphertext: DefaultCiphertextTemplate,
	}
}

func (l Layout) OriginalName(identifier string) string {
	return fmt.Sprintf(l.Original, identifier)
}

func (l Layout) SealedName(identifier string) string {
	return fmt.Sprintf(l.Sealed, identifier)
}

func (l Layout) CiphertextName(identifier string) string {
	return fmt.Sprintf(l.Ciphertext, identifier)
}

func (l Layout) validate() error {
	templates := map[string]string{
		"original":   l.Original,
		"sealed":     l.Sealed,
		"ciphertext": l.Ciphertext,
	}
	for name, tmpl := range templates {
		if strings.Count(tmpl, "%") != 1 || strings.Count(tmpl, "%s") != 1 {
			return fmt.Errorf("%s template %q must contain exactly one %%s", name, tmpl)
		}
	}
	if l.Original == l.Sealed {
		return fmt.Errorf("sealed template must differ from original template %q", l.Original)
	}
	return nil
}
