package engine

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"hash"
	"io"

	"github.com/toyz/splice/internal/models"
)

// Fingerprint identifies the structural content of an injector and everything
// it reaches: specifications, contracts, parameters and child injectors.
type Fingerprint string

// FingerprintOf hashes the descriptor closure of inj. Identical descriptors
// give identical fingerprints regardless of pointer identity.
func FingerprintOf(inj *models.Injector, lazyWrappers []string) Fingerprint {
	h := sha256.New()
	w := &fingerprintWriter{h: h, visiting: make(map[*models.Injector]int)}
	fmt.Fprintf(h, "wrappers%q\n", lazyWrappers)
	w.injector(inj)
	return Fingerprint(hex.EncodeToString(h.Sum(nil)))
}

type fingerprintWriter struct {
	h        hash.Hash
	visiting map[*models.Injector]int
	next     int
}

func (w *fingerprintWriter) printf(format string, args ...any) {
	fmt.Fprintf(w.h, format, args...)
	io.WriteString(w.h, "\n")
}

func (w *fingerprintWriter) injector(inj *models.Injector) {
	if inj == nil {
		w.printf("injector nil")
		return
	}
	if id, seen := w.visiting[inj]; seen {
		w.printf("injector ref %d", id)
		return
	}
	w.visiting[inj] = w.next
	w.next++

	w.printf("injector %q %s", inj.Name, inj.Location)
	for _, param := range inj.Parameters {
		w.printf("param %s", param)
	}
	for _, spec := range inj.Specifications {
		w.specification(spec)
	}
	for _, dep := range models.ExpandDependencies(inj.Dependencies) {
		w.printf("dependency %q %s", dep.Name, dep.Location)
		for _, provider := range dep.Providers {
			w.printf("dependency provider %q %s %s", provider.Member, provider.Type, provider.Location)
		}
	}
	for _, provider := range inj.Providers {
		w.printf("provider %q %s %s", provider.Member, provider.Type, provider.Location)
	}
	for _, builder := range inj.Builders {
		w.printf("builder %q %s %s", builder.Member, builder.Type, builder.Location)
	}
	for _, child := range inj.ChildFactories {
		w.printf("child %q %q %s", child.Member, child.Parameters, child.Location)
		w.injector(child.Injector)
	}
	w.printf("end injector")
}

func (w *fingerprintWriter) specification(spec *models.Specification) {
	w.printf("spec %q %s %t %s", spec.Name, spec.Instantiation, spec.Synthetic, spec.Location)
	for _, f := range spec.Factories {
		w.printf("factory %q %s %s %s %t %q %s", f.Member, f.Type, f.Kind, f.Fabrication, f.Partial, f.Parameters, f.Location)
		for _, prop := range f.Properties {
			w.printf("property %q %s", prop.Name, prop.Type)
		}
	}
	for _, b := range spec.Builders {
		w.printf("builder %q %s %s %q %s", b.Member, b.Type, b.Kind, b.Parameters, b.Location)
	}
	for _, l := range spec.Links {
		w.printf("link %s %s", l, l.Location)
	}
	w.printf("end spec")
}
