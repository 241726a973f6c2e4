package codegen

import (
	"sort"
	"strings"

	"github.com/funvibe/still/internal/config"
)

// Records is the registry of record field sets. Every distinct set gets
// exactly one generated struct, however its fields are ordered at the use.
type Records struct {
	byName map[string][]string
}

func NewRecords() *Records {
	return &Records{byName: make(map[string][]string)}
}

// RecordStructName is the struct name of a field set: the sorted field names
// joined by a middle dot, first letter uppercased. A single field keeps a
// trailing dot so it cannot collide with a type parameter of the same name.
func RecordStructName(fields []string) string {
	sorted := sortedFields(fields)
	name := capitalize(strings.Join(sorted, config.RecordNameSeparator))
	if len(sorted) == 1 {
		name += config.RecordNameSeparator
	}
	return name
}

func sortedFields(fields []string) []string {
	sorted := append([]string(nil), fields...)
	sort.Strings(sorted)
	return sorted
}

// Register records a field set and returns its struct name.
func (r *Records) Register(fields []string) string {
	name := RecordStructName(fields)
	if _, ok := r.byName[name]; !ok {
		r.byName[name] = sortedFields(fields)
	}
	return name
}

func (r *Records) Len() int {
	return len(r.byName)
}

// Names returns the registered struct names in sorted order.
func (r *Records) Names() []string {
	names := make([]string, 0, len(r.byName))
	for name := range r.byName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Fields returns the sorted field names of a registered struct.
func (r *Records) Fields(name string) []string {
	return r.byName[name]
}
