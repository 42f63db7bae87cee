package cpu

import (
	"iter"
	"maps"
	"regexp"
	"slices"
	"strings"
)

var reDefine = regexp.MustCompile(`(?i)^define\s+(\w+)\s+(.+)$`)
var reLabel = regexp.MustCompile(`^(\w+):`)

// symbol is a define directive value.
type symbol struct {
	value string
	index int // Line index of the definition, or -1 if predefined.
}

// Symbols maps `define` names to their replacement text. The first
// definition of a name wins.
type Symbols struct {
	entries map[string]symbol
	order   []string
}

// Reset removes all symbols.
func (sym *Symbols) Reset() {
	clear(sym.entries)
	sym.order = sym.order[:0]
}

// Define a symbol at a line index. Returns false if the name was already
// defined.
func (sym *Symbols) Define(name string, value string, index int) bool {
	if sym.entries == nil {
		sym.entries = make(map[string]symbol)
	}
	_, ok := sym.entries[name]
	if ok {
		return false
	}
	sym.entries[name] = symbol{value: value, index: index}
	sym.order = append(sym.order, name)
	return true
}

// Lookup the replacement text of a symbol.
func (sym *Symbols) Lookup(name string) (value string, ok bool) {
	entry, ok := sym.entries[name]
	value = entry.value
	return
}

// Build scans sanitized lines for define directives, recording them and
// blanking the lines in place.
func (sym *Symbols) Build(lines []string) {
	for n, line := range lines {
		match := reDefine.FindStringSubmatch(line)
		if match == nil {
			continue
		}
		value := strings.Join(strings.Fields(match[2]), "")
		sym.Define(match[1], value, n)
		lines[n] = ""
	}
}

// All iterates the symbols in definition order.
func (sym *Symbols) All() iter.Seq2[string, string] {
	return func(yield func(string, string) bool) {
		for _, name := range sym.order {
			if !yield(name, sym.entries[name].value) {
				return
			}
		}
	}
}

// replace updates the value of an existing symbol.
func (sym *Symbols) replace(name string, value string) {
	entry := sym.entries[name]
	entry.value = value
	sym.entries[name] = entry
}

// Labels maps label names to addresses.
type Labels struct {
	addresses map[string]uint16
}

// Reset removes all labels.
func (lt *Labels) Reset() {
	clear(lt.addresses)
}

// Define a label. A label may be defined only once, and may not share a
// name with a symbol.
func (lt *Labels) Define(name string, addr uint16, symbols *Symbols) (err error) {
	if lt.addresses == nil {
		lt.addresses = make(map[string]uint16)
	}
	if _, ok := lt.addresses[name]; ok {
		err = ErrLabelDuplicate
		return
	}
	if symbols != nil {
		if _, ok := symbols.Lookup(name); ok {
			err = ErrLabelSymbol
			return
		}
	}
	lt.addresses[name] = addr
	return
}

// Find returns true if the label is defined.
func (lt *Labels) Find(name string) (ok bool) {
	_, ok = lt.addresses[name]
	return
}

// AddressOf returns the address of a label.
func (lt *Labels) AddressOf(name string) (addr uint16, ok bool) {
	addr, ok = lt.addresses[name]
	return
}

// Len is the number of labels.
func (lt *Labels) Len() int {
	return len(lt.addresses)
}

// Names returns the sorted label names.
func (lt *Labels) Names() []string {
	return slices.Sorted(maps.Keys(lt.addresses))
}

// splitLabel separates a leading `name:` from the rest of a line.
func splitLabel(line string) (label string, rest string) {
	match := reLabel.FindStringSubmatch(line)
	if match == nil {
		return "", line
	}
	return match[1], strings.TrimSpace(line[len(match[0]):])
}

// IndexAll walks sanitized lines from start, defining each label at the
// address of its line. The measure function returns the address following
// a label-free line. On failure, index is the failing line.
func (lt *Labels) IndexAll(lines []string, start uint16, symbols *Symbols, measure func(n int, line string, pc uint16) uint16) (index int, err error) {
	lt.Reset()
	pc := start
	for n, line := range lines {
		label, rest := splitLabel(line)
		if len(label) > 0 {
			err = lt.Define(label, pc, symbols)
			if err != nil {
				index = n
				return
			}
		}
		pc = measure(n, rest, pc)
	}

	return
}
