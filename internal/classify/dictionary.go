// Package classify derives a document's canonical identity (unit, service,
// document type, EDRMS reference, version) from the plain text of its first
// two pages, and composes the archival folder and file name from it.
package classify

import (
	"fmt"
	"strconv"
	"strings"
)

// Settings is the configuration lookup the dictionary loaders read from.
// Absence of a key is an ordinary condition, not an error.
type Settings interface {
	TryGet(key string) (string, bool)
}

// Entry is one label -> code pair.
type Entry struct {
	Label string
	Code  string
}

// Dictionary is an ordered label -> code mapping. Iteration order is
// insertion order; classification depends on it.
type Dictionary struct {
	entries []Entry
	seen    map[string]struct{}
}

func NewDictionary() *Dictionary {
	return &Dictionary{seen: make(map[string]struct{})}
}

// Add appends an entry. Duplicate labels are first-wins: a later entry with
// an already-known label is dropped, so the earlier code keeps matching.
func (d *Dictionary) Add(label, code string) {
	key := strings.ToUpper(label)
	if _, dup := d.seen[key]; dup {
		return
	}
	d.seen[key] = struct{}{}
	d.entries = append(d.entries, Entry{Label: label, Code: code})
}

// Entries returns the entries in insertion order.
func (d *Dictionary) Entries() []Entry {
	return d.entries
}

func (d *Dictionary) Len() int {
	return len(d.entries)
}

// LoadDictionary reads indexed entries "<section>:<n>:name" /
// "<section>:<n>:code" starting at n=0 until either key at an index is
// absent. Absence terminates enumeration and is not an error.
func LoadDictionary(s Settings, section string) *Dictionary {
	d := NewDictionary()
	for i := 0; ; i++ {
		name, okName := s.TryGet(fmt.Sprintf("%s:%d:name", section, i))
		code, okCode := s.TryGet(fmt.Sprintf("%s:%d:code", section, i))
		if !okName || !okCode {
			break
		}
		d.Add(name, code)
	}
	return d
}

// LoadList reads indexed entries "<section>:<n>:value" until an index is
// absent.
func LoadList(s Settings, section string) []string {
	var list []string
	for i := 0; ; i++ {
		v, ok := s.TryGet(section + ":" + strconv.Itoa(i) + ":value")
		if !ok {
			break
		}
		list = append(list, v)
	}
	return list
}
