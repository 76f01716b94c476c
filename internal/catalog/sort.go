package catalog

import "sort"

// SortKey returns the comparison key for an entry: the msgid, followed
// directly by the msgctxt when the entry has one. An entry with a context
// therefore sorts right after the context-free entry with the same msgid.
func SortKey(e *Entry) string {
	if e.Msgctxt == nil {
		return e.Msgid
	}
	return e.Msgid + *e.Msgctxt
}

// SortEntries returns a new slice ordered by ascending SortKey using
// byte-wise comparison. Entries with equal keys keep their input order.
// Neither the input slice nor the entries are modified.
func SortEntries(entries []*Entry) []*Entry {
	sorted := make([]*Entry, len(entries))
	copy(sorted, entries)

	keys := make(map[*Entry]string, len(sorted))
	for _, e := range sorted {
		keys[e] = SortKey(e)
	}

	sort.SliceStable(sorted, func(i, j int) bool {
		return keys[sorted[i]] < keys[sorted[j]]
	})

	return sorted
}

// IsSorted reports whether entries are already in SortKey order.
func IsSorted(entries []*Entry) bool {
	for i := 1; i < len(entries); i++ {
		if SortKey(entries[i]) < SortKey(entries[i-1]) {
			return false
		}
	}
	return true
}
