package dataset

// SkipList is a set of report filenames excluded from a run.
type SkipList map[string]string

// NewSkipList builds a skip list from named filename lists; the name is kept
// as the reason reported for a skipped file. A file on several lists is
// reported under the alphabetically first list name.
func NewSkipList(lists map[string][]string) SkipList {
	s := make(SkipList)
	for _, reason := range SortedKeys(lists) {
		for _, n := range lists[reason] {
			if _, dup := s[n]; !dup {
				s[n] = reason
			}
		}
	}
	return s
}

// Contains reports whether filename is skipped and under which list.
func (s SkipList) Contains(filename string) (string, bool) {
	reason, ok := s[filename]
	return reason, ok
}
