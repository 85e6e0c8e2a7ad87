package models

import "encoding/json"

// FilterCriteria holds the six filter dimensions. All fields are always
// present: a decoded or normalized value never carries a nil slice.
// Duplicates inside a field are kept as-is.
type FilterCriteria struct {
	Stack           []string `json:"stack"`
	Experience      []string `json:"experience"`
	Keywords        []string `json:"keywords"`
	ExcludeKeywords []string `json:"excludeKeywords"`
	Location        []string `json:"location"`
	JobType         []string `json:"jobType"`
}

// EmptyFilters returns criteria with every field present and empty.
func EmptyFilters() FilterCriteria {
	return FilterCriteria{}.Normalize()
}

// Normalize returns a copy with nil fields replaced by empty slices.
func (f FilterCriteria) Normalize() FilterCriteria {
	return FilterCriteria{
		Stack:           orEmpty(f.Stack),
		Experience:      orEmpty(f.Experience),
		Keywords:        orEmpty(f.Keywords),
		ExcludeKeywords: orEmpty(f.ExcludeKeywords),
		Location:        orEmpty(f.Location),
		JobType:         orEmpty(f.JobType),
	}
}

// Clone returns a deep copy, so callers can hand out snapshots without
// sharing backing arrays.
func (f FilterCriteria) Clone() FilterCriteria {
	return FilterCriteria{
		Stack:           cloneStrings(f.Stack),
		Experience:      cloneStrings(f.Experience),
		Keywords:        cloneStrings(f.Keywords),
		ExcludeKeywords: cloneStrings(f.ExcludeKeywords),
		Location:        cloneStrings(f.Location),
		JobType:         cloneStrings(f.JobType),
	}
}

// Merge applies a fragment: every field present in the fragment replaces
// the corresponding field, absent fields are left untouched.
func (f FilterCriteria) Merge(fragment FilterFragment) FilterCriteria {
	out := f.Clone()
	if fragment.Stack != nil {
		out.Stack = cloneStrings(fragment.Stack)
	}
	if fragment.Experience != nil {
		out.Experience = cloneStrings(fragment.Experience)
	}
	if fragment.Keywords != nil {
		out.Keywords = cloneStrings(fragment.Keywords)
	}
	if fragment.ExcludeKeywords != nil {
		out.ExcludeKeywords = cloneStrings(fragment.ExcludeKeywords)
	}
	if fragment.Location != nil {
		out.Location = cloneStrings(fragment.Location)
	}
	if fragment.JobType != nil {
		out.JobType = cloneStrings(fragment.JobType)
	}
	return out
}

// MarshalJSON always emits all six fields as arrays.
func (f FilterCriteria) MarshalJSON() ([]byte, error) {
	type plain FilterCriteria
	return json.Marshal(plain(f.Normalize()))
}

// UnmarshalJSON fills absent or null fields with empty slices.
func (f *FilterCriteria) UnmarshalJSON(data []byte) error {
	type plain FilterCriteria
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*f = FilterCriteria(p).Normalize()
	return nil
}

// FilterFragment is a partial FilterCriteria. A nil field is absent; a
// non-nil field, even an empty one, is present.
type FilterFragment struct {
	Stack           []string `json:"stack,omitempty"`
	Experience      []string `json:"experience,omitempty"`
	Keywords        []string `json:"keywords,omitempty"`
	ExcludeKeywords []string `json:"excludeKeywords,omitempty"`
	Location        []string `json:"location,omitempty"`
	JobType         []string `json:"jobType,omitempty"`
}

// Fragment converts full criteria into a fragment with every field present.
func (f FilterCriteria) Fragment() FilterFragment {
	n := f.Normalize()
	return FilterFragment{
		Stack:           n.Stack,
		Experience:      n.Experience,
		Keywords:        n.Keywords,
		ExcludeKeywords: n.ExcludeKeywords,
		Location:        n.Location,
		JobType:         n.JobType,
	}
}

func orEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func cloneStrings(s []string) []string {
	if s == nil {
		return []string{}
	}
	out := make([]string, len(s))
	copy(out, s)
	return out
}
