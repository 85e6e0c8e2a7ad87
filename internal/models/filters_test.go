package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilterCriteria_UnmarshalFillsMissingFields(t *testing.T) {
	var f FilterCriteria
	require.NoError(t, json.Unmarshal([]byte(`{"stack":["Go"],"location":null}`), &f))

	assert.Equal(t, []string{"Go"}, f.Stack)
	assert.NotNil(t, f.Location)
	assert.Empty(t, f.Location)
	assert.NotNil(t, f.ExcludeKeywords)
	assert.NotNil(t, f.JobType)
}

func TestFilterCriteria_MarshalEmitsAllFields(t *testing.T) {
	data, err := json.Marshal(FilterCriteria{Stack: []string{"Go"}})
	require.NoError(t, err)
	assert.JSONEq(t,
		`{"stack":["Go"],"experience":[],"keywords":[],"excludeKeywords":[],"location":[],"jobType":[]}`,
		string(data))
}

func TestFilterCriteria_Merge(t *testing.T) {
	base := FilterCriteria{
		Stack:    []string{"Go"},
		Keywords: []string{"backend"},
		Location: []string{"Berlin"},
	}.Normalize()

	tests := []struct {
		name     string
		fragment FilterFragment
		want     FilterCriteria
	}{
		{
			name:     "absent fields untouched",
			fragment: FilterFragment{Stack: []string{"Rust", "Go"}},
			want: FilterCriteria{
				Stack:    []string{"Rust", "Go"},
				Keywords: []string{"backend"},
				Location: []string{"Berlin"},
			}.Normalize(),
		},
		{
			name:     "present empty field clears",
			fragment: FilterFragment{Location: []string{}},
			want: FilterCriteria{
				Stack:    []string{"Go"},
				Keywords: []string{"backend"},
			}.Normalize(),
		},
		{
			name:     "duplicates kept",
			fragment: FilterFragment{Keywords: []string{"api", "api"}},
			want: FilterCriteria{
				Stack:    []string{"Go"},
				Keywords: []string{"api", "api"},
				Location: []string{"Berlin"},
			}.Normalize(),
		},
		{
			name:     "empty fragment is a no-op",
			fragment: FilterFragment{},
			want:     base,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, base.Merge(tt.fragment))
		})
	}
}

func TestFilterCriteria_MergeDoesNotAlias(t *testing.T) {
	base := EmptyFilters()
	frag := FilterFragment{Stack: []string{"Go"}}
	merged := base.Merge(frag)
	frag.Stack[0] = "Java"

	assert.Equal(t, []string{"Go"}, merged.Stack)
	assert.Empty(t, base.Stack)
}

func TestFilterFragment_UnmarshalPresence(t *testing.T) {
	var frag FilterFragment
	require.NoError(t, json.Unmarshal([]byte(`{"stack":[],"keywords":["go"]}`), &frag))

	assert.NotNil(t, frag.Stack)
	assert.Nil(t, frag.Location)
	assert.Equal(t, []string{"go"}, frag.Keywords)
}

func TestUserProfile_HasResume(t *testing.T) {
	blank := "   "
	text := "Senior Go engineer"

	assert.False(t, UserProfile{}.HasResume())
	assert.False(t, UserProfile{Resume: &blank}.HasResume())
	assert.True(t, UserProfile{Resume: &text}.HasResume())
	assert.Equal(t, text, UserProfile{Resume: &text}.ResumeText())
	assert.Equal(t, "", UserProfile{}.ResumeText())
}

func TestSourceType_Valid(t *testing.T) {
	assert.True(t, SourceAPI.Valid())
	assert.True(t, SourceRSS.Valid())
	assert.False(t, SourceType("FTP").Valid())
}
