package record

import (
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newGoldie(t *testing.T) *goldie.Goldie {
	t.Helper()
	return goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
}

func mustRecord(t *testing.T, fields, values []string) Record {
	t.Helper()
	rec, err := New(fields, values)
	require.NoError(t, err)
	return rec
}

func TestCanonical_Golden(t *testing.T) {
	alice := mustRecord(t, []string{"name", "age"}, []string{"Alice", "40"})

	tests := []struct {
		name   string
		record Record
		format Format
	}{
		{name: "alice", record: alice, format: DefaultFormat},
		{name: "alice_fingerprinted", record: alice.With("fingerprint", "F"), format: DefaultFormat},
		{name: "crlf", record: alice, format: Format{UseCRLF: true}},
		{
			name:   "quoting",
			record: mustRecord(t, []string{"name", "note", "city"}, []string{"Doe, Jane", `said "hi"`, " Paris"}),
			format: DefaultFormat,
		},
	}

	g := newGoldie(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := Canonical(tt.record, tt.format)
			require.NoError(t, err)
			g.Assert(t, tt.name, out)
		})
	}
}

func TestCanonical_LegacyInputGolden(t *testing.T) {
	raw := []byte("name,city\nJos\xe9,M\xfcnchen\n")
	rec, err := ParseOne(raw)
	require.NoError(t, err)

	out, err := Canonical(rec, DefaultFormat)
	require.NoError(t, err)
	newGoldie(t).Assert(t, "latin1", out)
}

func TestCanonical_RoundTrip(t *testing.T) {
	inputs := []string{
		"name,age\nAlice,40\n",
		"name,note\n\"Doe, Jane\",\"line1\nline2\"\n",
		"a,b,c\n1,,3\n",
	}

	for _, in := range inputs {
		rec, err := ParseOne([]byte(in))
		require.NoError(t, err)

		out, err := Canonical(rec, DefaultFormat)
		require.NoError(t, err)

		again, err := ParseOne(out)
		require.NoError(t, err)
		assert.Equal(t, rec.Map(), again.Map())
		assert.Equal(t, rec.Fields(), again.Fields())
	}
}

func TestCanonicalWithout(t *testing.T) {
	plain := mustRecord(t, []string{"name", "age"}, []string{"Alice", "40"})
	sealed := plain.With("fingerprint", "F")

	want, err := Canonical(plain, DefaultFormat)
	require.NoError(t, err)

	got, err := CanonicalWithout(sealed, "fingerprint", DefaultFormat)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestCanonical_EmptyRecord(t *testing.T) {
	_, err := Canonical(Record{}, DefaultFormat)
	assert.Error(t, err)
}

func TestParseTerminator(t *testing.T) {
	f, err := ParseTerminator("")
	require.NoError(t, err)
	assert.False(t, f.UseCRLF)

	f, err = ParseTerminator("crlf")
	require.NoError(t, err)
	assert.True(t, f.UseCRLF)

	_, err = ParseTerminator("cr")
	assert.Error(t, err)
}
