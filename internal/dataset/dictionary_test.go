package dataset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDictionaryAddAndExact(t *testing.T) {
	d := NewDictionary(DictStreets)
	d.Add("Тверская улица")
	d.Add("Тверская улица")
	d.Add("улица Арбат")

	assert.Equal(t, 2, d.Len())

	e, ok := d.Exact("тверская улица")
	assert.True(t, ok)
	assert.Equal(t, "Тверская улица", e.Term)
	assert.Equal(t, 2, e.Frequency)

	_, ok = d.Exact("невский проспект")
	assert.False(t, ok)
}

// Misspelled tail still reaches the term via prefix backoff: "тверкая"
// diverges from "тверская" at the fifth rune, so the lookup backs off to the
// shared "твер" prefix.
func TestDictionaryLookupPrefixBackoff(t *testing.T) {
	d := NewDictionary(DictStreets)
	d.Add("Тверская улица")
	d.Add("Тверской бульвар")
	d.Add("улица Арбат")

	entries := d.Lookup("тверкая", 20)
	terms := make([]string, 0, len(entries))
	for _, e := range entries {
		terms = append(terms, e.Term)
	}
	assert.Contains(t, terms, "Тверская улица")
	assert.Contains(t, terms, "Тверской бульвар")
	assert.NotContains(t, terms, "улица Арбат")
}

func TestDictionaryLookupOrdering(t *testing.T) {
	d := NewDictionary(DictLocalities)
	d.Add("Мурманск")
	d.Add("Москва")
	d.Add("Москва")
	d.Add("Москва")

	entries := d.Lookup("му", 20)
	// Frequency desc first, then term asc.
	assert.GreaterOrEqual(t, len(entries), 1)
	entries = d.Lookup("мо", 20)
	assert.Equal(t, "Москва", entries[0].Term)
	assert.Equal(t, 3, entries[0].Frequency)
}

// The ASCII trie arm lets latin-keyboard input reach Cyrillic terms.
func TestDictionaryLookupTransliterated(t *testing.T) {
	d := NewDictionary(DictLocalities)
	d.Add("Москва")

	entries := d.Lookup("moskva", 20)
	assert.Len(t, entries, 1)
	assert.Equal(t, "Москва", entries[0].Term)
}

// The stripped-form arm indexes terms without their street-type word, so the
// bare name reaches the full term by prefix.
func TestDictionaryLookupStrippedStreetType(t *testing.T) {
	d := NewDictionary(DictStreets)
	d.Add("улица Арбат")
	d.Add("Невский проспект")

	entries := d.Lookup("арбат", 20)
	require.Len(t, entries, 1)
	assert.Equal(t, "улица Арбат", entries[0].Term)

	entries = d.Lookup("невский", 20)
	require.Len(t, entries, 1)
	assert.Equal(t, "Невский проспект", entries[0].Term)
}

func TestDictionaryAll(t *testing.T) {
	d := NewDictionary(DictStreets)
	d.Add("улица Арбат")
	d.Add("Тверская улица")
	d.Add("Тверская улица")

	entries := d.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "Тверская улица", entries[0].Term)
	assert.Equal(t, 2, entries[0].Frequency)
	assert.Equal(t, "улица Арбат", entries[1].Term)
}

func TestDictionaryLookupShortQuery(t *testing.T) {
	d := NewDictionary(DictLocalities)
	d.Add("Москва")
	assert.Nil(t, d.Lookup("м", 20))
}
