package dataset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/geocode-service/app/models"
)

func testRecords() []models.AddressRecord {
	return []models.AddressRecord{
		{Locality: "Москва", Street: "Тверская улица", HouseNumber: "10", Lat: 55.7649, Lon: 37.6049},
		{Locality: "Москва", Street: "Тверская улица", HouseNumber: "12", Lat: 55.7654, Lon: 37.6061},
		{Locality: "Москва", Street: "улица Арбат", HouseNumber: "1", Lat: 55.7520, Lon: 37.5900},
		{Locality: "Санкт-Петербург", Street: "Невский проспект", HouseNumber: "28", Lat: 59.9357, Lon: 30.3257},
	}
}

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(testRecords(), zap.NewNop())
}

func TestStoreAssignsSequentialIDs(t *testing.T) {
	s := newTestStore(t)
	require.Equal(t, 4, s.Len())
	for i, rec := range s.Records() {
		assert.Equal(t, int64(i+1), rec.ID)
	}
}

func TestStoreGet(t *testing.T) {
	s := newTestStore(t)

	rec, ok := s.Get(3)
	require.True(t, ok)
	assert.Equal(t, "улица Арбат", rec.Street)

	_, ok = s.Get(99)
	assert.False(t, ok)
}

func TestStoreCandidateIDs(t *testing.T) {
	s := newTestStore(t)

	// Street restriction alone.
	ids := s.CandidateIDs("", "Тверская")
	assert.Equal(t, []int64{1, 2}, ids)

	// Locality and street union.
	ids = s.CandidateIDs("Москва", "Тверская улица")
	assert.Equal(t, []int64{1, 2, 3}, ids)

	// No indexed restriction at all.
	assert.Nil(t, s.CandidateIDs("", ""))

	// Unknown key matches nothing.
	assert.Empty(t, s.CandidateIDs("", "Зеленая"))
}

func TestStoreVerifyTerm(t *testing.T) {
	s := newTestStore(t)

	// Lowest record ID wins so the representative stays deterministic.
	rec, ok := s.VerifyTerm(DictStreets, "Тверская улица")
	require.True(t, ok)
	assert.Equal(t, int64(1), rec.ID)

	rec, ok = s.VerifyTerm(DictLocalities, "Санкт-Петербург")
	require.True(t, ok)
	assert.Equal(t, int64(4), rec.ID)

	_, ok = s.VerifyTerm(DictStreets, "Лесная улица")
	assert.False(t, ok)
}

func TestStoreExhaustiveScan(t *testing.T) {
	s := newTestStore(t)

	entries := s.ExhaustiveScan(DictStreets, "верск", 10)
	require.Len(t, entries, 1)
	assert.Equal(t, "Тверская улица", entries[0].Term)
	assert.Equal(t, 2, entries[0].Frequency)

	assert.Nil(t, s.ExhaustiveScan(DictStreets, "", 10))
	assert.Nil(t, s.ExhaustiveScan(DictStreets, "верск", 0))
}

func TestStoreDictionaries(t *testing.T) {
	s := newTestStore(t)
	assert.Equal(t, 3, s.Streets().Len())
	assert.Equal(t, 2, s.Localities().Len())
	assert.Equal(t, s.Localities(), s.Dictionary(DictLocalities))
	assert.Equal(t, s.Streets(), s.Dictionary(DictStreets))
}
