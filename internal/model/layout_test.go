package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRowLabel(t *testing.T) {
	cases := map[int]string{
		0:  "A",
		1:  "B",
		25: "Z",
		26: "AA",
		27: "AB",
		51: "AZ",
		52: "BA",
	}
	for index, want := range cases {
		assert.Equal(t, want, RowLabel(index), "index %d", index)
	}
}

func TestSectionFor(t *testing.T) {
	layout := SeatLayout{
		Rows:        5,
		SeatsPerRow: 4,
		Sections: []SeatSection{
			{Name: "VIP", Rows: []string{"A", "B"}, PriceMultiplier: 2},
			{Name: "Premium", Rows: []string{"C"}, PriceMultiplier: 1.5},
		},
	}

	assert.Equal(t, "VIP", layout.SectionFor("A").Name)
	assert.Equal(t, "Premium", layout.SectionFor("C").Name)

	fallback := layout.SectionFor("E")
	assert.Equal(t, "General", fallback.Name)
	assert.Equal(t, 1.0, fallback.PriceMultiplier)
}

func TestGenerateSeats(t *testing.T) {
	layout := SeatLayout{
		Rows:        3,
		SeatsPerRow: 2,
		Sections: []SeatSection{
			{Name: "VIP", Rows: []string{"A"}, PriceMultiplier: 2},
			{Name: "Premium", Rows: []string{"B"}, PriceMultiplier: 1.5},
		},
	}

	seats, err := GenerateSeats(7, layout, 100)
	require.NoError(t, err)
	require.Len(t, seats, 6)

	first := seats[0]
	assert.Equal(t, int64(7), first.EventID)
	assert.Equal(t, "A1", first.SeatNumber)
	assert.Equal(t, "A", first.Row)
	assert.Equal(t, "VIP", first.Section)
	assert.Equal(t, SeatTypeVIP, first.SeatType)
	assert.Equal(t, 200.0, first.Price)
	assert.Equal(t, SeatStatusAvailable, first.Status)

	premium := seats[2]
	assert.Equal(t, "B1", premium.SeatNumber)
	assert.Equal(t, SeatTypePremium, premium.SeatType)
	assert.Equal(t, 150.0, premium.Price)

	general := seats[4]
	assert.Equal(t, "C1", general.SeatNumber)
	assert.Equal(t, "General", general.Section)
	assert.Equal(t, SeatTypeRegular, general.SeatType)
	assert.Equal(t, 100.0, general.Price)
}

func TestGenerateSeatsRejectsBadInput(t *testing.T) {
	_, err := GenerateSeats(1, SeatLayout{Rows: 0, SeatsPerRow: 5}, 100)
	assert.Error(t, err)

	_, err = GenerateSeats(1, SeatLayout{Rows: 2, SeatsPerRow: 0}, 100)
	assert.Error(t, err)

	_, err = GenerateSeats(1, SeatLayout{Rows: 2, SeatsPerRow: 2}, 0)
	assert.Error(t, err)
}
