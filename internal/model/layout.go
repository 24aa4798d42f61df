package model

import (
	"fmt"
	"math"
	"strconv"
)

// RowLabel converts a zero-based row index into a spreadsheet-style label:
// 0 -> "A", 25 -> "Z", 26 -> "AA".
func RowLabel(index int) string {
	label := ""
	for index >= 0 {
		label = string(rune('A'+index%26)) + label
		index = index/26 - 1
	}
	return label
}

// SectionFor returns the section that contains the given row label.
// Rows not listed in any section fall back to General with multiplier 1.
func (l *SeatLayout) SectionFor(row string) SeatSection {
	for _, sec := range l.Sections {
		for _, r := range sec.Rows {
			if r == row {
				return sec
			}
		}
	}
	return SeatSection{Name: "General", PriceMultiplier: 1}
}

func seatTypeForSection(name string) string {
	switch name {
	case "VIP":
		return SeatTypeVIP
	case "Premium":
		return SeatTypePremium
	default:
		return SeatTypeRegular
	}
}

// GenerateSeats builds the full seat grid for an event from its layout.
// Each seat's price is the base price scaled by its section multiplier,
// rounded to whole units. The produced seats are all available.
func GenerateSeats(eventID int64, layout SeatLayout, basePrice float64) ([]Seat, error) {
	if layout.Rows < 1 || layout.SeatsPerRow < 1 {
		return nil, fmt.Errorf("seat layout must have at least one row and one seat per row")
	}
	if basePrice <= 0 {
		return nil, fmt.Errorf("base price must be positive")
	}

	seats := make([]Seat, 0, layout.Rows*layout.SeatsPerRow)
	for r := 0; r < layout.Rows; r++ {
		row := RowLabel(r)
		sec := layout.SectionFor(row)
		multiplier := sec.PriceMultiplier
		if multiplier <= 0 {
			multiplier = 1
		}
		price := math.Round(basePrice * multiplier)
		for n := 1; n <= layout.SeatsPerRow; n++ {
			seats = append(seats, Seat{
				EventID:    eventID,
				SeatNumber: row + strconv.Itoa(n),
				Row:        row,
				Section:    sec.Name,
				Price:      price,
				SeatType:   seatTypeForSection(sec.Name),
				Status:     SeatStatusAvailable,
			})
		}
	}
	return seats, nil
}
