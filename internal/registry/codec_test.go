package registry

import (
	"testing"

	"github.com/cazala/landgiver/internal/leasing/domain"
)

func TestTokenIDRoundTrip(t *testing.T) {
	t.Parallel()

	coords := []domain.Coordinate{
		{X: 0, Y: 0},
		{X: 1, Y: 1},
		{X: -1, Y: -1},
		{X: -150, Y: 22},
		{X: 2147483647, Y: -2147483648},
	}
	for _, coord := range coords {
		got := DecodeTokenID(EncodeTokenID(coord))
		if got != coord {
			t.Fatalf("round trip %v = %v", coord, got)
		}
	}
}

func TestEncodeTokenIDIsInjective(t *testing.T) {
	t.Parallel()

	seen := map[uint64]domain.Coordinate{}
	for x := int32(-3); x <= 3; x++ {
		for y := int32(-3); y <= 3; y++ {
			coord := domain.Coordinate{X: x, Y: y}
			id := EncodeTokenID(coord)
			if prev, ok := seen[id]; ok {
				t.Fatalf("token collision: %v and %v both encode to %d", prev, coord, id)
			}
			seen[id] = coord
		}
	}
}
