package registry

import "github.com/cazala/landgiver/internal/leasing/domain"

// EncodeTokenID packs a coordinate into the registry's token identifier:
// the x value occupies the upper 32 bits, y the lower 32. Signed values
// survive the round trip through their two's-complement representation.
func EncodeTokenID(coord domain.Coordinate) uint64 {
	return uint64(uint32(coord.X))<<32 | uint64(uint32(coord.Y))
}

// DecodeTokenID unpacks a registry token identifier into its coordinate.
func DecodeTokenID(tokenID uint64) domain.Coordinate {
	return domain.Coordinate{
		X: int32(uint32(tokenID >> 32)),
		Y: int32(uint32(tokenID)),
	}
}
