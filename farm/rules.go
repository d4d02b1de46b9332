package farm

import "slices"

var rotations = map[string][]string{
	"wheat":   {"soybean", "corn"},
	"corn":    {"wheat", "soybean"},
	"soybean": {"corn", "wheat"},
}

// CropRotationRecommendations returns the crops to plant after the named one.
// The lookup is exact and case-sensitive.
func (s *Service) CropRotationRecommendations(name string) ([]string, error) {
	next, ok := rotations[name]
	if !ok {
		return nil, notFoundf("No recommendations available for the input crop.")
	}
	return slices.Clone(next), nil
}
