package services

import (
	"fmt"
	"math"

	"donor-engage-system/models"
)

// Path multipliers, fixed by program policy. Protection is weighted highest
// because shelter nights are the costliest intervention.
var PathMultipliers = map[models.Path]float64{
	models.PathWisdom:     1.0,
	models.PathCourage:    1.2,
	models.PathProtection: 1.5,
	models.PathService:    1.0,
}

// PointsPerVolunteerHour converts logged hours into impact points.
const PointsPerVolunteerHour = 10

// ComputePoints converts a donation amount into impact points for the given
// path: floor(amount * multiplier). Points are whole, rounding always down.
func ComputePoints(amount float64, path models.Path) (int64, error) {
	if amount < 0 {
		return 0, &models.ValidationError{Field: "amount", Reason: fmt.Sprintf("must not be negative, got %v", amount)}
	}
	mult, ok := PathMultipliers[path]
	if !ok {
		return 0, &models.ValidationError{Field: "path", Reason: fmt.Sprintf("unknown path %q", path)}
	}
	return int64(math.Floor(amount * mult)), nil
}

// VolunteerPoints converts volunteer hours into impact points, flooring
// fractional hours the same way donations floor fractional cents.
func VolunteerPoints(hours float64) (int64, error) {
	if hours < 0 {
		return 0, &models.ValidationError{Field: "hours", Reason: fmt.Sprintf("must not be negative, got %v", hours)}
	}
	return int64(math.Floor(hours * PointsPerVolunteerHour)), nil
}
