package services

import (
	"errors"
	"fmt"
	"math"
)

const (
	DefaultServicesOverlapMultiplier = 2
	DefaultSLAWeightBase             = 20
	DefaultMaxMatchesPerProject      = 10000

	maxSLAWeight = 2
)

// ScoreWeights carries the tunables the scoring function depends on.
type ScoreWeights struct {
	OverlapMultiplier float64
	SLAWeightBase     float64
}

func DefaultScoreWeights() ScoreWeights {
	return ScoreWeights{
		OverlapMultiplier: DefaultServicesOverlapMultiplier,
		SLAWeightBase:     DefaultSLAWeightBase,
	}
}

var errMalformedVendor = errors.New("malformed vendor record")

// ScoreVendor computes the compatibility of vendor v with project p.
// A vendor is eligible only if it supports the project's country and offers at
// least one of the required services; ineligible pairs score 0.
//
//	score = overlap*multiplier + rating + slaWeight, rounded to two decimals
func ScoreVendor(p *MatchProject, v *MatchVendor, slaExpired bool, w ScoreWeights) (float64, bool) {
	if !containsID(v.CountriesSupported, p.CountryID) {
		return 0, false
	}

	overlap := servicesOverlap(p.ServicesNeeded, v.ServicesOffered)
	if overlap == 0 {
		return 0, false
	}

	servicesScore := float64(overlap) * w.OverlapMultiplier
	score := servicesScore + v.Rating + SLAWeight(v.ResponseSLAHours, slaExpired, w.SLAWeightBase)
	return round2(score), true
}

// SLAWeight is 0 for expired pairings or vendors without an SLA commitment,
// otherwise base/(hours+1) clamped to [0, 2].
func SLAWeight(slaHours float64, expired bool, base float64) float64 {
	if expired || slaHours <= 0 || math.IsNaN(slaHours) {
		return 0
	}
	weight := round2(base / (slaHours + 1))
	return math.Min(math.Max(weight, 0), maxSLAWeight)
}

// servicesOverlap counts required services the vendor offers. Duplicates in
// the required list count once.
func servicesOverlap(needed, offered []uint) int {
	if len(needed) == 0 || len(offered) == 0 {
		return 0
	}
	offeredSet := make(map[uint]struct{}, len(offered))
	for _, id := range offered {
		offeredSet[id] = struct{}{}
	}
	seen := make(map[uint]struct{}, len(needed))
	count := 0
	for _, id := range needed {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if _, ok := offeredSet[id]; ok {
			count++
		}
	}
	return count
}

func validateVendor(v *MatchVendor) error {
	if v.decodeErr != nil {
		return fmt.Errorf("%w: %v", errMalformedVendor, v.decodeErr)
	}
	if math.IsNaN(v.Rating) || math.IsInf(v.Rating, 0) {
		return errMalformedVendor
	}
	if math.IsNaN(v.ResponseSLAHours) || math.IsInf(v.ResponseSLAHours, 0) {
		return errMalformedVendor
	}
	return nil
}

func containsID(ids []uint, id uint) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}
