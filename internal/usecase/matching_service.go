package usecase

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/supplylens/backend/internal/domain"
)

// Confidence scoring
const (
	confidenceBase     = 50
	confidencePerTerm  = 5
	confidenceTermCap  = 20
	confidenceCategory = 10 // category is known and not general
	confidenceImages   = 10 // product has at least one image
	confidenceFloor    = 10
	confidenceCeiling  = 95
)

// Recommendation thresholds
const (
	recommendShippingDays   = 20
	recommendMinReliability = 0.8
	electronicsCategory     = "electronics"
)

// RankingWeights is the tunable weighting of the overall candidate score
type RankingWeights struct {
	Confidence     float64 // multiplier on confidence
	Margin         float64 // multiplier on the capped margin percent
	MarginCap      int     // margin percent above this earns nothing extra
	Reliability    float64 // multiplier on reliability (0-1)
	ShippingBase   float64 // shipping bonus before the per-day penalty
	ShippingPerDay float64 // penalty per average shipping day
}

// DefaultRankingWeights returns the production ranking weights
func DefaultRankingWeights() RankingWeights {
	return RankingWeights{
		Confidence:     0.4,
		Margin:         0.5,
		MarginCap:      60,
		Reliability:    20,
		ShippingBase:   15,
		ShippingPerDay: 0.5,
	}
}

// MatchConfig holds configuration for the matching service
type MatchConfig struct {
	Weights RankingWeights
}

// MatchingService scores supplier candidates: confidence, margin, advice and rank
type MatchingService struct {
	weights RankingWeights
}

// NewMatchingService creates a new matching service; zero weights fall back to the defaults
func NewMatchingService(config MatchConfig) *MatchingService {
	weights := config.Weights
	if weights == (RankingWeights{}) {
		weights = DefaultRankingWeights()
	}
	return &MatchingService{weights: weights}
}

// Confidence estimates how likely a platform search finds the same product
func (s *MatchingService) Confidence(keyTermCount int, category string, hasImages bool, profile domain.PlatformProfile) int {
	score := confidenceBase
	score += min(keyTermCount*confidencePerTerm, confidenceTermCap)
	if isSpecificCategory(category) {
		score += confidenceCategory
	}
	if hasImages {
		score += confidenceImages
	}
	score += profile.ConfidenceAdjustment
	return clampInt(score, confidenceFloor, confidenceCeiling)
}

// Margin computes the profit potential of reselling at sellingPrice.
// It returns nil when either price is zero.
func (s *MatchingService) Margin(sellingPrice, supplierPrice decimal.Decimal) *domain.Margin {
	if sellingPrice.IsZero() || supplierPrice.IsZero() {
		return nil
	}

	profit := sellingPrice.Sub(supplierPrice)
	hundred := decimal.NewFromInt(100)

	return &domain.Margin{
		Profit:        profit.Round(2),
		MarginPercent: roundHalfAwayInt(profit.Div(sellingPrice).Mul(hundred)),
		ROI:           roundHalfAwayInt(profit.Div(supplierPrice).Mul(hundred)),
	}
}

// Recommendations lists advisory notes for buying from a platform
func (s *MatchingService) Recommendations(profile domain.PlatformProfile, category string) []domain.Recommendation {
	recs := []domain.Recommendation{}

	if profile.MinimumOrderQuantity > 1 {
		recs = append(recs, domain.Recommendation{
			Kind:    domain.RecommendationMOQ,
			Message: fmt.Sprintf("Minimum order of %d units; order a sample first", profile.MinimumOrderQuantity),
		})
	}
	if profile.ShippingRange.Max > recommendShippingDays {
		recs = append(recs, domain.Recommendation{
			Kind:    domain.RecommendationShipping,
			Message: fmt.Sprintf("Shipping can take up to %d days; set delivery expectations", profile.ShippingRange.Max),
		})
	}
	if profile.Reliability < recommendMinReliability {
		recs = append(recs, domain.Recommendation{
			Kind:    domain.RecommendationReliability,
			Message: "Supplier reliability is below average; check seller ratings before ordering",
		})
	}
	if strings.EqualFold(strings.TrimSpace(category), electronicsCategory) {
		recs = append(recs, domain.Recommendation{
			Kind:    domain.RecommendationCertification,
			Message: "Electronics need CE/FCC certification; ask the supplier for documents",
		})
	}

	return recs
}

// OverallScore aggregates confidence, margin, reliability and shipping speed
func (s *MatchingService) OverallScore(c domain.SupplierCandidate) int {
	w := s.weights

	marginPercent := 0
	if c.PotentialMargin != nil {
		marginPercent = min(c.PotentialMargin.MarginPercent, w.MarginCap)
	}

	score := float64(c.Confidence)*w.Confidence +
		float64(marginPercent)*w.Margin +
		c.Reliability*w.Reliability +
		math.Max(0, w.ShippingBase-c.Shipping.Average()*w.ShippingPerDay)

	return int(math.Round(score))
}

// Rank scores every candidate and sorts them by descending overall score.
// Equal scores keep their generation order.
func (s *MatchingService) Rank(candidates []domain.SupplierCandidate) []domain.SupplierCandidate {
	for i := range candidates {
		candidates[i].OverallScore = s.OverallScore(candidates[i])
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].OverallScore > candidates[j].OverallScore
	})
	return candidates
}

func isSpecificCategory(category string) bool {
	c := strings.ToLower(strings.TrimSpace(category))
	return c != "" && c != GeneralCategory
}

// roundHalfAwayInt rounds a decimal to the nearest integer, halves away from zero
func roundHalfAwayInt(d decimal.Decimal) int {
	return int(d.Round(0).IntPart())
}
