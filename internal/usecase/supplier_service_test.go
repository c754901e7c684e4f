package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/supplylens/backend/internal/domain"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newTestSupplierService(cache domain.CacheRepository) (*SupplierService, *fakeClock, *recordingObserver) {
	clock := &fakeClock{now: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
	observer := &recordingObserver{}
	svc := NewSupplierService(cache, nil, SupplierServiceConfig{
		Clock:    clock.Now,
		Observer: observer,
	})
	return svc, clock, observer
}

func earbudsInput(price string) domain.SupplierSearchInput {
	return domain.SupplierSearchInput{
		Title:          "Wireless Bluetooth Earbuds",
		Price:          decimal.RequireFromString(price),
		Images:         []string{"https://cdn.x/e.jpg"},
		SourcePlatform: domain.PlatformAliExpress,
	}
}

func platformsOf(candidates []domain.SupplierCandidate) []domain.PlatformID {
	out := make([]domain.PlatformID, 0, len(candidates))
	for _, c := range candidates {
		out = append(out, c.Platform)
	}
	return out
}

func TestSelectPlatforms(t *testing.T) {
	tests := []struct {
		name       string
		price      string
		source     domain.PlatformID
		restricted bool
		want       []domain.PlatformID
	}{
		{
			name:  "mid price gets priority platforms only",
			price: "30", source: domain.PlatformShopify,
			want: []domain.PlatformID{domain.PlatformAliExpress, domain.PlatformCJ},
		},
		{
			name:  "source platform is skipped",
			price: "20", source: domain.PlatformAliExpress,
			want: []domain.PlatformID{domain.PlatformCJ},
		},
		{
			name:  "high price adds wholesale",
			price: "50.01", source: domain.PlatformGeneric,
			want: []domain.PlatformID{domain.PlatformAliExpress, domain.PlatformCJ, domain.PlatformAlibaba},
		},
		{
			name:  "exactly 50 is not wholesale",
			price: "50", source: domain.PlatformGeneric,
			want: []domain.PlatformID{domain.PlatformAliExpress, domain.PlatformCJ},
		},
		{
			name:  "low price adds budget platforms",
			price: "9.99", source: domain.PlatformGeneric,
			want: []domain.PlatformID{domain.PlatformAliExpress, domain.PlatformCJ, domain.PlatformDHgate, domain.PlatformBanggood},
		},
		{
			name:  "restricted platform needs opt-in",
			price: "100", source: domain.PlatformCJ, restricted: true,
			want: []domain.PlatformID{domain.PlatformAliExpress, domain.PlatformAlibaba, domain.Platform1688},
		},
		{
			name:  "capped at four",
			price: "5", source: domain.PlatformGeneric, restricted: true,
			want: []domain.PlatformID{domain.PlatformAliExpress, domain.PlatformCJ, domain.PlatformDHgate, domain.PlatformBanggood},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SelectPlatforms(decimal.RequireFromString(tt.price), tt.source, tt.restricted, 4)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSignature(t *testing.T) {
	assert.Equal(t, "suppliers:blue widget:19.90", Signature("  Blue \t WIDGET ", decimal.RequireFromString("19.9")))
	assert.Equal(t,
		Signature("Blue Widget", decimal.NewFromInt(5)),
		Signature("blue   widget", decimal.RequireFromString("5.00")),
	)

	long := strings.Repeat("a", 80)
	assert.Equal(t, "suppliers:"+strings.Repeat("a", 50)+":1.00", Signature(long, decimal.NewFromInt(1)))
}

func TestSupplierService_DetectSuppliers(t *testing.T) {
	ctx := context.Background()

	t.Run("cj estimate for a 20.00 product", func(t *testing.T) {
		svc, _, _ := newTestSupplierService(nil)

		got, err := svc.DetectSuppliers(ctx, earbudsInput("20.00"), domain.SearchOptions{})
		require.NoError(t, err)
		require.Len(t, got, 1)

		cj := got[0]
		assert.Equal(t, domain.PlatformCJ, cj.Platform)
		assert.Equal(t, "9.00", cj.EstimatedPrice.StringFixed(2))
		assert.Equal(t, "7.20", cj.EstimatedPriceRange.Min.StringFixed(2))
		assert.Equal(t, "11.70", cj.EstimatedPriceRange.Max.StringFixed(2))
		assert.Equal(t, "wireless bluetooth earbuds", cj.Query)
		assert.Equal(t, "https://cjdropshipping.com/search?keyword=wireless+bluetooth+earbuds", cj.SearchURL)
		assert.Equal(t, "USD", cj.Currency)
		assert.Equal(t, 1, cj.MOQ)
		require.NotNil(t, cj.PotentialMargin)
		assert.Equal(t, 55, cj.PotentialMargin.MarginPercent)
		assert.NotZero(t, cj.OverallScore)
		assert.NotEmpty(t, cj.ID)
	})

	t.Run("confidence uses the inferred category", func(t *testing.T) {
		svc, _, _ := newTestSupplierService(nil)

		got, err := svc.DetectSuppliers(ctx, earbudsInput("20.00"), domain.SearchOptions{})
		require.NoError(t, err)
		require.Len(t, got, 1)
		// 50 + 3 terms + electronics + images + cj adjustment
		assert.Equal(t, 95, got[0].Confidence)
		assert.Equal(t, domain.RecommendationCertification, got[0].Recommendations[0].Kind)
	})

	t.Run("candidates are ranked by overall score", func(t *testing.T) {
		svc, _, _ := newTestSupplierService(nil)
		input := earbudsInput("9.99")
		input.SourcePlatform = domain.PlatformGeneric

		got, err := svc.DetectSuppliers(ctx, input, domain.SearchOptions{})
		require.NoError(t, err)
		require.Len(t, got, 4)
		for i := 1; i < len(got); i++ {
			assert.GreaterOrEqual(t, got[i-1].OverallScore, got[i].OverallScore)
		}
		assert.ElementsMatch(t,
			[]domain.PlatformID{domain.PlatformAliExpress, domain.PlatformCJ, domain.PlatformDHgate, domain.PlatformBanggood},
			platformsOf(got),
		)
	})

	t.Run("deterministic across calls", func(t *testing.T) {
		svc, _, _ := newTestSupplierService(nil)
		first, err := svc.DetectSuppliers(ctx, earbudsInput("35"), domain.SearchOptions{})
		require.NoError(t, err)
		second, err := svc.DetectSuppliers(ctx, earbudsInput("35"), domain.SearchOptions{})
		require.NoError(t, err)
		assert.Equal(t, first, second)
	})

	t.Run("rejects empty title", func(t *testing.T) {
		svc, _, _ := newTestSupplierService(nil)
		_, err := svc.DetectSuppliers(ctx, domain.SupplierSearchInput{Title: "  "}, domain.SearchOptions{})
		assert.ErrorIs(t, err, domain.ErrInvalidRequest)
	})

	t.Run("honors cancellation", func(t *testing.T) {
		svc, _, _ := newTestSupplierService(nil)
		cancelled, cancel := context.WithCancel(ctx)
		cancel()

		_, err := svc.DetectSuppliers(cancelled, earbudsInput("20"), domain.SearchOptions{})
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestSupplierService_Cache(t *testing.T) {
	ctx := context.Background()

	encode := func(t *testing.T, c []domain.SupplierCandidate) string {
		t.Helper()
		b, err := json.Marshal(c)
		require.NoError(t, err)
		return string(b)
	}

	t.Run("second call within ttl is served from cache", func(t *testing.T) {
		cache := NewMockCacheRepository()
		svc, clock, observer := newTestSupplierService(cache)

		first, err := svc.DetectSuppliers(ctx, earbudsInput("20"), domain.SearchOptions{})
		require.NoError(t, err)
		clock.Advance(29 * time.Minute)
		second, err := svc.DetectSuppliers(ctx, earbudsInput("20"), domain.SearchOptions{})
		require.NoError(t, err)

		assert.Equal(t, 1, cache.setCalls, "result should be computed once")
		assert.Equal(t, encode(t, first), encode(t, second))
		assert.Equal(t, []bool{false, true}, observer.hits)
	})

	t.Run("stale entry is recomputed and overwritten", func(t *testing.T) {
		cache := NewMockCacheRepository()
		svc, clock, _ := newTestSupplierService(cache)

		_, err := svc.DetectSuppliers(ctx, earbudsInput("20"), domain.SearchOptions{})
		require.NoError(t, err)
		clock.Advance(30 * time.Minute)
		_, err = svc.DetectSuppliers(ctx, earbudsInput("20"), domain.SearchOptions{})
		require.NoError(t, err)

		assert.Equal(t, 2, cache.setCalls)
		assert.Len(t, cache.data, 1)

		var entry domain.CachedResult[[]domain.SupplierCandidate]
		require.NoError(t, json.Unmarshal(cache.data[Signature("Wireless Bluetooth Earbuds", decimal.NewFromInt(20))], &entry))
		assert.True(t, entry.CreatedAt.Equal(clock.Now()))
	})

	t.Run("bypass skips the lookup but refreshes the entry", func(t *testing.T) {
		cache := NewMockCacheRepository()
		svc, _, _ := newTestSupplierService(cache)

		_, err := svc.DetectSuppliers(ctx, earbudsInput("20"), domain.SearchOptions{})
		require.NoError(t, err)
		_, err = svc.DetectSuppliers(ctx, earbudsInput("20"), domain.SearchOptions{BypassCache: true})
		require.NoError(t, err)

		assert.Equal(t, 1, cache.getCalls)
		assert.Equal(t, 2, cache.setCalls)
	})

	t.Run("clear forces recomputation", func(t *testing.T) {
		cache := NewMockCacheRepository()
		svc, _, _ := newTestSupplierService(cache)

		_, err := svc.DetectSuppliers(ctx, earbudsInput("20"), domain.SearchOptions{})
		require.NoError(t, err)
		require.NoError(t, svc.ClearCache(ctx))
		_, err = svc.DetectSuppliers(ctx, earbudsInput("20"), domain.SearchOptions{})
		require.NoError(t, err)

		assert.True(t, cache.clearCalled)
		assert.Equal(t, 2, cache.setCalls)
	})

	t.Run("cache failures do not fail the search", func(t *testing.T) {
		cache := NewMockCacheRepository()
		cache.getError = errors.New("connection refused")
		cache.setError = errors.New("connection refused")
		svc, _, _ := newTestSupplierService(cache)

		got, err := svc.DetectSuppliers(ctx, earbudsInput("20"), domain.SearchOptions{})
		require.NoError(t, err)
		assert.Len(t, got, 1)
	})

	t.Run("corrupt entry is treated as a miss", func(t *testing.T) {
		cache := NewMockCacheRepository()
		cache.data[Signature("Wireless Bluetooth Earbuds", decimal.NewFromInt(20))] = []byte("{not json")
		svc, _, _ := newTestSupplierService(cache)

		got, err := svc.DetectSuppliers(ctx, earbudsInput("20"), domain.SearchOptions{})
		require.NoError(t, err)
		assert.Len(t, got, 1)
		assert.Equal(t, 1, cache.setCalls)
	})
}
