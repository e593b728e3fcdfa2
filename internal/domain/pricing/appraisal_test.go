package pricing

import (
	"context"
	"errors"
	"testing"

	"github.com/mangodeliveries/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAppraisalClient struct {
	appraisal *Appraisal
	err       error
}

func (f *fakeAppraisalClient) Fetch(_ context.Context, _ string) (*Appraisal, error) {
	return f.appraisal, f.err
}

type fakeExclusions struct {
	items  map[int64]bool
	groups map[int64]bool
}

func (f *fakeExclusions) IsItemExcluded(_ context.Context, typeID int64) (bool, error) {
	return f.items[typeID], nil
}

func (f *fakeExclusions) IsMarketGroupExcluded(_ context.Context, groupID int64) (bool, error) {
	return f.groups[groupID], nil
}

type fakeLimit struct{ max float64 }

func (f *fakeLimit) MaxVolume(_ context.Context) (float64, error) { return f.max, nil }

func newTestAppraisal() *Appraisal {
	return &Appraisal{
		Code: "abc123",
		Items: []AppraisalItem{
			{TypeID: 34, MarketGroupID: 1857, Name: "Tritanium", Quantity: 1_000_000, Volume: 10_000, SellValue: decimal.NewFromInt(4_000_000)},
			{TypeID: 35, MarketGroupID: 1857, Name: "Pyerite", Quantity: 500_000, Volume: 5_000, SellValue: decimal.NewFromInt(6_000_000)},
		},
		TotalSell:   decimal.NewFromInt(10_000_000),
		TotalVolume: 15_000,
	}
}

func newTestQuoter(client AppraisalClient) *AppraisalQuoter {
	return NewAppraisalQuoter(client,
		&fakeExclusions{items: map[int64]bool{}, groups: map[int64]bool{}},
		&fakeLimit{max: 340_000})
}

func TestAppraisalQuoter_Quote(t *testing.T) {
	t.Run("reward is sell value times multiplier", func(t *testing.T) {
		quoter := newTestQuoter(&fakeAppraisalClient{appraisal: newTestAppraisal()})

		quote, err := quoter.Quote(context.Background(), "abc123", 3)
		require.NoError(t, err)

		assert.True(t, quote.Reward.Equal(decimal.NewFromInt(30_000_000)), "got %s", quote.Reward)
		assert.True(t, quote.Quote.Equal(decimal.NewFromInt(33_900_000)), "got %s", quote.Quote)
		assert.Equal(t, 45_000.0, quote.Volume)
	})

	t.Run("multiplier below one is clamped", func(t *testing.T) {
		quoter := newTestQuoter(&fakeAppraisalClient{appraisal: newTestAppraisal()})

		quote, err := quoter.Quote(context.Background(), "abc123", 0)
		require.NoError(t, err)

		assert.Equal(t, 1, quote.Multiplier)
		assert.True(t, quote.Reward.Equal(decimal.NewFromInt(10_000_000)))
	})

	t.Run("fetch failure is a validation error", func(t *testing.T) {
		quoter := newTestQuoter(&fakeAppraisalClient{err: errors.New("404")})

		_, err := quoter.Quote(context.Background(), "nope", 1)

		require.Error(t, err)
		assert.True(t, shared.IsCode(err, "VALIDATION_ERROR"))
	})

	t.Run("empty item list is a validation error", func(t *testing.T) {
		quoter := newTestQuoter(&fakeAppraisalClient{appraisal: &Appraisal{Code: "empty"}})

		_, err := quoter.Quote(context.Background(), "empty", 1)

		require.Error(t, err)
		assert.True(t, shared.IsCode(err, "VALIDATION_ERROR"))
	})

	t.Run("excluded item type is rejected", func(t *testing.T) {
		quoter := NewAppraisalQuoter(
			&fakeAppraisalClient{appraisal: newTestAppraisal()},
			&fakeExclusions{items: map[int64]bool{34: true}, groups: map[int64]bool{}},
			&fakeLimit{max: 340_000})

		_, err := quoter.Quote(context.Background(), "abc123", 1)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "Tritanium")
	})

	t.Run("excluded market group is rejected", func(t *testing.T) {
		quoter := NewAppraisalQuoter(
			&fakeAppraisalClient{appraisal: newTestAppraisal()},
			&fakeExclusions{items: map[int64]bool{}, groups: map[int64]bool{1857: true}},
			&fakeLimit{max: 340_000})

		_, err := quoter.Quote(context.Background(), "abc123", 1)

		require.Error(t, err)
		assert.True(t, shared.IsCode(err, "VALIDATION_ERROR"))
	})

	t.Run("volume cap applies to the multiplied load", func(t *testing.T) {
		quoter := NewAppraisalQuoter(
			&fakeAppraisalClient{appraisal: newTestAppraisal()},
			&fakeExclusions{items: map[int64]bool{}, groups: map[int64]bool{}},
			&fakeLimit{max: 40_000})

		_, err := quoter.Quote(context.Background(), "abc123", 3)

		require.Error(t, err)
		assert.True(t, shared.IsCode(err, "VALIDATION_ERROR"))

		// The same load fits without the multiplier.
		_, err = quoter.Quote(context.Background(), "abc123", 2)
		assert.NoError(t, err)
	})
}

func TestComma(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{0, "0"},
		{999, "999"},
		{1_000, "1,000"},
		{1_234_567, "1,234,567"},
		{-1_234_567, "-1,234,567"},
		{1_000_000_000, "1,000,000,000"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Comma(decimal.NewFromInt(tt.in)))
	}
}

func TestShorten(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{950, "950.00"},
		{1_500, "1.50K"},
		{2_250_000, "2.25M"},
		{1_250_000_000, "1.25B"},
		{3_000_000_000_000, "3.00T"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Shorten(decimal.NewFromInt(tt.in), 2))
	}
}
