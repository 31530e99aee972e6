package coupon

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeDiscount(t *testing.T) {
	tests := []struct {
		name   string
		coupon Coupon
		amount decimal.Decimal
		want   decimal.Decimal
	}{
		{
			name:   "plain percentage",
			coupon: Coupon{DiscountType: DiscountPercentage, DiscountValue: dec(10)},
			amount: dec(1000),
			want:   dec(100),
		},
		{
			name:   "percentage hits cap",
			coupon: Coupon{DiscountType: DiscountPercentage, DiscountValue: dec(10), MaxDiscount: dec(200)},
			amount: dec(3000),
			want:   dec(200),
		},
		{
			name:   "percentage under cap untouched",
			coupon: Coupon{DiscountType: DiscountPercentage, DiscountValue: dec(10), MaxDiscount: dec(200)},
			amount: dec(1500),
			want:   dec(150),
		},
		{
			name:   "zero cap means uncapped",
			coupon: Coupon{DiscountType: DiscountPercentage, DiscountValue: dec(50)},
			amount: dec(10000),
			want:   dec(5000),
		},
		{
			name:   "fixed below order amount",
			coupon: Coupon{DiscountType: DiscountFixed, DiscountValue: dec(500)},
			amount: dec(2000),
			want:   dec(500),
		},
		{
			name:   "fixed clamped to order amount",
			coupon: Coupon{DiscountType: DiscountFixed, DiscountValue: dec(500)},
			amount: dec(300),
			want:   dec(300),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := computeDiscount(&tt.coupon, tt.amount)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "expected %s, got %s", tt.want, got)
		})
	}
}

func TestComputeDiscount_UnknownType(t *testing.T) {
	_, err := computeDiscount(&Coupon{DiscountType: "bogo", DiscountValue: dec(10)}, dec(100))
	assert.Error(t, err)
}
