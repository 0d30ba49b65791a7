package settlement

import "github.com/shopspring/decimal"

// 默认费率
const (
	defaultCardFeeRate      = 0.035
	defaultCorporateTaxRate = 0.10
)

// HQRevenueCalculator 根据合计值估算总部净收入，不访问任何数据源
type HQRevenueCalculator struct {
	cardFeeRate      decimal.Decimal
	corporateTaxRate decimal.Decimal
}

// NewHQRevenueCalculator 创建总部收入计算器，负数费率视为未配置并使用默认值，0 表示不收取
func NewHQRevenueCalculator(cardFeeRate, corporateTaxRate float64) *HQRevenueCalculator {
	if cardFeeRate < 0 {
		cardFeeRate = defaultCardFeeRate
	}
	if corporateTaxRate < 0 {
		corporateTaxRate = defaultCorporateTaxRate
	}
	return &HQRevenueCalculator{
		cardFeeRate:      decimal.NewFromFloat(cardFeeRate),
		corporateTaxRate: decimal.NewFromFloat(corporateTaxRate),
	}
}

// Calculate 计算卡手续费、法人税和扣除后的净收入，净收入不低于 0
// 舍入为四舍五入（远离零）
func (h *HQRevenueCalculator) Calculate(totals SaleTotals) HQRevenue {
	gross := decimal.NewFromInt(totals.NetRevenue)
	cardFees := decimal.NewFromInt(totals.SaleAmount).Mul(h.cardFeeRate).Round(0)
	corporateTax := gross.Mul(h.corporateTaxRate).Round(0)

	net := gross.Sub(cardFees).Sub(corporateTax)
	if net.IsNegative() {
		net = decimal.Zero
	}

	return HQRevenue{
		GrossRevenue: gross.IntPart(),
		CardFees:     cardFees.IntPart(),
		CorporateTax: corporateTax.IntPart(),
		NetAfterFees: net.IntPart(),
	}
}
