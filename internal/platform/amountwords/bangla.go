// Package amountwords renders money amounts as words for printed vouchers.
package amountwords

import (
	"strings"

	"github.com/shopspring/decimal"
)

var banglaUnder100 = [100]string{
	"শূন্য", "এক", "দুই", "তিন", "চার", "পাঁচ", "ছয়", "সাত", "আট", "নয়",
	"দশ", "এগারো", "বারো", "তেরো", "চৌদ্দ", "পনেরো", "ষোলো", "সতেরো", "আঠারো", "উনিশ",
	"বিশ", "একুশ", "বাইশ", "তেইশ", "চব্বিশ", "পঁচিশ", "ছাব্বিশ", "সাতাশ", "আটাশ", "ঊনত্রিশ",
	"ত্রিশ", "একত্রিশ", "বত্রিশ", "তেত্রিশ", "চৌত্রিশ", "পঁয়ত্রিশ", "ছত্রিশ", "সাঁইত্রিশ", "আটত্রিশ", "ঊনচল্লিশ",
	"চল্লিশ", "একচল্লিশ", "বিয়াল্লিশ", "তেতাল্লিশ", "চুয়াল্লিশ", "পঁয়তাল্লিশ", "ছেচল্লিশ", "সাতচল্লিশ", "আটচল্লিশ", "ঊনপঞ্চাশ",
	"পঞ্চাশ", "একান্ন", "বাহান্ন", "তিপ্পান্ন", "চুয়ান্ন", "পঞ্চান্ন", "ছাপ্পান্ন", "সাতান্ন", "আটান্ন", "ঊনষাট",
	"ষাট", "একষট্টি", "বাষট্টি", "তেষট্টি", "চৌষট্টি", "পঁয়ষট্টি", "ছেষট্টি", "সাতষট্টি", "আটষট্টি", "ঊনসত্তর",
	"সত্তর", "একাত্তর", "বাহাত্তর", "তিয়াত্তর", "চুয়াত্তর", "পঁচাত্তর", "ছিয়াত্তর", "সাতাত্তর", "আটাত্তর", "ঊনআশি",
	"আশি", "একাশি", "বিরাশি", "তিরাশি", "চুরাশি", "পঁচাশি", "ছিয়াশি", "সাতাশি", "অষ্টাশি", "ঊননব্বই",
	"নব্বই", "একানব্বই", "বিরানব্বই", "তিরানব্বই", "চুরানব্বই", "পঁচানব্বই", "ছিয়ানব্বই", "সাতানব্বই", "আটানব্বই", "নিরানব্বই",
}

const (
	crore    = 10000000
	lakh     = 100000
	thousand = 1000
	hundred  = 100
)

// Bangla spells amount in taka and poisha, e.g. 1250.50 becomes
// "এক হাজার দুই শত পঞ্চাশ টাকা পঞ্চাশ পয়সা মাত্র".
// The amount is rounded to two decimal places first.
func Bangla(amount decimal.Decimal) string {
	var b strings.Builder

	amount = amount.Round(2)
	if amount.IsNegative() {
		b.WriteString("ঋণাত্মক ")
		amount = amount.Neg()
	}

	taka := amount.IntPart()
	poisha := amount.Sub(decimal.NewFromInt(taka)).Shift(2).IntPart()

	b.WriteString(banglaNumber(taka))
	b.WriteString(" টাকা")
	if poisha > 0 {
		b.WriteString(" ")
		b.WriteString(banglaUnder100[poisha])
		b.WriteString(" পয়সা")
	}
	b.WriteString(" মাত্র")

	return b.String()
}

// banglaNumber uses South Asian grouping: কোটি, লক্ষ, হাজার, শত
func banglaNumber(n int64) string {
	if n == 0 {
		return banglaUnder100[0]
	}

	var parts []string
	if n >= crore {
		parts = append(parts, banglaNumber(n/crore), "কোটি")
		n %= crore
	}
	for _, g := range []struct {
		size int64
		name string
	}{
		{lakh, "লক্ষ"},
		{thousand, "হাজার"},
		{hundred, "শত"},
	} {
		if n >= g.size {
			parts = append(parts, banglaUnder100[n/g.size], g.name)
			n %= g.size
		}
	}
	if n > 0 {
		parts = append(parts, banglaUnder100[n])
	}

	return strings.Join(parts, " ")
}
