package numeric

import (
	"math"
	"math/big"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	ones  = []string{"", "One", "Two", "Three", "Four", "Five", "Six", "Seven", "Eight", "Nine"}
	teens = []string{"Ten", "Eleven", "Twelve", "Thirteen", "Fourteen", "Fifteen", "Sixteen", "Seventeen", "Eighteen", "Nineteen"}
	tens  = []string{"", "", "Twenty", "Thirty", "Forty", "Fifty", "Sixty", "Seventy", "Eighty", "Ninety"}
)

const (
	crore    = 10_000_000
	lakh     = 100_000
	thousand = 1_000
)

// NumberToWordsIndian spells amount in Indian numbering (crore, lakh,
// thousand, hundred) followed by "Rupees", an optional "and N Paise", and
// "Only". Negative amounts are spelled by magnitude.
//
//	NumberToWordsIndian(59000)     // "Fifty Nine Thousand Rupees Only"
//	NumberToWordsIndian(123456.5)  // "One Lakh Twenty Three Thousand Four Hundred Fifty Six Rupees and Fifty Paise Only"
func NumberToWordsIndian(amount float64) string {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return "Zero Rupees Only"
	}
	d := decimal.NewFromFloat(amount).Abs().Round(2)
	rupees := d.Floor()
	paise := d.Sub(rupees).Shift(2).IntPart()

	var b strings.Builder
	if rupees.IsZero() {
		b.WriteString("Zero")
	} else {
		b.WriteString(spellBig(rupees.BigInt()))
	}
	b.WriteString(" Rupees")
	if paise > 0 {
		b.WriteString(" and ")
		b.WriteString(belowHundred(paise))
		b.WriteString(" Paise")
	}
	b.WriteString(" Only")
	return b.String()
}

var bigCrore = big.NewInt(crore)

// spellBig handles rupee amounts past the int64 range by splitting off crores.
func spellBig(n *big.Int) string {
	if n.IsInt64() {
		return spell(n.Int64())
	}
	c, rest := new(big.Int).QuoRem(n, bigCrore, new(big.Int))
	s := spellBig(c) + " Crore"
	if rest.Sign() > 0 {
		s += " " + spell(rest.Int64())
	}
	return s
}

// spell converts n > 0 to words. Crore counts above 99 are themselves spelled
// in Indian grouping, so 10^10 reads "One Thousand Crore".
func spell(n int64) string {
	var parts []string
	if c := n / crore; c > 0 {
		parts = append(parts, spell(c)+" Crore")
	}
	if l := n % crore / lakh; l > 0 {
		parts = append(parts, belowHundred(l)+" Lakh")
	}
	if t := n % lakh / thousand; t > 0 {
		parts = append(parts, belowHundred(t)+" Thousand")
	}
	if h := n % thousand; h > 0 {
		parts = append(parts, belowThousand(h))
	}
	return strings.Join(parts, " ")
}

func belowHundred(n int64) string {
	switch {
	case n <= 0:
		return ""
	case n < 10:
		return ones[n]
	case n < 20:
		return teens[n-10]
	case n%10 == 0:
		return tens[n/10]
	default:
		return tens[n/10] + " " + ones[n%10]
	}
}

func belowThousand(n int64) string {
	if n < 100 {
		return belowHundred(n)
	}
	s := ones[n/100] + " Hundred"
	if rest := n % 100; rest > 0 {
		s += " " + belowHundred(rest)
	}
	return s
}
