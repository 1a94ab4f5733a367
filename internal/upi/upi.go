// Package upi builds UPI payment deep links.
package upi

import (
	"strconv"
	"strings"
)

// Params are the fields encoded into a UPI link. Amount is omitted from the
// link when nil.
type Params struct {
	UPIID       string   `json:"upi_id" binding:"required"`
	PayeeName   string   `json:"payee_name" binding:"required"`
	Amount      *float64 `json:"amount,omitempty"`
	Currency    string   `json:"currency,omitempty"`
	Note        string   `json:"note,omitempty"`
	TxnRef      string   `json:"txn_ref,omitempty"`
	CallbackURL string   `json:"callback_url,omitempty"`
}

// Deeplink formats p as
//
//	upi://pay?pa=..&pn=..[&am=..]&cu=..[&tn=..][&tr=..][&url=..]
//
// in that fixed order. The currency defaults to INR.
func Deeplink(p Params) string {
	currency := p.Currency
	if currency == "" {
		currency = "INR"
	}

	var b strings.Builder
	b.WriteString("upi://pay?pa=")
	b.WriteString(escape(p.UPIID))
	b.WriteString("&pn=")
	b.WriteString(escape(p.PayeeName))
	if p.Amount != nil {
		b.WriteString("&am=")
		b.WriteString(strconv.FormatFloat(*p.Amount, 'f', 2, 64))
	}
	b.WriteString("&cu=")
	b.WriteString(currency)
	if p.Note != "" {
		b.WriteString("&tn=")
		b.WriteString(escape(p.Note))
	}
	if p.TxnRef != "" {
		b.WriteString("&tr=")
		b.WriteString(escape(p.TxnRef))
	}
	if p.CallbackURL != "" {
		b.WriteString("&url=")
		b.WriteString(escape(p.CallbackURL))
	}
	return b.String()
}

// QRPayload returns the string to encode in a payment QR code. It is the
// deep link itself.
func QRPayload(p Params) string {
	return Deeplink(p)
}

const upperhex = "0123456789ABCDEF"

// escape percent-encodes every byte outside A-Z a-z 0-9 and "_.-~/". Space
// becomes %20, unlike url.QueryEscape.
func escape(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if keep(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(upperhex[c>>4])
		b.WriteByte(upperhex[c&15])
	}
	return b.String()
}

func keep(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	case c == '_', c == '.', c == '-', c == '~', c == '/':
		return true
	}
	return false
}
