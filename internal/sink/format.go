package sink

import (
	"strconv"
	"strings"

	"me_msggen/internal/domain"
)

// Format renders a message as one record:
// seq,time,kind,symbol,price,tif,account,clordid[,orig_clordid]
// The orig_clordid field is present only for cancel and cancel-replace.
func Format(msg *domain.Message) string {
	var sb strings.Builder
	sb.Grow(96)

	sb.WriteString(strconv.FormatInt(msg.Seq, 10))
	sb.WriteByte(',')
	sb.WriteString(strconv.FormatInt(msg.Time, 10))
	sb.WriteByte(',')
	sb.WriteString(string(msg.Kind))
	sb.WriteByte(',')
	sb.WriteString(msg.Instrument.Symbol)
	sb.WriteByte(',')
	sb.WriteString(msg.PriceString())
	sb.WriteByte(',')
	sb.WriteString(msg.TIF)
	sb.WriteByte(',')
	sb.WriteString(msg.Account)
	sb.WriteByte(',')
	sb.WriteString(msg.ClOrdID)
	if msg.Amends() {
		sb.WriteByte(',')
		sb.WriteString(msg.OrigClOrdID)
	}
	return sb.String()
}
