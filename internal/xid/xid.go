package xid

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	PrefixInvoice    = "INV"
	PrefixPurchase   = "PUR"
	PrefixCreditNote = "CN"
	PrefixAdjustment = "ADJ"
	PrefixSoldItem   = "SOLD"
)

// New returns prefix-<unix nanos>-<random suffix>. The time component keeps
// ids roughly ordered; the suffix keeps them unique on coarse clocks.
func New(prefix string) string {
	id, err := uuid.NewRandom()
	if err != nil {
		return fmt.Sprintf("%s-%d", prefix, time.Now().UnixNano())
	}
	suffix := strings.ReplaceAll(id.String(), "-", "")[:8]
	return fmt.Sprintf("%s-%d-%s", prefix, time.Now().UnixNano(), suffix)
}
