package invoice

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// NumberPrefix returns the YYYYMM prefix invoice numbers carry for the
// month of ref, e.g. "202505".
func NumberPrefix(ref time.Time) string {
	return ref.Format("200601")
}

// NextNumber computes the next invoice number for the month of ref, given
// every existing number of the owner. Numbers are YYYYMMNN: the highest
// sequence among numbers sharing the month prefix, plus one, zero-padded to
// two digits. The sequence is parsed from everything after the prefix, so a
// month with more than 99 invoices rolls into three digits instead of
// wrapping.
//
// NextNumber neither reserves nor persists anything: two concurrent callers
// see the same answer. The caller must rely on the store's uniqueness
// constraint on (owner, number) and retry on collision.
func NextNumber(existing []string, ref time.Time) string {
	prefix := NumberPrefix(ref)

	max := 0
	for _, n := range existing {
		if !strings.HasPrefix(n, prefix) {
			continue
		}
		seq, err := strconv.Atoi(n[len(prefix):])
		if err != nil {
			continue
		}
		if seq > max {
			max = seq
		}
	}

	return fmt.Sprintf("%s%02d", prefix, max+1)
}
