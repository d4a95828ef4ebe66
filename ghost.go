package finetract

import (
	"sort"
	"strings"
	"time"
)

// GhostSubscription is a recurring merchant/amount pattern inferred from a
// roughly monthly gap between two same-amount purchases. Derived on every
// scan, never persisted.
type GhostSubscription struct {
	Merchant     string
	Amount       float64
	LastObserved time.Time
	CycleDays    int
}

const (
	ghostCycleDays  = 30
	ghostMinGapDays = 25
	ghostMaxGapDays = 35
)

// genericMerchants never indicate a subscription on their own.
var genericMerchants = []string{"UPI", "Cash", "Unknown"}

// ScanGhosts is a pure function over the transaction log: group by merchant
// and exact amount, then flag the first consecutive pair 25-35 whole days
// apart. At most one flag per merchant/amount group per scan. Output is
// sorted so identical ledgers produce identical results.
func ScanGhosts(txns []TransactionRecord) []GhostSubscription {
	type groupKey struct {
		merchant string
		amount   float64
	}
	groups := make(map[groupKey][]TransactionRecord)
	for _, t := range txns {
		if isGenericMerchant(t.Merchant) {
			continue
		}
		k := groupKey{merchant: t.Merchant, amount: t.Amount}
		groups[k] = append(groups[k], t)
	}

	var ghosts []GhostSubscription
	for k, g := range groups {
		if len(g) < 2 {
			continue
		}
		sort.Slice(g, func(i, j int) bool { return g[i].Time.Before(g[j].Time) })
		for i := 0; i < len(g)-1; i++ {
			gap := int(g[i+1].Time.Sub(g[i].Time) / (24 * time.Hour))
			if gap >= ghostMinGapDays && gap <= ghostMaxGapDays {
				ghosts = append(ghosts, GhostSubscription{
					Merchant:     k.merchant,
					Amount:       k.amount,
					LastObserved: g[i+1].Time,
					CycleDays:    ghostCycleDays,
				})
				break
			}
		}
	}

	sort.Slice(ghosts, func(i, j int) bool {
		if ghosts[i].Merchant != ghosts[j].Merchant {
			return ghosts[i].Merchant < ghosts[j].Merchant
		}
		return ghosts[i].Amount < ghosts[j].Amount
	})
	return ghosts
}

func isGenericMerchant(m string) bool {
	for _, g := range genericMerchants {
		if strings.EqualFold(m, g) {
			return true
		}
	}
	return false
}
