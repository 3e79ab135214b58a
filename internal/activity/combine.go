// Package activity merges locally tracked transactions with the activity history read
// from a backend.
package activity

import (
	"sort"
	"strings"

	"taikodata/internal/model"
)

// CombineActivities de-duplicates local and remote activities by hash. Remote values win
// over local ones, except for locally cancelled transactions: those keep the local
// record, unless the remote record sits on another chain (a nonce collision across
// chains), in which case the remote record is used. A cancelled local transaction with no
// remote counterpart is dropped. The result is ordered newest first, then by hash.
func CombineActivities(local, remote model.ActivityMap) []model.Activity {
	hashes := make(map[string]struct{}, len(local)+len(remote))
	for hash := range local {
		hashes[hash] = struct{}{}
	}
	for hash := range remote {
		hashes[hash] = struct{}{}
	}

	out := make([]model.Activity, 0, len(hashes))
	for hash := range hashes {
		l := local[hash]
		r := remote[hash]

		if l != nil && l.Cancelled {
			if r == nil {
				continue
			}
			if l.ChainID != r.ChainID {
				out = append(out, *r)
				continue
			}
			out = append(out, *l)
			continue
		}

		switch {
		case l == nil && r == nil:
			continue
		case l == nil:
			out = append(out, *r)
		case r == nil:
			out = append(out, *l)
		default:
			out = append(out, merge(*l, *r))
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Timestamp != out[j].Timestamp {
			return out[i].Timestamp > out[j].Timestamp
		}
		return out[i].Hash < out[j].Hash
	})
	return out
}

// merge overlays every set field of remote onto local.
func merge(local, remote model.Activity) model.Activity {
	merged := local
	if remote.Hash != "" {
		merged.Hash = remote.Hash
	}
	if remote.ChainID != 0 {
		merged.ChainID = remote.ChainID
	}
	if remote.Status != "" {
		merged.Status = remote.Status
	}
	if remote.Timestamp != 0 {
		merged.Timestamp = remote.Timestamp
	}
	if remote.From != "" {
		merged.From = remote.From
	}
	if remote.Nonce != nil {
		merged.Nonce = remote.Nonce
	}
	if remote.Title != "" {
		merged.Title = remote.Title
	}
	if remote.Descriptor != "" {
		merged.Descriptor = remote.Descriptor
	}
	if len(remote.Logos) > 0 {
		merged.Logos = remote.Logos
	}
	if len(remote.Currencies) > 0 {
		merged.Currencies = remote.Currencies
	}
	if remote.Cancelled {
		merged.Cancelled = true
	}
	return merged
}

// FindCancelTx returns the hash of a remote transaction that replaced the pending local
// one: same account, nonce and chain under a different hash. Local records without a
// nonce are never matched.
func FindCancelTx(local model.Activity, remote model.ActivityMap, account string) (string, bool) {
	if local.Nonce == nil || local.Status != model.StatusPending {
		return "", false
	}

	hashes := make([]string, 0, len(remote))
	for hash := range remote {
		hashes = append(hashes, hash)
	}
	sort.Strings(hashes)

	for _, hash := range hashes {
		r := remote[hash]
		if r == nil || r.Nonce == nil {
			continue
		}
		if *r.Nonce == *local.Nonce &&
			strings.EqualFold(r.From, account) &&
			!strings.EqualFold(r.Hash, local.Hash) &&
			r.ChainID == local.ChainID {
			return r.Hash, true
		}
	}
	return "", false
}

// ToMap indexes activities by hash. Later entries replace earlier ones.
func ToMap(activities []model.Activity) model.ActivityMap {
	out := make(model.ActivityMap, len(activities))
	for i := range activities {
		a := activities[i]
		out[a.Hash] = &a
	}
	return out
}
