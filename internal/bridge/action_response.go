package bridge

import (
	"encoding/json"

	"github.com/a2ui-go/a2ui/internal/datamodel"
	"github.com/a2ui-go/a2ui/internal/transport"
)

// applyActionResponse writes a successful action response's DataUpdate and
// named patch bags into store, as one batched notification wave (spec.md
// §4.4 step 3, §6.2). Callers must have already confirmed resp.Success.
func applyActionResponse(store *datamodel.Store, resp *transport.ActionResponse, patchBagPrefixes map[string]string) {
	if resp == nil {
		return
	}
	store.Batch(func() {
		if resp.DataUpdate != nil {
			applyDataUpdate(store, resp.DataUpdate)
		}
		for name, bag := range resp.PatchBags {
			prefix := patchBagPrefix(patchBagPrefixes, name)
			for key, value := range bag {
				store.Set(datamodel.Join(prefix, key), value, false)
			}
		}
	})
}

// applyDataUpdate implements the two DataUpdate variants: a full
// items-replace under Path, or a bare value write at Path. Both are
// server-authoritative writes (markDirty=false for items; the value branch
// keeps Set's markDirty=true default, since §4.4 step 3 calls out the items
// branch's false as a deliberate override and says nothing of the sort for
// value).
func applyDataUpdate(store *datamodel.Store, du *transport.DataUpdate) {
	switch {
	case len(du.Items) > 0:
		for _, entry := range store.GetEntries(du.Path) {
			store.Delete(entry.Path)
		}
		for _, item := range du.Items {
			base := datamodel.Join(du.Path, item.ID)
			store.Set(datamodel.Join(base, "id"), item.ID, false)
			for field, value := range item.Fields {
				store.Set(datamodel.Join(base, field), value, false)
			}
		}
	case du.HasValue():
		var value any
		if err := json.Unmarshal(du.Value, &value); err == nil {
			store.Set(du.Path, value, true)
		}
	}
}

// patchBagPrefix looks up name's conventional path prefix, defaulting to
// "/"+name when the host hasn't configured one explicitly.
func patchBagPrefix(prefixes map[string]string, name string) string {
	if p, ok := prefixes[name]; ok {
		return p
	}
	return "/" + name
}
