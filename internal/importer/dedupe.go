package importer

import (
	"daybook/internal/journal"
	"daybook/internal/store"
)

// isDuplicate reports whether a stored entry already carries this content
// hash or this uuid. Either match alone counts; the uuid only participates
// when the source supplied one, since generated uuids can never collide
// with stored data.
func (imp *Importer) isDuplicate(hash, uuid string) (bool, error) {
	if hash != "" {
		doc, err := imp.store.FindOne(journal.EntrySchema.Collection, store.Filter{"hash": hash})
		if err != nil {
			return false, err
		}
		if doc != nil {
			return true, nil
		}
	}
	if uuid != "" {
		doc, err := imp.store.FindOne(journal.EntrySchema.Collection, store.Filter{"uuid": uuid})
		if err != nil {
			return false, err
		}
		if doc != nil {
			return true, nil
		}
	}
	return false, nil
}
