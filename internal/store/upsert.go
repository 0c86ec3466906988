package store

// Upsert reconciles an inbound document against the collection and either
// inserts it as a new record or merges it onto the matching existing one.
//
// Identity precedence, applied in this fixed order regardless of import
// source:
//
//  1. a document without its autoincrement field requests a new sequence
//     assignment unconditionally (callers pre-filter duplicates);
//  2. otherwise the lookup filter is the first non-empty of: id, content
//     hash, uuid, the schema's identifier keys, or the entire document.
//
// At-most-one stored record per distinct hash or uuid is enforced by this
// lookup-before-insert, not by a uniqueness constraint. Re-upserting
// unchanged content updates the existing record (stamping a fresh edited
// time) rather than creating a new one.
func (s *Store) Upsert(schema Schema, doc Document) (Document, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if schema.Autoincrement != "" && isEmptyValue(doc[schema.Autoincrement]) {
		stored, err := s.insertLocked(schema, doc)
		return stored, true, err
	}

	filter := s.identityFilter(schema, doc)

	existing, seq, err := s.findOneWithSeq(schema.Collection, filter)
	if err != nil {
		return nil, false, err
	}

	if existing == nil {
		stored, err := s.insertLocked(schema, doc)
		return stored, true, err
	}

	stored, err := s.replaceLocked(schema, existing, seq, doc)
	return stored, false, err
}

// identityFilter resolves the lookup filter for doc per the precedence
// order documented on Upsert.
func (s *Store) identityFilter(schema Schema, doc Document) Filter {
	if !isEmptyValue(doc[fieldID]) {
		return Filter{fieldID: doc[fieldID]}
	}
	if !isEmptyValue(doc[fieldHash]) {
		return Filter{fieldHash: doc[fieldHash]}
	}
	if !isEmptyValue(doc[fieldUUID]) {
		return Filter{fieldUUID: doc[fieldUUID]}
	}

	if len(schema.IdentifierKeys) > 0 {
		filter := Filter{}
		for _, k := range schema.IdentifierKeys {
			if !isEmptyValue(doc[k]) {
				filter[k] = doc[k]
			}
		}
		if len(filter) > 0 {
			return filter
		}
	}

	// Degrades to exact-match upsert.
	return Filter(cloneDoc(doc))
}

// UpsertSummary reports the outcome of a batch upsert.
type UpsertSummary struct {
	Created int `json:"created"`
	Updated int `json:"updated"`
	Failed  int `json:"failed"`
	Total   int `json:"total"`
}

// UpsertMany applies Upsert to each document sequentially, not as a single
// transaction. A failure partway through leaves earlier records committed
// and later ones unattempted; the summary tells the caller how far it got.
func (s *Store) UpsertMany(schema Schema, docs []Document) (UpsertSummary, error) {
	summary := UpsertSummary{Total: len(docs)}

	for _, doc := range docs {
		_, created, err := s.Upsert(schema, doc)
		if err != nil {
			summary.Failed = len(docs) - summary.Created - summary.Updated
			return summary, err
		}
		if created {
			summary.Created++
		} else {
			summary.Updated++
		}
	}

	return summary, nil
}
