package ecs

// ==============================================
// Container Statistics
// ==============================================

// ColumnStats describes one component column.
type ColumnStats struct {
	Signature Signature `json:"signature"`
	Type      string    `json:"type"`
	Size      int       `json:"size"`
	Capacity  int       `json:"capacity"`
}

// Stats is a point-in-time snapshot of container occupancy, used by the
// demo's headless digest and by anything that wants a cheap health readout.
type Stats struct {
	Entities    int           `json:"entities"`
	MaxEntities int           `json:"max_entities"`
	Signatures  int           `json:"signatures"`
	Queries     int           `json:"queries"`
	Systems     int           `json:"systems"`
	Columns     []ColumnStats `json:"columns"`
}

// Stats returns a snapshot of the allocator's occupancy.
func (a *Allocator) Stats() Stats {
	s := Stats{
		Entities:    a.entities.Len(),
		MaxEntities: a.maxEntities,
		Signatures:  a.components.NumSignatures(),
		Queries:     a.queries.NumQueries(),
		Systems:     a.systems.Len(),
	}
	for sig := 0; sig < a.components.NumSignatures(); sig++ {
		col := a.components.columnBySignature(Signature(sig))
		if col == nil {
			continue
		}
		s.Columns = append(s.Columns, ColumnStats{
			Signature: Signature(sig),
			Type:      col.elemType().String(),
			Size:      col.size(),
			Capacity:  col.capacity(),
		})
	}
	return s
}
