package mdf

// RecordIDWidth returns the record id width in bytes for a data group with
// n channel groups. A single group needs no id at all.
func RecordIDWidth(n uint64) uint8 {
	switch {
	case n < 2:
		return 0
	case n < 1<<8:
		return 1
	case n < 1<<16:
		return 2
	case n < 1<<32:
		return 4
	default:
		return 8
	}
}

func validRecordIDWidth(w uint8) bool {
	switch w {
	case 0, 1, 2, 4, 8:
		return true
	}
	return false
}

// registry holds the channel groups of a data group in record id order.
type registry struct {
	groups []*ChannelGroup
	width  uint8
}

// add appends cg and renumbers every group: id 0 for a lone group,
// 1..N otherwise.
func (r *registry) add(cg *ChannelGroup) {
	r.groups = append(r.groups, cg)
	n := uint64(len(r.groups))
	r.width = RecordIDWidth(n)

	var id uint64
	if n >= 2 {
		id = 1
	}
	for _, g := range r.groups {
		g.recordID = id
		if n >= 2 {
			id++
		}
	}
}

// find returns the group records with the given id belong to. A lone group
// owns every record whatever the id.
func (r *registry) find(id uint64) *ChannelGroup {
	if len(r.groups) == 1 {
		return r.groups[0]
	}
	for _, g := range r.groups {
		if g.recordID == id {
			return g
		}
	}
	return nil
}

func (r *registry) contains(cg *ChannelGroup) bool {
	for _, g := range r.groups {
		if g == cg {
			return true
		}
	}
	return false
}
