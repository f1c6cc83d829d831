package cbor

// This file implements the packed-CBOR resolution layer (draft-ietf-cbor-
// packed): transparent substitution of simple(0..15) and tag(6) shared-
// item references, and tag(113) table definitions, ahead of every
// primitive getter and container entry. See spec.md 4.5.

// follow repeatedly resolves packed references starting at d, writing
// the final, concrete (non-reference) item's cursor into out. It
// reports whether at least one substitution occurred, so the caller
// knows whether the *original* d must later be advanced by a single
// logical item (the reference) rather than by out's own consumption.
//
// When packed resolution is disabled, or the item at d isn't a
// reference, out is simply set to *d and no substitution is reported.
func (d *Decoder) follow(out *Decoder) (substituted bool, err error) {
	return d.followBudget(RecursionMax, out)
}

// followBudget is follow with an explicit recursion budget, threaded
// through resolveOnceBudget/resolvePackedTable so that a nested tag(113)
// table envelope's own follow call draws down the *same* budget as its
// enclosing call instead of starting over at RecursionMax: otherwise a
// chain of nested table envelopes recurses one Go stack frame per level
// with no bound (spec.md 8 invariant 6).
func (d *Decoder) followBudget(budget uint8, out *Decoder) (substituted bool, err error) {
	*out = *d
	if d.flags&flagPackedEnabled == 0 {
		return false, nil
	}
	for {
		if budget == 0 {
			return false, ErrRecursion
		}
		budget--
		var next Decoder
		matched, err := out.resolveOnceBudget(budget, &next)
		if err != nil {
			return false, err
		}
		if !matched {
			return substituted, nil
		}
		*out = next
		substituted = true
	}
}

// resolveOnceBudget inspects the item at d and, if it is a packed
// reference or table definition, writes the cursor for what it resolves
// to into out and reports true. Any other item (including malformed
// heads, which the caller's own getter will report in its own terms)
// reports false with a nil error: it only ever raises an error for a
// pattern it has committed to interpreting as packed (a matched
// tag(113)/tag(6) whose structure then turns out broken). budget is
// threaded down to resolvePackedTable; see followBudget.
func (d *Decoder) resolveOnceBudget(budget uint8, out *Decoder) (bool, error) {
	if d.AtEnd() {
		return false, nil
	}
	ib := d.data[0]
	mt := MajorType(ib >> typeOffset)
	ai := ib & valueMask

	switch mt {
	case TypeTag:
		h, err := decodeHead(d.data, sizeLong)
		if err != nil || h.ai == sizeIndefinite {
			return false, nil
		}
		switch h.argument {
		case TagPackedTable:
			return d.resolvePackedTable(h.length, budget, out)
		case TagPackedShared:
			return d.resolvePackedSharedRef(h.length, out)
		default:
			return false, nil
		}
	case TypeFloat:
		if ai < 16 {
			return d.resolveReference(uint64(ai), out)
		}
		return false, nil
	default:
		return false, nil
	}
}

// resolvePackedSharedRef handles tag(6): its content is a single CBOR
// integer n, mapped to a table index via i = 16+2n (n>=0) or
// i = 16+(-2n-1) (n<0).
func (d *Decoder) resolvePackedSharedRef(tagHeadLen int, out *Decoder) (bool, error) {
	content := Decoder{data: d.data[tagHeadLen:]}
	n, _, err := content.rawSignedInteger()
	if err != nil {
		return false, ErrPackedFormat
	}
	var idx uint64
	if n >= 0 {
		idx = 16 + uint64(n)*2
	} else {
		idx = 16 + uint64(-n)*2 - 1
	}
	return d.resolveReference(idx, out)
}

// rawSignedInteger decodes a plain (non-packed) CBOR integer item,
// without the usual primitive-getter width limits: used only to read a
// tag(6) reference argument, which is a full int64.
func (d *Decoder) rawSignedInteger() (int64, int, error) {
	mt, err := d.rawType()
	if err != nil {
		return 0, 0, err
	}
	switch mt {
	case TypeUint:
		u, n, err := d.rawGetUint64(TypeUint, sizeLong)
		if err != nil {
			return 0, 0, err
		}
		return int64(u), n, nil
	case TypeNint:
		u, n, err := d.rawGetUint64(TypeNint, sizeLong)
		if err != nil {
			return 0, 0, err
		}
		return -1 - int64(u), n, nil
	default:
		return 0, 0, ErrInvalidType
	}
}

// resolveReference searches the active table stack, most recently
// pushed first, for the idx-th shared item across all tables (spec.md
// 4.5: tables are a LIFO stack; an index beyond one table's element
// count carries over into the next, older one). On a hit, out is
// positioned at the referenced element with the table stack truncated
// to the tables defined no later than the one used.
func (d *Decoder) resolveReference(idx uint64, out *Decoder) (bool, error) {
	for k := d.numTables - 1; k >= 0; k-- {
		table := d.tables[k]
		size, headLen, err := tableElementCount(table)
		if err != nil {
			return false, ErrPackedFormat
		}
		if idx < size {
			elem := table[headLen:]
			var probe Decoder
			probe.data = elem
			for j := uint64(0); j < idx; j++ {
				if err := probe.skipRaw(RecursionMax); err != nil {
					return false, err
				}
			}
			out.data = probe.data
			out.flags = flagPackedEnabled
			out.tables = d.tables
			out.numTables = k + 1
			return true, nil
		}
		idx -= size
	}
	return false, ErrPackedUndefinedReference
}

// tableElementCount returns the number of elements in a shared-item
// table (the payload of table's array head) and the byte length of that
// head. Indefinite-length tables have their element count discovered by
// walking to the break marker, since the draft's encoding gives no
// upfront count for them.
func tableElementCount(table []byte) (size uint64, headLen int, err error) {
	h, err := decodeHead(table, sizeLong)
	if err != nil {
		return 0, 0, err
	}
	if h.major != TypeArray {
		return 0, 0, ErrPackedFormat
	}
	if h.ai != sizeIndefinite {
		return h.argument, h.length, nil
	}
	probe := Decoder{data: table[1:]}
	var count uint64
	for {
		if len(probe.data) == 0 {
			return 0, 0, ErrPackedFormat
		}
		if probe.data[0] == breakMarker {
			break
		}
		if err := probe.skipRaw(RecursionMax); err != nil {
			return 0, 0, err
		}
		count++
	}
	return count, 1, nil
}

// resolvePackedTable handles tag(113): its content is a 2-element array
// [table, rump]. The content may itself be a further packed reference
// (resolved recursively, against the same recursion budget as the
// caller); table becomes a newly pushed shared-item table, and out is
// positioned over exactly the byte range of rump, with the enlarged
// table stack active.
func (d *Decoder) resolvePackedTable(tagHeadLen int, budget uint8, out *Decoder) (bool, error) {
	if d.numTables >= NestedTablesMax {
		return false, ErrPackedMemory
	}
	envelope := Decoder{
		data:      d.data[tagHeadLen:],
		flags:     d.flags & flagPackedEnabled,
		tables:    d.tables,
		numTables: d.numTables,
	}
	var resolvedEnvelope Decoder
	if _, err := envelope.followBudget(budget, &resolvedEnvelope); err != nil {
		return false, err
	}

	var arrayCur Decoder
	if err := resolvedEnvelope.EnterArray(&arrayCur); err != nil {
		return false, ErrPackedFormat
	}
	if arrayCur.ArrayItemsRemaining() != 2 {
		return false, ErrPackedFormat
	}

	tableStart := arrayCur.data
	tableProbe := Decoder{data: arrayCur.data}
	if err := tableProbe.skipRaw(RecursionMax); err != nil {
		return false, err
	}
	tableBytes := tableStart[:len(tableStart)-len(tableProbe.data)]

	rumpStart := tableProbe.data
	rumpProbe := Decoder{data: tableProbe.data}
	if err := rumpProbe.skipRaw(RecursionMax); err != nil {
		return false, err
	}
	rumpBytes := rumpStart[:len(rumpStart)-len(rumpProbe.data)]

	out.data = rumpBytes
	out.flags = flagPackedEnabled
	out.tables = resolvedEnvelope.tables
	out.numTables = resolvedEnvelope.numTables
	out.tables[out.numTables] = tableBytes
	out.numTables++
	return true, nil
}
