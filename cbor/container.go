package cbor

// EnterArray positions child at the first element of the array at d's
// cursor. d itself is not advanced; call Leave(child) once child has
// been fully consumed (or skipped) to resume reading from d.
func (d *Decoder) EnterArray(child *Decoder) error {
	return d.enterContainer(TypeArray, child)
}

// EnterMap positions child at the first key of the map at d's cursor.
// Remaining counts for a map track keys and values individually, so a
// map reporting N remaining items has N/2 pairs left.
func (d *Decoder) EnterMap(child *Decoder) error {
	return d.enterContainer(TypeMap, child)
}

func (d *Decoder) enterContainer(want MajorType, child *Decoder) error {
	var target Decoder
	substituted, err := d.follow(&target)
	if err != nil {
		return err
	}
	mt, err := target.rawType()
	if err != nil {
		return err
	}
	if mt != want {
		return ErrInvalidType
	}
	ib := target.data[0]
	ai := ib & valueMask
	var (
		headLen   int
		count     uint64
		indef     bool
	)
	if ai == sizeIndefinite {
		headLen = 1
		indef = true
	} else {
		h, err := decodeHead(target.data, sizeLong)
		if err != nil {
			return err
		}
		headLen = h.length
		count = h.argument
		if want == TypeMap {
			if count > ^uint64(0)/2 {
				return ErrOverflow
			}
			count *= 2
		}
	}
	child.data = target.data[headLen:]
	child.flags = flagContainer | (target.flags & flagPackedEnabled)
	child.tables = target.tables
	child.numTables = target.numTables
	if indef {
		child.flags |= flagIndefinite
	} else {
		child.remaining = count
	}
	if substituted {
		child.flags |= flagShared
	}
	return nil
}

// Leave resumes parent's cursor at the position just past the container
// child was iterating. If child came from a packed substitution (it was
// entered via a reference), parent had not actually encoded the
// container itself, so parent instead skips the one logical reference
// item that stood in for it; otherwise parent's cursor simply continues
// from where child stopped, which must be its end.
func (parent *Decoder) Leave(child *Decoder) error {
	if !child.AtEnd() {
		return ErrInvalidType
	}
	if child.flags&flagIndefinite != 0 {
		child.data = child.data[1:] // consume the break marker
	}
	if child.flags&flagShared != 0 {
		return parent.Skip()
	}
	if parent.flags&flagContainer != 0 {
		parent.remaining--
	}
	parent.data = child.data
	return nil
}

// Skip advances the cursor past exactly one item, descending into
// containers and packed table references as needed, bounded by
// RecursionMax nested frames.
func (d *Decoder) Skip() error {
	return d.skip(RecursionMax)
}

func (d *Decoder) skip(budget uint8) error {
	if budget == 0 {
		return ErrRecursion
	}
	var target Decoder
	substituted, err := d.follow(&target)
	if err != nil {
		return err
	}
	if substituted {
		// The referenced value itself may be arbitrarily complex (e.g. a
		// whole table-defined container); walk it fully against a fresh
		// budget, then advance the original cursor by the one logical
		// reference item it stood in for.
		if err := target.skip(RecursionMax); err != nil {
			return err
		}
		return d.advanceOneRaw()
	}
	if err := target.skipRaw(budget); err != nil {
		return err
	}
	*d = target
	return nil
}

// advanceOneRaw skips exactly one item using the plain (non-packed-
// resolving) walk, used to account for the reference bytes themselves
// once the referenced value has been fully walked elsewhere.
func (d *Decoder) advanceOneRaw() error {
	plain := *d
	plain.flags &^= flagPackedEnabled
	if err := plain.skipRaw(RecursionMax); err != nil {
		return err
	}
	d.data = plain.data
	d.remaining = plain.remaining
	return nil
}

// skipRaw walks one item without attempting packed resolution: it
// assumes the caller (skip) has already handled any substitution at this
// position.
func (d *Decoder) skipRaw(budget uint8) error {
	if budget == 0 {
		return ErrRecursion
	}
	mt, err := d.rawType()
	if err != nil {
		return err
	}
	switch mt {
	case TypeUint, TypeNint:
		_, _, err := d.rawGetUint64(mt, sizeLong)
		return err
	case TypeBstr, TypeTstr:
		_, _, err := d.rawGetString(mt)
		return err
	case TypeTag:
		// A tag and its content are one item: only the content's skip
		// counts against the enclosing container's remaining items.
		remaining := d.remaining
		if _, _, err := d.rawGetUint64(TypeTag, sizeLong); err != nil {
			return err
		}
		d.remaining = remaining
		return d.skip(budget - 1)
	case TypeFloat:
		return d.skipFloatMajor()
	case TypeArray, TypeMap:
		var child Decoder
		if err := d.enterContainer(mt, &child); err != nil {
			return err
		}
		for !child.AtEnd() {
			if err := child.skip(budget - 1); err != nil {
				return err
			}
		}
		return d.Leave(&child)
	default:
		return ErrInvalidType
	}
}

// skipFloatMajor advances past a major-7 item: a simple value, bool,
// null, undefined, or an IEEE-754 half/single/double float.
func (d *Decoder) skipFloatMajor() error {
	ai := d.data[0] & valueMask
	switch {
	case ai < sizeByte:
		d.advance(1)
		return nil
	case ai == sizeByte:
		if len(d.data) < 2 {
			return ErrEnd
		}
		d.advance(2)
		return nil
	case ai == sizeShort:
		if len(d.data) < 3 {
			return ErrEnd
		}
		d.advance(3)
		return nil
	case ai == sizeWord:
		if len(d.data) < 5 {
			return ErrEnd
		}
		d.advance(5)
		return nil
	case ai == sizeLong:
		if len(d.data) < 9 {
			return ErrEnd
		}
		d.advance(9)
		return nil
	case ai == sizeIndefinite:
		// Break marker: callers iterating a container stop before
		// consuming this, so reaching it here means the caller asked to
		// skip the terminator itself, which is never a standalone item.
		return ErrInvalidType
	default:
		return ErrInvalid
	}
}
