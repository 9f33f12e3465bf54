package nbt

import (
	"fmt"
	"unicode/utf16"

	"github.com/luma/beacon/codec"
	"github.com/luma/beacon/stream"
)

// MaxTagName bounds the dictionary lookup: a name of 64 bytes or more
// bypasses the dictionary entirely and is always treated as unknown.
const MaxTagName = 64

// SAXAction describes one entry a dictionary-driven compound reader is
// looking for. ExpectedType 0..12 matches a specific tag directly;
// 13..25 matches TagList whose element ordinal is ExpectedType-13.
type SAXAction struct {
	ExpectedType    int
	OnPresent       func(r stream.Reader, data, ud any) error
	Prerequisites   []int
	OnAbsent        func(data, ud any)
	OnFailedResolve func(r stream.Reader, data, ud any)
}

type deferredAction struct {
	actionIndex int
	mark        stream.Mark
	resolved    bool
}

// ReadSAXCompound drives actions against the items of a compound whose
// opening tag has already been consumed. dict maps a decoded name to an
// index into actions; a negative or out-of-range result means unknown.
// ignored, if non-nil, receives every unknown or type-mismatched item
// (with its name converted to UTF-16) instead of having it silently
// skipped.
func ReadSAXCompound(r stream.Markable, data, ud any, dict func(name string) int, actions []SAXAction, ignored *Compound) error {
	present := make([]bool, len(actions))
	var deferred []deferredAction

	for {
		var tag codec.U8
		if err := tag.Read(r); err != nil {
			return err
		}
		if tag == TagEnd {
			break
		}

		var nameLen codec.U16
		if err := nameLen.Read(r); err != nil {
			return err
		}
		raw := make([]byte, nameLen)
		if err := r.Read(raw); err != nil {
			return err
		}
		units, err := codec.DecodeUTF8(raw)
		if err != nil {
			return err
		}

		actionIndex := -1
		if int(nameLen) < MaxTagName {
			actionIndex = dict(string(utf16.Decode(units)))
		}
		if actionIndex < 0 || actionIndex >= len(actions) {
			if err := placeOrSkip(r, int(tag), units, ignored); err != nil {
				return err
			}
			continue
		}

		action := actions[actionIndex]
		if err := dispatchSAXAction(r, data, ud, action, actionIndex, int(tag), units, ignored, present, &deferred); err != nil {
			return err
		}
	}

	endMark := r.Mark()

	maxPass := len(deferred)
	for pass := 0; pass < maxPass; pass++ {
		progressed := false
		for i := range deferred {
			d := &deferred[i]
			if d.resolved {
				continue
			}
			action := actions[d.actionIndex]
			if !prereqsSatisfied(action.Prerequisites, present) {
				continue
			}
			if err := d.mark.Reset(); err != nil {
				return err
			}
			if err := action.OnPresent(r, data, ud); err != nil {
				return err
			}
			present[d.actionIndex] = true
			d.resolved = true
			progressed = true
		}
		if !progressed {
			break
		}
	}

	hadDeferred := make([]bool, len(actions))
	for _, d := range deferred {
		hadDeferred[d.actionIndex] = true
		if d.resolved {
			continue
		}
		action := actions[d.actionIndex]
		if action.OnFailedResolve != nil {
			if err := d.mark.Reset(); err != nil {
				return err
			}
			action.OnFailedResolve(r, data, ud)
		}
	}

	for i, action := range actions {
		if !present[i] && !hadDeferred[i] && action.OnAbsent != nil {
			action.OnAbsent(data, ud)
		}
	}

	return endMark.Reset()
}

func dispatchSAXAction(r stream.Markable, data, ud any, action SAXAction, actionIndex, tag int, units []uint16, ignored *Compound, present []bool, deferred *[]deferredAction) error {
	if action.ExpectedType < 0 || action.ExpectedType > 25 {
		return fmt.Errorf("%w: SAX action %d has expectedType %d outside 0..25", ErrInvalidState, actionIndex, action.ExpectedType)
	}
	if action.ExpectedType <= 12 {
		if tag != action.ExpectedType {
			return placeOrSkip(r, tag, units, ignored)
		}
		if prereqsSatisfied(action.Prerequisites, present) {
			if err := action.OnPresent(r, data, ud); err != nil {
				return err
			}
			present[actionIndex] = true
			return nil
		}
		mark := r.Mark()
		*deferred = append(*deferred, deferredAction{actionIndex: actionIndex, mark: mark})
		return Skip(tag, r)
	}

	if tag != TagList {
		return placeOrSkip(r, tag, units, ignored)
	}
	wantOrdinal := action.ExpectedType - 13

	elemMark := r.Mark()
	var elemTag codec.U8
	if err := elemTag.Read(r); err != nil {
		return err
	}
	if elemTag == 0 || int(elemTag)-1 != wantOrdinal {
		if err := elemMark.Reset(); err != nil {
			return err
		}
		return placeOrSkip(r, tag, units, ignored)
	}

	if prereqsSatisfied(action.Prerequisites, present) {
		if err := action.OnPresent(r, data, ud); err != nil {
			return err
		}
		present[actionIndex] = true
		return nil
	}
	mark := r.Mark()
	*deferred = append(*deferred, deferredAction{actionIndex: actionIndex, mark: mark})
	return skipListBody(r, wantOrdinal)
}

func prereqsSatisfied(prereqs []int, present []bool) bool {
	for _, p := range prereqs {
		if p < 0 || p >= len(present) || !present[p] {
			return false
		}
	}
	return true
}

func placeOrSkip(r stream.Reader, tag int, nameUnits []uint16, ignored *Compound) error {
	if ignored != nil {
		ordinal, err := ordinalForTag(tag)
		if err != nil {
			return err
		}
		v, err := payloadVtables[ordinal].Read(r)
		if err != nil {
			return err
		}
		ignored.Set(codec.JString{Units: nameUnits}, ordinal, v)
		return nil
	}
	return Skip(tag, r)
}
