package cache

import (
	akitacache "github.com/sarchlab/akita/v4/mem/cache"

	"github.com/sarchlab/llcsim/replacement"
)

// engineVictimFinder adapts a replacement engine to Akita's VictimFinder.
// The directory only hands over the set, so the access being served is
// parked in pending before FindVictim is called.
type engineVictimFinder struct {
	engine  *replacement.Engine
	pending replacement.Access
}

// FindVictim returns the block the engine selected, or nil when the engine
// asks to bypass the fill.
func (f *engineVictimFinder) FindVictim(set *akitacache.Set) *akitacache.Block {
	if len(set.Blocks) == 0 {
		return nil
	}

	v := f.engine.SelectVictim(set.Blocks[0].SetID, f.pending)
	way, ok := v.Way()
	if !ok {
		return nil
	}

	// Directory.Visit reorders Blocks, so match on WayID.
	for _, block := range set.Blocks {
		if block.WayID == way {
			return block
		}
	}
	return nil
}
