package buffer

import (
	"encoding/binary"

	"github.com/spaolacci/murmur3"

	"github.com/bietkhonhungvandi212/bufmgr/internal/storage/file"
	util "github.com/bietkhonhungvandi212/bufmgr/internal/utils"
)

type indexSlot struct {
	file   file.File
	pageNo util.PageID
	frame  util.FrameID
	hash   uint64
	used   bool
}

// pageIndex maps (file, page number) to the frame caching that page.
// Open addressing with linear probing. Removal shifts the following run
// back into the hole, so the table never holds tombstones and a probe
// always stops at an empty slot.
type pageIndex struct {
	slots []indexSlot
	mask  uint64
	count int
}

func newPageIndex(capacity int) *pageIndex {
	size := 2
	for size < 2*capacity {
		size <<= 1
	}
	return &pageIndex{
		slots: make([]indexSlot, size),
		mask:  uint64(size - 1),
	}
}

func hashKey(f file.File, pageNo util.PageID) uint64 {
	id := f.Identifier()
	buf := make([]byte, len(id)+8)
	copy(buf, id)
	binary.LittleEndian.PutUint64(buf[len(id):], uint64(pageNo))
	return murmur3.Sum64(buf)
}

// probe returns the slot holding the key, or the empty slot ending its run.
func (pi *pageIndex) probe(f file.File, pageNo util.PageID, h uint64) (uint64, bool) {
	for i := h & pi.mask; ; i = (i + 1) & pi.mask {
		s := &pi.slots[i]
		if !s.used {
			return i, false
		}
		if s.hash == h && s.pageNo == pageNo && s.file == f {
			return i, true
		}
	}
}

func (pi *pageIndex) insert(f file.File, pageNo util.PageID, frame util.FrameID) error {
	if pi.count >= len(pi.slots)-1 {
		panic("[pageIndex] [insert] table is full")
	}

	h := hashKey(f, pageNo)
	i, found := pi.probe(f, pageNo, h)
	if found {
		return util.ErrPageIndexDuplicate
	}

	pi.slots[i] = indexSlot{file: f, pageNo: pageNo, frame: frame, hash: h, used: true}
	pi.count++
	return nil
}

func (pi *pageIndex) lookup(f file.File, pageNo util.PageID) (util.FrameID, bool) {
	i, found := pi.probe(f, pageNo, hashKey(f, pageNo))
	if !found {
		return util.InvalidFrameID, false
	}
	return pi.slots[i].frame, true
}

// remove is a no-op returning false when the key is absent.
func (pi *pageIndex) remove(f file.File, pageNo util.PageID) bool {
	hole, found := pi.probe(f, pageNo, hashKey(f, pageNo))
	if !found {
		return false
	}

	for j := (hole + 1) & pi.mask; pi.slots[j].used; j = (j + 1) & pi.mask {
		home := pi.slots[j].hash & pi.mask
		// the entry may fill the hole only if its home is not in (hole, j]
		var movable bool
		if j > hole {
			movable = home <= hole || home > j
		} else {
			movable = home <= hole && home > j
		}
		if movable {
			pi.slots[hole] = pi.slots[j]
			hole = j
		}
	}

	pi.slots[hole] = indexSlot{}
	pi.count--
	return true
}

func (pi *pageIndex) entries() int {
	return pi.count
}
