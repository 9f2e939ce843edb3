package buffer

import (
	"github.com/bietkhonhungvandi212/bufmgr/internal/storage/file"
	util "github.com/bietkhonhungvandi212/bufmgr/internal/utils"
)

// frameRecord is the metadata of one frame, kept parallel to the frame pool.
// An invalid record has no file, no pins, and neither dirty nor refbit set.
type frameRecord struct {
	file     file.File
	pageNo   util.PageID
	pinCount int32
	valid    bool
	dirty    bool
	refbit   bool
	// epoch advances each time the last pin is dropped or the record is reset;
	// a PageHandle is only valid for the epoch it was issued in.
	epoch uint64
}

// set marks the frame as caching pageNo of f, pinned once by the caller.
func (r *frameRecord) set(f file.File, pageNo util.PageID) {
	r.file = f
	r.pageNo = pageNo
	r.pinCount = 1
	r.valid = true
	r.dirty = false
	r.refbit = true
}

func (r *frameRecord) reset() {
	*r = frameRecord{epoch: r.epoch + 1}
}
