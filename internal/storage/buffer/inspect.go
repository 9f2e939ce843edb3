package buffer

import (
	"fmt"
	"io"

	"github.com/dustin/go-humanize"

	util "github.com/bietkhonhungvandi212/bufmgr/internal/utils"
)

// FrameInfo is a snapshot of one frame's metadata.
type FrameInfo struct {
	Frame    util.FrameID
	File     string // empty for an invalid frame
	PageNo   util.PageID
	Valid    bool
	PinCount int32
	Dirty    bool
	Refbit   bool
}

// Frames returns a snapshot of every frame in frame order.
func (bp *BufferPool) Frames() []FrameInfo {
	infos := make([]FrameInfo, bp.poolSize)
	for i := range bp.table {
		rec := &bp.table[i]
		infos[i] = FrameInfo{
			Frame:    util.FrameID(i),
			PageNo:   rec.pageNo,
			Valid:    rec.valid,
			PinCount: rec.pinCount,
			Dirty:    rec.dirty,
			Refbit:   rec.refbit,
		}
		if rec.file != nil {
			infos[i].File = rec.file.Identifier()
		}
	}
	return infos
}

func (bp *BufferPool) ValidFrames() int {
	n := 0
	for i := range bp.table {
		if bp.table[i].valid {
			n++
		}
	}
	return n
}

// Inspect writes one line per frame followed by the number of valid frames.
func (bp *BufferPool) Inspect(w io.Writer) error {
	if _, err := fmt.Fprintf(w, "buffer pool: %d frames, %s\n",
		bp.poolSize, humanize.IBytes(uint64(bp.poolSize)*util.PageSize)); err != nil {
		return err
	}

	for _, info := range bp.Frames() {
		file := info.File
		if file == "" {
			file = "-"
		}
		if _, err := fmt.Fprintf(w, "FrameNo:%d file:%s pageNo:%d valid:%t pinCnt:%d dirty:%t refbit:%t\n",
			info.Frame, file, info.PageNo, info.Valid, info.PinCount, info.Dirty, info.Refbit); err != nil {
			return err
		}
	}

	_, err := fmt.Fprintf(w, "Total Number of Valid Frames:%d\n", bp.ValidFrames())
	return err
}
