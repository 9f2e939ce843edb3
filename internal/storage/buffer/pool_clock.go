package buffer

import (
	"fmt"

	"go.uber.org/zap"

	util "github.com/bietkhonhungvandi212/bufmgr/internal/utils"
)

// clockSweeps is the number of full sweeps a victim search may make. Two is
// the least that always claims an unpinned frame: the first visit may only
// clear its refbit.
const clockSweeps = 2

// ClockReplacer holds the clock hand used to pick victim frames.
// Every BufferPool owns its own replacer.
type ClockReplacer struct {
	nextVictimIdx int
	poolSize      int
	maxLoop       int // full sweeps allowed per victim search
}

func newClockReplacer(size int) *ClockReplacer {
	return &ClockReplacer{
		nextVictimIdx: size - 1, // first advance lands on frame 0
		poolSize:      size,
		maxLoop:       clockSweeps,
	}
}

func (c *ClockReplacer) advance() util.FrameID {
	c.nextVictimIdx = (c.nextVictimIdx + 1) % c.poolSize
	return util.FrameID(c.nextVictimIdx)
}

// requestFree runs the clock until it claims a frame. The returned frame is
// invalid and not indexed. The search visits at most maxLoop*poolSize frames
// and gives up early after a sweep that meets only pinned frames.
func (bp *BufferPool) requestFree() (util.FrameID, error) {
	c := bp.clock
	limit := c.poolSize * c.maxLoop
	visited, pinned, pinnedInSweep := 0, 0, 0

	for visited < limit {
		if visited%c.poolSize == 0 {
			pinnedInSweep = 0
		}
		visited++

		victimIdx := c.advance()
		rec := &bp.table[victimIdx]

		if !rec.valid {
			rec.reset()
			return victimIdx, nil
		}

		if rec.pinCount > 0 {
			pinned++
			pinnedInSweep++
			if pinnedInSweep == c.poolSize {
				break
			}
			continue
		}

		if rec.refbit {
			rec.refbit = false // second chance
			continue
		}

		if rec.dirty {
			if err := bp.writeBack(victimIdx); err != nil {
				return util.InvalidFrameID, fmt.Errorf("[pool] [requestFree] evict frame %d: %w", victimIdx, err)
			}
		}

		bp.logger.Debug("evict page",
			zap.Int("frame", int(victimIdx)),
			zap.String("file", rec.file.Identifier()),
			zap.Uint64("page", uint64(rec.pageNo)),
		)
		bp.discard(victimIdx)
		bp.metrics.evicted()
		return victimIdx, nil
	}

	bp.metrics.exhaustedRequest()
	return util.InvalidFrameID, util.NewResourceExhaustedError(c.poolSize, visited, pinned)
}
