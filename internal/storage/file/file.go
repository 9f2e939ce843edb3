package file

import (
	"encoding/binary"
	"errors"
	"fmt"
	"os"

	"github.com/bietkhonhungvandi212/bufmgr/internal/storage/page"
	util "github.com/bietkhonhungvandi212/bufmgr/internal/utils"
)

const (
	// Magic identifies a bufmgr data file in its meta page.
	Magic uint64 = 0x42554647_4D475231 // "BUFGMGR1"

	// metaPageID is reserved; data pages are numbered from 1.
	metaPageID util.PageID = 0
)

/**
* This module is used to read and write data from / to disk
* we will map the file to memory in disk that facilitate accessility to disk
* page 0 holds the meta data: magic, page count and the head of the free list
**/
type FileManager struct {
	File *os.File
	Data []byte
	Size int64
	mapping

	path      string
	pageCount uint64      // pages handed out so far, meta page included
	freeHead  util.PageID // 0 when the free list is empty
}

var _ File = (*FileManager)(nil)

func NewFileManager(path string, initialPages int) (*FileManager, error) {
	if initialPages <= 0 {
		return nil, util.ErrInvalidInitialPages
	}

	initialSize := int64(initialPages) * int64(util.PageSize)

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o666)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("stat file: %w", err)
	}
	existing := info.Size()

	fm := &FileManager{File: f, path: path}

	if err := mmap(fm, max(initialSize, existing)); err != nil {
		f.Close()
		return nil, fmt.Errorf("map file fail: %w", err)
	}

	if existing == 0 {
		fm.pageCount = 1
		err = fm.writeMeta()
	} else {
		err = fm.loadMeta()
	}
	if err != nil {
		munmap(fm)
		f.Close()
		return nil, err
	}

	return fm, nil
}

func (fm *FileManager) Identifier() string {
	return fm.path
}

// PageCount returns the number of page slots handed out, the meta page included.
func (fm *FileManager) PageCount() uint64 {
	return fm.pageCount
}

// When read from disk -> Deseialize the data to page.Page
/* READ FILE */
func (fm *FileManager) ReadPage(pageId util.PageID) (*page.Page, error) {
	if err := fm.checkLive(pageId); err != nil {
		return nil, err
	}

	p, err := fm.readSlot(pageId)
	if err != nil {
		return nil, err
	}
	if p.Header.IsFree() {
		return nil, fmt.Errorf("read page %d: %w", pageId, util.ErrPageNotFound)
	}

	return p, nil
}

// When write to disk -> Serialize the data to []byte and store them in disk by offset
/* WRITE FILE */
func (fm *FileManager) WritePage(p *page.Page) error {
	if err := fm.checkLive(p.Number()); err != nil {
		return err
	}

	slot, err := fm.readSlot(p.Number())
	if err != nil {
		return err
	}
	if slot.Header.IsFree() {
		return fmt.Errorf("write page %d: %w", p.Number(), util.ErrPageNotFound)
	}

	p.Header.ClearFreeFlag()
	fm.writeSlot(p)
	return nil
}

/* ALLOCATE PAGE */
func (fm *FileManager) AllocatePage() (*page.Page, error) {
	var pageId util.PageID

	if fm.freeHead != 0 {
		pageId = fm.freeHead
		freed, err := fm.readSlot(pageId)
		if err != nil {
			return nil, fmt.Errorf("[AllocatePage] read free page %d: %w", pageId, err)
		}
		fm.freeHead = util.PageID(binary.LittleEndian.Uint64(freed.Data[0:8]))
	} else {
		pageId = util.PageID(fm.pageCount)
		if err := fm.ensureSize(int64(pageId+1) * util.PageSize); err != nil {
			return nil, fmt.Errorf("[AllocatePage] grow file: %w", err)
		}
		fm.pageCount++
	}

	p := page.New(pageId, nil)
	fm.writeSlot(p)
	if err := fm.writeMeta(); err != nil {
		return nil, err
	}

	return p, nil
}

/* DELETE PAGE */
func (fm *FileManager) DeletePage(pageId util.PageID) error {
	if err := fm.checkLive(pageId); err != nil {
		return err
	}

	p, err := fm.readSlot(pageId)
	if err != nil {
		return err
	}
	if p.Header.IsFree() {
		return fmt.Errorf("delete page %d: %w", pageId, util.ErrPageNotFound)
	}

	p.Data = [page.DATA_SIZE]byte{}
	p.Header.SetFreeFlag()
	binary.LittleEndian.PutUint64(p.Data[0:8], uint64(fm.freeHead))
	fm.writeSlot(p)
	fm.freeHead = pageId

	return fm.writeMeta()
}

// Sync flushes the mapping to stable storage.
func (fm *FileManager) Sync() error {
	if fm.Data == nil {
		return util.ErrFileClosed
	}
	return msync(fm)
}

/**
* CLOSE FUNCTION
**/
func (fm *FileManager) Close() error {
	if fm == nil {
		return nil // Idempotent
	}
	var err error
	if fm.Data != nil {
		if e := msync(fm); e != nil {
			err = errors.Join(err, fmt.Errorf("[close] sync mapping: %w", e))
		}
	}
	if e := munmap(fm); e != nil {
		return errors.Join(err, fmt.Errorf("[close] unmap file fail: %w", e))
	}

	if fm.File != nil {
		if e := fm.File.Sync(); e != nil {
			err = errors.Join(err, fmt.Errorf("sync file: %w", e))
		}
		if e := fm.File.Close(); e != nil {
			err = errors.Join(err, fmt.Errorf("close file: %w", e))
		}
		fm.File = nil
	}
	return err
}

// ===================== HELPER FUNCTION =====================
func (fm *FileManager) checkLive(pageId util.PageID) error {
	if fm.Data == nil {
		return util.ErrFileClosed
	}
	if pageId == metaPageID || uint64(pageId) >= fm.pageCount {
		return fmt.Errorf("page %d of %s: %w", pageId, fm.path, util.ErrPageNotFound)
	}
	return nil
}

func (fm *FileManager) readSlot(pageId util.PageID) (*page.Page, error) {
	offset := int64(pageId) * int64(util.PageSize)
	if offset+util.PageSize > fm.Size {
		return nil, util.ErrPageOutOfBounds
	}

	p, err := page.Deserialize(fm.Data[offset : offset+int64(util.PageSize)])
	if err != nil {
		return nil, fmt.Errorf("deserialize page %d: %w", pageId, err)
	}
	return p, nil
}

func (fm *FileManager) writeSlot(p *page.Page) {
	offset := int64(p.Number()) * int64(util.PageSize)
	p.SerializeTo(fm.Data[offset : offset+int64(util.PageSize)])
}

func (fm *FileManager) ensureSize(required int64) error {
	if required <= fm.Size {
		return nil
	}

	newSize := max(fm.Size*2, required)
	if newSize > util.MaxMapSize {
		return util.ErrMaxMapSizeExceeded
	}

	if err := munmap(fm); err != nil {
		return fmt.Errorf("unmap file fail: %w", err)
	}

	if err := mmap(fm, newSize); err != nil {
		return fmt.Errorf("map file fail: %w", err)
	}
	return nil
}

func (fm *FileManager) writeMeta() error {
	meta := &page.Page{Header: page.PageHeader{PageID: metaPageID}}
	binary.LittleEndian.PutUint64(meta.Data[0:8], Magic)
	binary.LittleEndian.PutUint64(meta.Data[8:16], fm.pageCount)
	binary.LittleEndian.PutUint64(meta.Data[16:24], uint64(fm.freeHead))

	if fm.Size < util.PageSize {
		return util.ErrPageOutOfBounds
	}
	fm.writeSlot(meta)
	return nil
}

func (fm *FileManager) loadMeta() error {
	meta, err := fm.readSlot(metaPageID)
	if err != nil {
		return fmt.Errorf("read meta page: %w", err)
	}

	if binary.LittleEndian.Uint64(meta.Data[0:8]) != Magic {
		return util.ErrBadMagic
	}
	fm.pageCount = binary.LittleEndian.Uint64(meta.Data[8:16])
	fm.freeHead = util.PageID(binary.LittleEndian.Uint64(meta.Data[16:24]))

	if int64(fm.pageCount)*util.PageSize > fm.Size {
		return fmt.Errorf("meta page count %d exceeds file size %d: %w", fm.pageCount, fm.Size, util.ErrPageOutOfBounds)
	}
	return nil
}
