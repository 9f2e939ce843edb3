package file

import (
	"fmt"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/dsnet/golib/memfile"

	"github.com/bietkhonhungvandi212/bufmgr/internal/storage/page"
	util "github.com/bietkhonhungvandi212/bufmgr/internal/utils"
)

// MemFile is an in-memory File. Page numbers start at 1 and deleted
// numbers are never handed out again, so stale reads always fail.
type MemFile struct {
	name     string
	db       *memfile.File
	nextPage util.PageID
	deleted  mapset.Set[util.PageID]
	reads    map[util.PageID]int
	writes   map[util.PageID]int
}

var _ File = (*MemFile)(nil)

func NewMemFile(name string) *MemFile {
	return &MemFile{
		name:     name,
		db:       memfile.New(make([]byte, 0)),
		nextPage: 1,
		deleted:  mapset.NewThreadUnsafeSet[util.PageID](),
		reads:    make(map[util.PageID]int),
		writes:   make(map[util.PageID]int),
	}
}

func (m *MemFile) Identifier() string {
	return m.name
}

func (m *MemFile) ReadPage(pageId util.PageID) (*page.Page, error) {
	if err := m.checkLive(pageId); err != nil {
		return nil, err
	}

	buf := make([]byte, util.PageSize)
	if _, err := m.db.ReadAt(buf, offsetOf(pageId)); err != nil {
		return nil, fmt.Errorf("read page %d of %s: %w", pageId, m.name, err)
	}

	p, err := page.Deserialize(buf)
	if err != nil {
		return nil, fmt.Errorf("deserialize page %d: %w", pageId, err)
	}
	m.reads[pageId]++
	return p, nil
}

func (m *MemFile) WritePage(p *page.Page) error {
	if err := m.checkLive(p.Number()); err != nil {
		return err
	}

	if _, err := m.db.WriteAt(p.Serialize(), offsetOf(p.Number())); err != nil {
		return fmt.Errorf("write page %d of %s: %w", p.Number(), m.name, err)
	}
	m.writes[p.Number()]++
	return nil
}

func (m *MemFile) AllocatePage() (*page.Page, error) {
	p := page.New(m.nextPage, nil)
	if _, err := m.db.WriteAt(p.Serialize(), offsetOf(p.Number())); err != nil {
		return nil, fmt.Errorf("[AllocatePage] extend %s: %w", m.name, err)
	}
	m.nextPage++
	return p, nil
}

func (m *MemFile) DeletePage(pageId util.PageID) error {
	if err := m.checkLive(pageId); err != nil {
		return err
	}
	m.deleted.Add(pageId)
	return nil
}

// ReadCount returns how many times pageId was read from this file.
func (m *MemFile) ReadCount(pageId util.PageID) int {
	return m.reads[pageId]
}

// WriteCount returns how many times pageId was written through WritePage.
func (m *MemFile) WriteCount(pageId util.PageID) int {
	return m.writes[pageId]
}

// LivePages returns the number of allocated pages that were not deleted.
func (m *MemFile) LivePages() int {
	return int(m.nextPage-1) - m.deleted.Cardinality()
}

func (m *MemFile) checkLive(pageId util.PageID) error {
	if pageId == 0 || pageId >= m.nextPage || m.deleted.Contains(pageId) {
		return fmt.Errorf("page %d of %s: %w", pageId, m.name, util.ErrPageNotFound)
	}
	return nil
}

func offsetOf(pageId util.PageID) int64 {
	return int64(pageId) * int64(util.PageSize)
}
