package page

import (
	util "github.com/bietkhonhungvandi212/bufmgr/internal/utils"
)

// New returns page pageID holding data. Bytes past DATA_SIZE are dropped.
func New(pageID util.PageID, data []byte) *Page {
	p := &Page{Header: PageHeader{PageID: pageID}}
	copy(p.Data[:], data)
	return p
}
