package file

import (
	"github.com/bietkhonhungvandi212/bufmgr/internal/storage/page"
	util "github.com/bietkhonhungvandi212/bufmgr/internal/utils"
)

// File is the capability the buffer pool needs from a page-organized file.
// The pool references files, it never owns or closes them.
type File interface {
	// ReadPage fails if the page does not exist or on I/O error.
	ReadPage(pageId util.PageID) (*page.Page, error)
	// WritePage persists the full page contents under p.Number().
	WritePage(p *page.Page) error
	// AllocatePage creates a new page with a freshly assigned number.
	AllocatePage() (*page.Page, error)
	DeletePage(pageId util.PageID) error
	// Identifier is used only for diagnostics and error context.
	Identifier() string
}
