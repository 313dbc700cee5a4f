// Package products resolves a source-table row into a menu of data
// products: it fetches the row's DataLink table, classifies each row,
// builds menu entries with deferred activation commands, and picks the
// active entry, remembering the user's choice across rebuilds.
package products

import (
	"github.com/astroview/voprod/internal/imagevis"
	"github.com/astroview/voprod/internal/table"
)

// DisplayType tags what a menu entry shows when activated.
type DisplayType string

const (
	DisplayImage    DisplayType = "image"
	DisplayAnalyze  DisplayType = "analyze"
	DisplayTable    DisplayType = "table"
	DisplayPNG      DisplayType = "png"
	DisplayDownload DisplayType = "download"
	DisplayMessage  DisplayType = "message"
	DisplayFromMenu DisplayType = "from-menu"
)

// Entry is one selectable data product. MenuKey is stable for the same
// logical product across rebuilds of the same row's menu, which is what
// lets the active selection survive a rebuild.
type Entry struct {
	DisplayType DisplayType `json:"displayType"`
	Name        string      `json:"name"`
	MenuKey     string      `json:"menuKey"`

	URL      string                `json:"url,omitempty"`
	FileType string                `json:"fileType,omitempty"`
	Request  *imagevis.PlotRequest `json:"request,omitempty"`

	Semantics    string `json:"semantics,omitempty"`
	Size         int64  `json:"size,omitempty"`
	SRegion      string `json:"sRegion,omitempty"`
	ProdTypeHint string `json:"prodTypeHint,omitempty"`

	ActiveMenuLookupKey string `json:"activeMenuLookupKey,omitempty"`

	// Message-type fields.
	Message        string `json:"message,omitempty"`
	SingleDownload bool   `json:"singleDownload,omitempty"`

	// AllowsInput marks an analyze entry whose service takes user input.
	AllowsInput   bool              `json:"allowsInput,omitempty"`
	ServiceDefRef string            `json:"serviceDefRef,omitempty"`
	StandardID    string            `json:"standardID,omitempty"`
	ServiceDef    *table.ServiceDescriptor `json:"-"`

	// Deferred work: nil when the entry has nothing to activate (pure
	// download links).
	Activate   *Command `json:"-"`
	Extraction *Command `json:"-"`

	// From-menu fields: the assembled menu and its active index.
	Menu        []*Entry `json:"menu,omitempty"`
	ActiveIndex int      `json:"activeIndex,omitempty"`
}

func imageEntry(name, menuKey string, req *imagevis.PlotRequest, activate, extraction *Command) *Entry {
	return &Entry{DisplayType: DisplayImage, Name: name, MenuKey: menuKey,
		Request: req, Activate: activate, Extraction: extraction}
}

func analyzeEntry(name, menuKey string) *Entry {
	return &Entry{DisplayType: DisplayAnalyze, Name: name, MenuKey: menuKey}
}

func tableEntry(name, menuKey string, activate, extraction *Command) *Entry {
	return &Entry{DisplayType: DisplayTable, Name: name, MenuKey: menuKey,
		Activate: activate, Extraction: extraction}
}

func pngEntry(name, url, menuKey string) *Entry {
	return &Entry{DisplayType: DisplayPNG, Name: name, MenuKey: menuKey, URL: url}
}

func downloadEntry(name, url, menuKey, fileType string) *Entry {
	return &Entry{DisplayType: DisplayDownload, Name: name, MenuKey: menuKey, URL: url, FileType: fileType}
}

func messageEntry(msg string, menu []*Entry, lookupKey string) *Entry {
	return &Entry{DisplayType: DisplayMessage, Name: msg, Message: msg, Menu: menu,
		ActiveMenuLookupKey: lookupKey}
}

// MessageWithDownload is the failure shape for a DataLink fetch that did
// not produce a usable table: a message plus a raw-file download link.
func MessageWithDownload(msg, downloadName, url string) *Entry {
	return &Entry{
		DisplayType:    DisplayMessage,
		Name:           msg,
		Message:        msg,
		SingleDownload: true,
		Menu:           []*Entry{downloadEntry(downloadName, url, "msg-download", "")},
	}
}

// SimpleMessage is a message entry with no menu at all.
func SimpleMessage(msg string) *Entry {
	return &Entry{DisplayType: DisplayMessage, Name: msg, Message: msg}
}

func fromMenu(menu []*Entry, activeIndex int, lookupKey string) *Entry {
	e := menu[activeIndex]
	return &Entry{
		DisplayType:         DisplayFromMenu,
		Name:                e.Name,
		MenuKey:             e.MenuKey,
		URL:                 e.URL,
		Request:             e.Request,
		Semantics:           e.Semantics,
		Size:                e.Size,
		Activate:            e.Activate,
		Extraction:          e.Extraction,
		ActiveMenuLookupKey: lookupKey,
		Menu:                menu,
		ActiveIndex:         activeIndex,
	}
}
