package visio

import (
	"fmt"
	"iter"

	"github.com/tliron/commonlog"

	"github.com/i-wan/govisio/automation"
)

var docLog = commonlog.GetLogger("govisio.documents")

// Document wraps one open Visio document and forwards property access, page
// handling and persistence to the application's document object.
type Document struct {
	app   *App
	path  string
	doc   automation.Object
	pages automation.Object
}

// Open creates or opens a Visio document.
//
// An empty path creates a new blank document. With readWrite false a
// non-empty path is used as a template: its contents are copied into a new
// unsaved document and the file itself stays untouched. With readWrite true
// the file is opened for editing and stays bound to the path.
func Open(app *App, path string, readWrite bool) (*Document, error) {
	docs, err := app.documents()
	if err != nil {
		docLog.Errorf("loading of document failed for: %s", path)
		docLog.Errorf("automation error: %s", err.Error())
		return nil, err
	}
	defer docs.Release()

	var v automation.Value
	if readWrite {
		v, err = docs.Call("Open", path)
	} else {
		v, err = docs.Call("Add", path)
	}
	if err != nil {
		docLog.Errorf("loading of document failed for: %s", path)
		docLog.Errorf("automation error: %s", err.Error())
		return nil, fmt.Errorf("failed to open document %q: %w", path, err)
	}
	doc := v.Object()

	pv, err := doc.Get("Pages")
	if err != nil {
		docLog.Errorf("failed to get pages of document %s: %s", path, err.Error())
		doc.Release()
		return nil, fmt.Errorf("failed to get Pages: %w", err)
	}
	d := &Document{app: app, doc: doc, pages: pv.Object()}
	if readWrite {
		d.path = path
	}
	return d, nil
}

// Path returns the path the document was opened from. It is empty for new
// documents, including documents created from a template.
func (d *Document) Path() string {
	return d.path
}

// Property reads a named property of the underlying document object, such
// as Title, Subject, Creator, Manager or Company. This is the generic
// escape hatch for everything without a dedicated accessor.
func (d *Document) Property(name string) (string, error) {
	if !d.doc.Has(name) {
		docLog.Errorf("property does not exist: %s", name)
		return "", fmt.Errorf("%q: %w", name, ErrNoSuchProperty)
	}
	v, err := d.doc.Get(name)
	if err != nil {
		docLog.Errorf("getting property %s failed: %s", name, err.Error())
		return "", fmt.Errorf("failed to get property %q: %w", name, err)
	}
	return v.String(), nil
}

// SetProperty writes a named property of the underlying document object.
func (d *Document) SetProperty(name string, value any) error {
	if !d.doc.Has(name) {
		docLog.Errorf("property does not exist: %s", name)
		return fmt.Errorf("%q: %w", name, ErrNoSuchProperty)
	}
	if err := d.doc.Set(name, value); err != nil {
		docLog.Errorf("setting property %s failed: %s", name, err.Error())
		return fmt.Errorf("failed to set property %q: %w", name, err)
	}
	return nil
}

// PageCount returns the number of pages in the document.
func (d *Document) PageCount() (int, error) {
	v, err := d.pages.Get("Count")
	if err != nil {
		docLog.Errorf("getting page count failed: %s", err.Error())
		return 0, fmt.Errorf("failed to get page count: %w", err)
	}
	return v.Int(), nil
}

// AddPage appends a new page and enables auto-resize-to-content on it. A
// non-empty name becomes the page's universal name. The page's position
// index is returned.
func (d *Document) AddPage(name string) (int, error) {
	v, err := d.pages.Call("Add")
	if err != nil {
		docLog.Errorf("page adding failed for page: %s", name)
		docLog.Errorf("automation error: %s", err.Error())
		return 0, fmt.Errorf("failed to add page: %w", err)
	}
	page := v.Object()
	defer page.Release()

	if err := page.Set("AutoSize", true); err != nil {
		docLog.Errorf("enabling AutoSize failed for page %s: %s", name, err.Error())
		return 0, fmt.Errorf("failed to set AutoSize: %w", err)
	}
	if name != "" {
		if err := page.Set("NameU", name); err != nil {
			docLog.Errorf("naming page %s failed: %s", name, err.Error())
			return 0, fmt.Errorf("failed to name page %q: %w", name, err)
		}
	}
	iv, err := page.Get("Index")
	if err != nil {
		docLog.Errorf("getting index of page %s failed: %s", name, err.Error())
		return 0, fmt.Errorf("failed to get page index: %w", err)
	}
	return iv.Int(), nil
}

// ActivePage returns the universal name of the page shown in the active
// window.
//
// Caveat: this is the active window's page, not the document's own notion
// of an active page. The distinction is inherited from the automation model
// and deliberately left unresolved.
func (d *Document) ActivePage() (string, error) {
	window, err := d.app.activeWindow()
	if err != nil {
		docLog.Errorf("getting active window failed: %s", err.Error())
		return "", err
	}
	defer window.Release()

	pv, err := window.Get("Page")
	if err != nil {
		docLog.Errorf("getting active page failed: %s", err.Error())
		return "", fmt.Errorf("failed to get active page: %w", err)
	}
	page := pv.Object()
	defer page.Release()

	nv, err := page.Get("NameU")
	if err != nil {
		docLog.Errorf("getting active page name failed: %s", err.Error())
		return "", fmt.Errorf("failed to get active page name: %w", err)
	}
	return nv.String(), nil
}

// SetActivePage focuses the named page in the active window. The same
// caveat as for ActivePage applies.
func (d *Document) SetActivePage(name string) error {
	window, err := d.app.activeWindow()
	if err != nil {
		docLog.Errorf("getting active window failed: %s", err.Error())
		return err
	}
	defer window.Release()

	if err := window.Set("Page", name); err != nil {
		docLog.Errorf("activating page %s failed: %s", name, err.Error())
		return fmt.Errorf("failed to activate page %q: %w", name, err)
	}
	return nil
}

// PageNames returns a restartable sequence over the universal names of the
// document's pages, in page order. Pages whose name cannot be read are
// skipped.
func (d *Document) PageNames() iter.Seq[string] {
	return func(yield func(string) bool) {
		count, err := d.PageCount()
		if err != nil {
			return
		}
		for i := 1; i <= count; i++ {
			v, err := d.pages.Get("ItemU", i)
			if err != nil {
				continue
			}
			page := v.Object()
			nv, err := page.Get("NameU")
			page.Release()
			if err != nil {
				continue
			}
			if !yield(nv.String()) {
				return
			}
		}
	}
}

// HasPage reports whether a page with the given universal name exists.
func (d *Document) HasPage(name string) bool {
	for pageName := range d.PageNames() {
		if pageName == name {
			return true
		}
	}
	return false
}

// Page returns the page handle at the given position index (indexing starts
// at 1). The caller owns the returned handle.
func (d *Document) Page(index int) (automation.Object, error) {
	return d.page(index)
}

// PageByName returns the page handle with the given universal name. The
// caller owns the returned handle.
func (d *Document) PageByName(name string) (automation.Object, error) {
	return d.page(name)
}

func (d *Document) page(key any) (automation.Object, error) {
	v, err := d.pages.Get("ItemU", key)
	if err != nil {
		docLog.Errorf("getting page '%v' failed: %s", key, err.Error())
		return nil, fmt.Errorf("failed to get page %v: %w", key, err)
	}
	return v.Object(), nil
}

// Save persists the document to its already-associated file. A document
// that has never been saved has no file; use SaveAs first.
func (d *Document) Save() error {
	if _, err := d.doc.Call("Save"); err != nil {
		docLog.Errorf("failed to save document to file: %s", err.Error())
		return fmt.Errorf("failed to save document: %w", err)
	}
	return nil
}

// SaveAs persists the document to path and binds the document to it.
func (d *Document) SaveAs(path string) error {
	if _, err := d.doc.Call("SaveAs", path); err != nil {
		docLog.Errorf("failed to save document to file %s: %s", path, err.Error())
		return fmt.Errorf("failed to save document as %q: %w", path, err)
	}
	d.path = path
	return nil
}

// PrintToDefaultPrinter prints the document on the default printer with
// default settings.
func (d *Document) PrintToDefaultPrinter() error {
	if _, err := d.doc.Call("Print"); err != nil {
		docLog.Errorf("failed to print document: %s", err.Error())
		return fmt.Errorf("failed to print document: %w", err)
	}
	return nil
}

// ExportPDF exports all pages of the document to a PDF file with print
// intent. The capability may be missing in older application versions, in
// which case the call fails.
func (d *Document) ExportPDF(path string) error {
	_, err := d.doc.Call("ExportAsFixedFormat", visFixedFormatPDF, path, visDocExIntentPrint, visPrintAll)
	if err != nil {
		docLog.Errorf("failed to export document to %s: %s", path, err.Error())
		return fmt.Errorf("failed to export document to %q: %w", path, err)
	}
	return nil
}

// Close closes the document. With discardChanges the application's
// interactive save-changes prompt is suppressed for the duration of the
// call; the prior suppression setting is restored afterwards.
func (d *Document) Close(discardChanges bool) error {
	if discardChanges {
		prev, err := d.app.alertResponse()
		if err != nil {
			docLog.Errorf("failed to read alert response: %s", err.Error())
			return err
		}
		if err := d.app.setAlertResponse(alertResponseNo); err != nil {
			docLog.Errorf("failed to suppress save prompt: %s", err.Error())
			return err
		}
		defer func() {
			if err := d.app.setAlertResponse(prev); err != nil {
				docLog.Errorf("failed to restore alert response: %s", err.Error())
			}
		}()
	}
	if _, err := d.doc.Call("Close"); err != nil {
		docLog.Errorf("failed to close document: %s", err.Error())
		return fmt.Errorf("failed to close document: %w", err)
	}
	d.pages.Release()
	d.doc.Release()
	return nil
}

// CropPage centers the drawing on the given page and shrinks the page to
// fit its contents.
func CropPage(page automation.Object) error {
	if _, err := page.Call("CenterDrawing"); err != nil {
		docLog.Errorf("failed to center drawing: %s", err.Error())
		return fmt.Errorf("failed to center drawing: %w", err)
	}
	if _, err := page.Call("ResizeToFitContents"); err != nil {
		docLog.Errorf("failed to resize page to contents: %s", err.Error())
		return fmt.Errorf("failed to resize page to contents: %w", err)
	}
	return nil
}
