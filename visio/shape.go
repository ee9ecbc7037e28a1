package visio

import (
	"fmt"
	"strconv"

	"github.com/tliron/commonlog"

	"github.com/i-wan/govisio/automation"
)

var shapeLog = commonlog.GetLogger("govisio.shapes")

// Shape wraps one shape instance placed on a page and forwards all
// operations to the shape's cell/formula model.
//
// A Shape is a two-state handle: active until Delete, deleted afterwards.
// Every operation on a deleted handle fails with ErrShapeDeleted.
//
// Most cell values in the application are formulas; writing a literal value
// through any of the setters overwrites whatever formula the cell held.
type Shape struct {
	obj automation.Object
}

// NewShape drops a master shape definition onto a page at (x, y) and
// returns the handle of the placed shape. A nil page means the page of the
// currently active window. Coordinates address the shape center, in inches.
func NewShape(app *App, master automation.Object, page automation.Object, x, y float64) (*Shape, error) {
	if page == nil {
		window, err := app.activeWindow()
		if err != nil {
			shapeLog.Errorf("getting active window failed: %s", err.Error())
			return nil, err
		}
		pv, err := window.Get("Page")
		window.Release()
		if err != nil {
			shapeLog.Errorf("getting active page failed: %s", err.Error())
			return nil, fmt.Errorf("failed to get active page: %w", err)
		}
		page = pv.Object()
		defer page.Release()
	}

	v, err := page.Call("Drop", master, x, y)
	if err != nil {
		shapeLog.Errorf("dropping shape failed: %s", err.Error())
		return nil, fmt.Errorf("failed to drop shape: %w", err)
	}
	return &Shape{obj: v.Object()}, nil
}

func (s *Shape) object() (automation.Object, error) {
	if s.obj == nil {
		shapeLog.Errorf("operation on deleted shape")
		return nil, ErrShapeDeleted
	}
	return s.obj, nil
}

// X returns the x coordinate of the shape center.
func (s *Shape) X() (float64, error) {
	return s.cellResult("PinX")
}

// SetX moves the shape center horizontally by writing a literal value.
func (s *Shape) SetX(x float64) error {
	return s.setCellFormula("PinX", formatNumber(x))
}

// Y returns the y coordinate of the shape center.
func (s *Shape) Y() (float64, error) {
	return s.cellResult("PinY")
}

// SetY moves the shape center vertically by writing a literal value.
func (s *Shape) SetY(y float64) error {
	return s.setCellFormula("PinY", formatNumber(y))
}

// W returns the shape width.
func (s *Shape) W() (float64, error) {
	return s.cellResult("Width")
}

// SetW sets the shape width to a literal value.
func (s *Shape) SetW(w float64) error {
	return s.setCellFormula("Width", formatNumber(w))
}

// H returns the shape height.
func (s *Shape) H() (float64, error) {
	return s.cellResult("Height")
}

// SetH sets the shape height to a literal value.
func (s *Shape) SetH(h float64) error {
	return s.setCellFormula("Height", formatNumber(h))
}

// BoundingBox returns the upright bounding box of the shape as
// (x0, y0, x1, y1). The box is slightly larger than the nominal shape
// extent because it accounts for line weight.
func (s *Shape) BoundingBox() (x0, y0, x1, y1 float64, err error) {
	obj, err := s.object()
	if err != nil {
		return 0, 0, 0, 0, err
	}
	if _, err := obj.Call("BoundingBox", visBBoxUprightWH, &x0, &y0, &x1, &y1); err != nil {
		shapeLog.Errorf("getting bounding box failed: %s", err.Error())
		return 0, 0, 0, 0, fmt.Errorf("failed to get bounding box: %w", err)
	}
	return x0, y0, x1, y1, nil
}

// MoveTo repositions the shape center in one call.
func (s *Shape) MoveTo(x, y float64) error {
	obj, err := s.object()
	if err != nil {
		return err
	}
	if _, err := obj.Call("SetCenter", x, y); err != nil {
		shapeLog.Errorf("moving shape failed: %s", err.Error())
		return fmt.Errorf("failed to move shape: %w", err)
	}
	return nil
}

// Text returns the shape text.
func (s *Shape) Text() (string, error) {
	obj, err := s.object()
	if err != nil {
		return "", err
	}
	v, err := obj.Get("Text")
	if err != nil {
		shapeLog.Errorf("getting text failed: %s", err.Error())
		return "", fmt.Errorf("failed to get text: %w", err)
	}
	return v.String(), nil
}

// SetText sets the shape text. A shape whose text is computed by formula
// loses that behavior.
func (s *Shape) SetText(text string) error {
	obj, err := s.object()
	if err != nil {
		return err
	}
	if err := obj.Set("Text", text); err != nil {
		shapeLog.Errorf("setting text failed: %s", err.Error())
		return fmt.Errorf("failed to set text: %w", err)
	}
	return nil
}

// LineColor returns the raw line color formula, for example "THEMEVAL()"
// or "RGB(0,255,0)".
func (s *Shape) LineColor() (string, error) {
	return s.cellFormula("LineColor")
}

// SetLineColor writes a raw line color formula.
func (s *Shape) SetLineColor(formula string) error {
	return s.setCellFormula("LineColor", formula)
}

// SetLineColorRGB sets the line color to a literal RGB value, discarding
// any prior formula.
func (s *Shape) SetLineColorRGB(red, green, blue int) error {
	return s.SetLineColor(rgbFormula(red, green, blue))
}

// FillColor returns the raw fill foreground color formula.
func (s *Shape) FillColor() (string, error) {
	return s.cellFormula("Fillforegnd")
}

// SetFillColor writes a raw fill foreground color formula.
func (s *Shape) SetFillColor(formula string) error {
	return s.setCellFormula("Fillforegnd", formula)
}

// SetFillColorRGB sets the fill color to a literal RGB value, discarding
// any prior formula.
func (s *Shape) SetFillColorRGB(red, green, blue int) error {
	return s.SetFillColor(rgbFormula(red, green, blue))
}

// OneD reports whether the shape behaves as a connector-like 1-D shape.
func (s *Shape) OneD() (bool, error) {
	obj, err := s.object()
	if err != nil {
		return false, err
	}
	v, err := obj.Get("OneD")
	if err != nil {
		shapeLog.Errorf("getting OneD failed: %s", err.Error())
		return false, fmt.Errorf("failed to get OneD: %w", err)
	}
	return v.Int() != 0, nil
}

// Cell returns the formula of the named cell. A cell the shape does not
// have fails with ErrNoSuchCell.
func (s *Shape) Cell(id string) (string, error) {
	if err := s.requireCell(id); err != nil {
		return "", err
	}
	return s.cellFormula(id)
}

// SetCell writes the named cell. With preformatted the value is written
// verbatim as formula text; otherwise it is wrapped as a quoted-string
// formula. A cell the shape does not have fails with ErrNoSuchCell.
func (s *Shape) SetCell(id, value string, preformatted bool) error {
	if err := s.requireCell(id); err != nil {
		return err
	}
	if preformatted {
		return s.setCellFormula(id, value)
	}
	return s.setCellFormula(id, fmt.Sprintf("=%q", value))
}

// Delete removes the shape from its page and invalidates the handle.
func (s *Shape) Delete() error {
	return s.DeleteEx(DeleteNormal)
}

// DeleteEx removes the shape from its page with explicit delete flags and
// invalidates the handle. Any further operation fails with ErrShapeDeleted.
func (s *Shape) DeleteEx(flags int) error {
	obj, err := s.object()
	if err != nil {
		return err
	}
	if _, err := obj.Call("DeleteEx", flags); err != nil {
		shapeLog.Errorf("deleting shape failed: %s", err.Error())
		return fmt.Errorf("failed to delete shape: %w", err)
	}
	obj.Release()
	s.obj = nil
	return nil
}

func (s *Shape) requireCell(id string) error {
	obj, err := s.object()
	if err != nil {
		return err
	}
	v, err := obj.Get("CellExistsU", id, 0)
	if err != nil {
		shapeLog.Errorf("checking cell %s failed: %s", id, err.Error())
		return fmt.Errorf("failed to check cell %q: %w", id, err)
	}
	if !v.Bool() {
		shapeLog.Errorf("cell does not exist: %s", id)
		return fmt.Errorf("%q: %w", id, ErrNoSuchCell)
	}
	return nil
}

func (s *Shape) cellObject(name string) (automation.Object, error) {
	obj, err := s.object()
	if err != nil {
		return nil, err
	}
	v, err := obj.Get("CellsU", name)
	if err != nil {
		shapeLog.Errorf("getting cell %s failed: %s", name, err.Error())
		return nil, fmt.Errorf("failed to get cell %q: %w", name, err)
	}
	return v.Object(), nil
}

func (s *Shape) cellResult(name string) (float64, error) {
	cell, err := s.cellObject(name)
	if err != nil {
		return 0, err
	}
	defer cell.Release()

	v, err := cell.Get("ResultIU")
	if err != nil {
		shapeLog.Errorf("getting result of cell %s failed: %s", name, err.Error())
		return 0, fmt.Errorf("failed to get result of cell %q: %w", name, err)
	}
	return v.Float(), nil
}

func (s *Shape) cellFormula(name string) (string, error) {
	cell, err := s.cellObject(name)
	if err != nil {
		return "", err
	}
	defer cell.Release()

	v, err := cell.Get("FormulaU")
	if err != nil {
		shapeLog.Errorf("getting formula of cell %s failed: %s", name, err.Error())
		return "", fmt.Errorf("failed to get formula of cell %q: %w", name, err)
	}
	return v.String(), nil
}

func (s *Shape) setCellFormula(name, formula string) error {
	cell, err := s.cellObject(name)
	if err != nil {
		return err
	}
	defer cell.Release()

	if err := cell.Set("FormulaU", formula); err != nil {
		shapeLog.Errorf("setting formula of cell %s failed: %s", name, err.Error())
		return fmt.Errorf("failed to set formula of cell %q: %w", name, err)
	}
	return nil
}

func formatNumber(value float64) string {
	return strconv.FormatFloat(value, 'g', -1, 64)
}

// Both "RGB(r,g,b)" and "=RGB(r,g,b)" are accepted by the application,
// even though in theory only the '=' form should be.
func rgbFormula(red, green, blue int) string {
	return fmt.Sprintf("RGB(%d,%d,%d)", red, green, blue)
}
