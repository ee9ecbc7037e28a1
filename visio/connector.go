package visio

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/tliron/commonlog"

	"github.com/i-wan/govisio/automation"
)

var connLog = commonlog.GetLogger("govisio.connectors")

// dualLabelKind is the connector kind whose text lives in two end-point
// label cells instead of the shape text.
const dualLabelKind = "Data_Connect"

// ConnectorOptions configures connector creation.
type ConnectorOptions struct {
	// Master is the shape definition to use for the connector. Nil uses
	// the application's built-in dynamic connector.
	Master automation.Object
	// Direction is a placement direction hint (AutoConnectDir constants).
	Direction int
	// Text, when non-empty, is assigned to the connector after creation.
	Text string
}

// Connector is a placed shape connecting two other shapes. It is created
// through the application's auto-connect capability and behaves like any
// other Shape, except that dual-label connector kinds get special text
// handling.
type Connector struct {
	Shape
	kind string
}

// NewConnector connects shape a to shape b and returns the handle of the
// newly created connector shape.
//
// The auto-connect capability returns nothing, so the connector is located
// by comparing a's incoming-connection IDs before and after the call. This
// is inherently racy if anything else mutates a's connections at the same
// time; when the snapshots do not differ by exactly one ID the call fails
// with ErrAmbiguousConnection.
func NewConnector(a, b *Shape, opts ConnectorOptions) (*Connector, error) {
	aObj, err := a.object()
	if err != nil {
		return nil, err
	}
	bObj, err := b.object()
	if err != nil {
		return nil, err
	}

	before, err := connectionIDs(aObj)
	if err != nil {
		return nil, err
	}

	if opts.Master != nil {
		_, err = aObj.Call("AutoConnect", bObj, opts.Direction, opts.Master)
	} else {
		_, err = aObj.Call("AutoConnect", bObj, opts.Direction)
	}
	if err != nil {
		connLog.Errorf("auto connect failed: %s", err.Error())
		return nil, fmt.Errorf("failed to auto connect: %w", err)
	}

	after, err := connectionIDs(aObj)
	if err != nil {
		return nil, err
	}
	fresh := newIDs(before, after)
	if len(fresh) != 1 {
		connLog.Errorf("auto connect produced %d new connections", len(fresh))
		return nil, fmt.Errorf("%d new connections: %w", len(fresh), ErrAmbiguousConnection)
	}

	pv, err := aObj.Get("ContainingPage")
	if err != nil {
		connLog.Errorf("getting containing page failed: %s", err.Error())
		return nil, fmt.Errorf("failed to get containing page: %w", err)
	}
	page := pv.Object()
	defer page.Release()

	sv, err := page.Get("Shapes")
	if err != nil {
		connLog.Errorf("getting page shapes failed: %s", err.Error())
		return nil, fmt.Errorf("failed to get page shapes: %w", err)
	}
	shapes := sv.Object()
	defer shapes.Release()

	cv, err := shapes.Get("ItemFromID", fresh[0])
	if err != nil {
		connLog.Errorf("getting connector shape failed: %s", err.Error())
		return nil, fmt.Errorf("failed to get connector shape: %w", err)
	}
	obj := cv.Object()

	nv, err := obj.Get("NameU")
	if err != nil {
		connLog.Errorf("getting connector name failed: %s", err.Error())
		obj.Release()
		return nil, fmt.Errorf("failed to get connector name: %w", err)
	}
	kind, _, _ := strings.Cut(nv.String(), ".")

	c := &Connector{Shape: Shape{obj: obj}, kind: kind}
	if opts.Text != "" {
		if err := c.SetText(opts.Text); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Kind returns the connector's identifying name, the part of its universal
// name before the first separator.
func (c *Connector) Kind() string {
	return c.kind
}

// Text returns the connector text. For dual-label connector kinds the two
// end-point labels are joined with ";".
func (c *Connector) Text() (string, error) {
	if c.kind != dualLabelKind {
		return c.Shape.Text()
	}
	obj, err := c.object()
	if err != nil {
		return "", err
	}
	labelA, err := labelResult(obj, "Prop.Port_A_Port_Name")
	if err != nil {
		return "", err
	}
	labelB, err := labelResult(obj, "Prop.Port_B_Port_Name")
	if err != nil {
		return "", err
	}
	return labelA + ";" + labelB, nil
}

// SetText sets the connector text. For dual-label connector kinds the value
// is split on the first ";" into the two end-point labels; without a
// separator the second label is cleared.
func (c *Connector) SetText(text string) error {
	if c.kind != dualLabelKind {
		return c.Shape.SetText(text)
	}
	obj, err := c.object()
	if err != nil {
		return err
	}
	labelA, labelB, _ := strings.Cut(text, ";")
	if err := setLabelFormula(obj, "Prop.Port_A_Port_Name", labelA); err != nil {
		return err
	}
	return setLabelFormula(obj, "Prop.Port_B_Port_Name", labelB)
}

// RouteStyle sets the connector's routing-style cell, for example 1 for
// right-angle, 2 for straight or 16 for center-to-center routing.
func (c *Connector) RouteStyle(style int) error {
	return c.SetCell("ShapeRouteStyle", strconv.Itoa(style), false)
}

// connectionIDs snapshots the sheet IDs of all shapes with a connection
// coming into shape.
func connectionIDs(shape automation.Object) ([]int, error) {
	v, err := shape.Get("FromConnects")
	if err != nil {
		connLog.Errorf("getting connections failed: %s", err.Error())
		return nil, fmt.Errorf("failed to get connections: %w", err)
	}
	connects := v.Object()
	defer connects.Release()

	cv, err := connects.Get("Count")
	if err != nil {
		connLog.Errorf("counting connections failed: %s", err.Error())
		return nil, fmt.Errorf("failed to count connections: %w", err)
	}

	var ids []int
	for i := 1; i <= cv.Int(); i++ {
		iv, err := connects.Get("Item", i)
		if err != nil {
			continue
		}
		connect := iv.Object()
		sv, err := connect.Get("FromSheet")
		connect.Release()
		if err != nil {
			continue
		}
		sheet := sv.Object()
		idv, err := sheet.Get("ID")
		sheet.Release()
		if err != nil {
			continue
		}
		ids = append(ids, idv.Int())
	}
	return ids, nil
}

func newIDs(before, after []int) []int {
	known := make(map[int]bool, len(before))
	for _, id := range before {
		known[id] = true
	}
	var fresh []int
	for _, id := range after {
		if !known[id] {
			fresh = append(fresh, id)
		}
	}
	return fresh
}

func labelResult(shape automation.Object, cellName string) (string, error) {
	cv, err := shape.Get("Cells", cellName)
	if err != nil {
		connLog.Errorf("getting cell %s failed: %s", cellName, err.Error())
		return "", fmt.Errorf("failed to get cell %q: %w", cellName, err)
	}
	cell := cv.Object()
	defer cell.Release()

	rv, err := cell.Get("ResultStr", visNone)
	if err != nil {
		connLog.Errorf("getting result of cell %s failed: %s", cellName, err.Error())
		return "", fmt.Errorf("failed to get result of cell %q: %w", cellName, err)
	}
	return rv.String(), nil
}

func setLabelFormula(shape automation.Object, cellName, label string) error {
	cv, err := shape.Get("Cells", cellName)
	if err != nil {
		connLog.Errorf("getting cell %s failed: %s", cellName, err.Error())
		return fmt.Errorf("failed to get cell %q: %w", cellName, err)
	}
	cell := cv.Object()
	defer cell.Release()

	if err := cell.Set("FormulaU", fmt.Sprintf("=%q", label)); err != nil {
		connLog.Errorf("setting cell %s failed: %s", cellName, err.Error())
		return fmt.Errorf("failed to set cell %q: %w", cellName, err)
	}
	return nil
}
