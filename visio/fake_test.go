package visio

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/i-wan/govisio/automation"
)

// The fakes below model just enough of the drawing application's object
// model to exercise the wrappers without a running application. They play
// the same role as a second backend behind the automation.Object interface.

// line weight padding the fake adds on each side of a bounding box
const fakeBBoxMargin = 0.01

type fakeObject struct {
	name     string
	aux      any
	props    map[string]any
	getters  map[string]func(args ...any) (any, error)
	setters  map[string]func(value any) error
	methods  map[string]func(args ...any) (any, error)
	released int
}

func newFakeObject(name string) *fakeObject {
	return &fakeObject{
		name:    name,
		props:   make(map[string]any),
		getters: make(map[string]func(args ...any) (any, error)),
		setters: make(map[string]func(value any) error),
		methods: make(map[string]func(args ...any) (any, error)),
	}
}

func (o *fakeObject) Get(property string, args ...any) (automation.Value, error) {
	if getter, ok := o.getters[property]; ok {
		v, err := getter(args...)
		if err != nil {
			return nil, err
		}
		return fakeValue{v}, nil
	}
	if v, ok := o.props[property]; ok {
		return fakeValue{v}, nil
	}
	return nil, fmt.Errorf("%s has no property %s", o.name, property)
}

func (o *fakeObject) Set(property string, value any) error {
	if setter, ok := o.setters[property]; ok {
		return setter(value)
	}
	if _, ok := o.props[property]; ok {
		o.props[property] = value
		return nil
	}
	return fmt.Errorf("%s has no property %s", o.name, property)
}

func (o *fakeObject) Call(method string, args ...any) (automation.Value, error) {
	m, ok := o.methods[method]
	if !ok {
		return nil, fmt.Errorf("%s has no method %s", o.name, method)
	}
	v, err := m(args...)
	if err != nil {
		return nil, err
	}
	return fakeValue{v}, nil
}

func (o *fakeObject) Has(name string) bool {
	if _, ok := o.props[name]; ok {
		return true
	}
	if _, ok := o.getters[name]; ok {
		return true
	}
	if _, ok := o.setters[name]; ok {
		return true
	}
	_, ok := o.methods[name]
	return ok
}

func (o *fakeObject) Release() {
	o.released++
}

type fakeValue struct {
	v any
}

func (f fakeValue) Object() automation.Object {
	if o, ok := f.v.(automation.Object); ok {
		return o
	}
	return nil
}

func (f fakeValue) String() string {
	switch v := f.v.(type) {
	case string:
		return v
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", v)
	}
}

func (f fakeValue) Float() float64 {
	switch v := f.v.(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case string:
		n, _ := strconv.ParseFloat(v, 64)
		return n
	}
	return 0
}

func (f fakeValue) Int() int {
	switch v := f.v.(type) {
	case int:
		return v
	case float64:
		return int(v)
	case bool:
		if v {
			return 1
		}
		return 0
	}
	return 0
}

func (f fakeValue) Bool() bool {
	switch v := f.v.(type) {
	case bool:
		return v
	case int:
		return v != 0
	}
	return false
}

// masterDef describes one master shape of a fake stencil file.
type masterDef struct {
	name       string
	objectType int
	shapeCount int
	width      float64
	height     float64
	oneD       bool
	cells      map[string]string
}

func simpleMaster(name string, width, height float64) masterDef {
	return masterDef{
		name:       name,
		objectType: visObjTypeMaster,
		shapeCount: 1,
		width:      width,
		height:     height,
	}
}

// fileDef describes a fake document file usable as template or for editing.
type fileDef struct {
	pages []string
	props map[string]any
}

type fakeApp struct {
	root     *fakeObject
	docs     *fakeObject
	window   *fakeObject
	settings *fakeObject

	files        map[string]*fileDef
	stencilFiles map[string][]masterDef
	stencilOpens map[string]int

	activePage  *fakePage
	pagesByName map[string]*fakePage
	lastDoc     *fakeDoc

	exports     []string
	exportPDFs  []string
	printed     int
	nextShapeID int

	// number of connector shapes one AutoConnect call creates
	fanout int
}

func newFakeApp() *fakeApp {
	env := &fakeApp{
		files:        make(map[string]*fileDef),
		stencilFiles: make(map[string][]masterDef),
		stencilOpens: make(map[string]int),
		pagesByName:  make(map[string]*fakePage),
		fanout:       1,
	}

	root := newFakeObject("Application")
	root.props["Visible"] = false
	root.props["AlertResponse"] = 0
	env.root = root

	docs := newFakeObject("Documents")
	docs.methods["Add"] = func(args ...any) (any, error) {
		path, _ := args[0].(string)
		if path == "" {
			return env.newDocument(&fileDef{pages: []string{"Page-1"}}, "").obj, nil
		}
		def, ok := env.files[path]
		if !ok {
			return nil, fmt.Errorf("file not found: %s", path)
		}
		// template open: contents copied, document stays unsaved
		return env.newDocument(def, "").obj, nil
	}
	docs.methods["Open"] = func(args ...any) (any, error) {
		path, _ := args[0].(string)
		def, ok := env.files[path]
		if !ok {
			return nil, fmt.Errorf("file not found: %s", path)
		}
		return env.newDocument(def, path).obj, nil
	}
	docs.methods["OpenEx"] = func(args ...any) (any, error) {
		path, _ := args[0].(string)
		defs, ok := env.stencilFiles[path]
		if !ok {
			return nil, fmt.Errorf("stencil not found: %s", path)
		}
		env.stencilOpens[path]++
		return env.newStencilDoc(path, defs), nil
	}
	env.docs = docs
	root.getters["Documents"] = func(...any) (any, error) { return docs, nil }

	window := newFakeObject("ActiveWindow")
	window.getters["Page"] = func(...any) (any, error) {
		if env.activePage == nil {
			return nil, fmt.Errorf("no active page")
		}
		return env.activePage.obj, nil
	}
	window.setters["Page"] = func(value any) error {
		name, _ := value.(string)
		page, ok := env.pagesByName[name]
		if !ok {
			return fmt.Errorf("no page named %s", name)
		}
		env.activePage = page
		return nil
	}
	env.window = window
	root.getters["ActiveWindow"] = func(...any) (any, error) { return window, nil }

	settings := newFakeObject("Settings")
	settings.props["RasterExportUseTransparencyColor"] = false
	env.settings = settings
	root.getters["Settings"] = func(...any) (any, error) { return settings, nil }

	root.methods["Quit"] = func(...any) (any, error) { return nil, nil }

	return env
}

type fakeDoc struct {
	obj   *fakeObject
	env   *fakeApp
	path  string
	pages []*fakePage

	saves        int
	closed       bool
	alertAtClose int
}

func (env *fakeApp) newDocument(def *fileDef, boundPath string) *fakeDoc {
	doc := &fakeDoc{env: env, path: boundPath}
	env.lastDoc = doc
	obj := newFakeObject("Document")
	doc.obj = obj

	obj.props["Title"] = ""
	obj.props["Subject"] = ""
	obj.props["Creator"] = ""
	obj.props["Company"] = ""
	for name, value := range def.props {
		obj.props[name] = value
	}

	for _, name := range def.pages {
		doc.addPage(name)
	}
	if len(doc.pages) > 0 {
		env.activePage = doc.pages[0]
	}

	pagesObj := newFakeObject("Pages")
	pagesObj.getters["Count"] = func(...any) (any, error) { return len(doc.pages), nil }
	pagesObj.getters["ItemU"] = func(args ...any) (any, error) { return doc.pageItem(args[0]) }
	pagesObj.getters["Item"] = func(args ...any) (any, error) { return doc.pageItem(args[0]) }
	pagesObj.methods["Add"] = func(...any) (any, error) {
		page := doc.addPage(fmt.Sprintf("Page-%d", len(doc.pages)+1))
		return page.obj, nil
	}
	obj.getters["Pages"] = func(...any) (any, error) { return pagesObj, nil }

	obj.methods["Save"] = func(...any) (any, error) {
		if doc.path == "" {
			return nil, fmt.Errorf("document has no file")
		}
		doc.saves++
		return nil, nil
	}
	obj.methods["SaveAs"] = func(args ...any) (any, error) {
		doc.path, _ = args[0].(string)
		doc.saves++
		return nil, nil
	}
	obj.methods["Print"] = func(...any) (any, error) {
		env.printed++
		return nil, nil
	}
	obj.methods["ExportAsFixedFormat"] = func(args ...any) (any, error) {
		path, _ := args[1].(string)
		env.exportPDFs = append(env.exportPDFs, path)
		return nil, nil
	}
	obj.methods["Close"] = func(...any) (any, error) {
		doc.closed = true
		doc.alertAtClose, _ = env.root.props["AlertResponse"].(int)
		return nil, nil
	}
	return doc
}

func (d *fakeDoc) pageItem(key any) (any, error) {
	switch k := key.(type) {
	case int:
		if k < 1 || k > len(d.pages) {
			return nil, fmt.Errorf("no page at index %d", k)
		}
		return d.pages[k-1].obj, nil
	case string:
		for _, page := range d.pages {
			if page.obj.props["NameU"] == k {
				return page.obj, nil
			}
		}
		return nil, fmt.Errorf("no page named %s", k)
	}
	return nil, fmt.Errorf("bad page key %v", key)
}

type fakePage struct {
	obj    *fakeObject
	env    *fakeApp
	doc    *fakeDoc
	shapes []*fakeShape
}

func (d *fakeDoc) addPage(name string) *fakePage {
	page := &fakePage{env: d.env, doc: d}
	obj := newFakeObject("Page")
	page.obj = obj

	obj.props["NameU"] = name
	obj.props["AutoSize"] = false
	d.env.pagesByName[name] = page

	obj.setters["NameU"] = func(value any) error {
		newName, _ := value.(string)
		oldName, _ := obj.props["NameU"].(string)
		delete(d.env.pagesByName, oldName)
		obj.props["NameU"] = newName
		d.env.pagesByName[newName] = page
		return nil
	}
	obj.getters["Index"] = func(...any) (any, error) {
		for i, candidate := range d.pages {
			if candidate == page {
				return i + 1, nil
			}
		}
		return 0, fmt.Errorf("page not in document")
	}
	obj.methods["Drop"] = func(args ...any) (any, error) {
		master, ok := args[0].(*fakeObject)
		if !ok {
			return nil, fmt.Errorf("Drop needs a master")
		}
		def, ok := master.aux.(masterDef)
		if !ok {
			return nil, fmt.Errorf("not a master object")
		}
		x, _ := args[1].(float64)
		y, _ := args[2].(float64)
		shape := page.drop(def, x, y)
		return shape.obj, nil
	}
	obj.methods["CenterDrawing"] = func(...any) (any, error) { return nil, nil }
	obj.methods["ResizeToFitContents"] = func(...any) (any, error) { return nil, nil }

	shapesObj := newFakeObject("Shapes")
	shapesObj.getters["Count"] = func(...any) (any, error) { return len(page.shapes), nil }
	shapesObj.getters["ItemFromID"] = func(args ...any) (any, error) {
		id, _ := args[0].(int)
		for _, shape := range page.shapes {
			if shape.id == id {
				return shape.obj, nil
			}
		}
		return nil, fmt.Errorf("no shape with ID %d", id)
	}
	obj.getters["Shapes"] = func(...any) (any, error) { return shapesObj, nil }

	d.pages = append(d.pages, page)
	return page
}

type fakeShape struct {
	obj          *fakeObject
	env          *fakeApp
	page         *fakePage
	id           int
	cells        map[string]*fakeObject
	fromConnects []*fakeShape
	deleted      bool
}

func (p *fakePage) drop(def masterDef, x, y float64) *fakeShape {
	env := p.env
	env.nextShapeID++
	shape := &fakeShape{env: env, page: p, id: env.nextShapeID, cells: make(map[string]*fakeObject)}
	obj := newFakeObject("Shape")
	shape.obj = obj
	obj.aux = shape

	shape.setCell("PinX", formatNumber(x))
	shape.setCell("PinY", formatNumber(y))
	shape.setCell("Width", formatNumber(def.width))
	shape.setCell("Height", formatNumber(def.height))
	shape.setCell("LineColor", "THEMEVAL()")
	shape.setCell("Fillforegnd", "THEMEVAL()")
	shape.setCell("LineWeight", `THEMEVAL("LineWeight",0.24 pt)`)
	for name, formula := range def.cells {
		shape.setCell(name, formula)
	}

	obj.props["Text"] = ""
	obj.props["NameU"] = fmt.Sprintf("%s.%d", def.name, shape.id)
	obj.props["ID"] = shape.id
	if def.oneD {
		obj.props["OneD"] = 1
	} else {
		obj.props["OneD"] = 0
	}

	cellLookup := func(args ...any) (any, error) {
		name, _ := args[0].(string)
		cell, ok := shape.cells[name]
		if !ok {
			return nil, fmt.Errorf("shape has no cell %s", name)
		}
		return cell, nil
	}
	obj.getters["CellsU"] = cellLookup
	obj.getters["Cells"] = cellLookup
	obj.getters["CellExistsU"] = func(args ...any) (any, error) {
		name, _ := args[0].(string)
		_, ok := shape.cells[name]
		return ok, nil
	}
	obj.getters["ContainingPage"] = func(...any) (any, error) { return p.obj, nil }
	obj.getters["FromConnects"] = func(...any) (any, error) {
		snapshot := append([]*fakeShape(nil), shape.fromConnects...)
		connects := newFakeObject("Connects")
		connects.getters["Count"] = func(...any) (any, error) { return len(snapshot), nil }
		connects.getters["Item"] = func(args ...any) (any, error) {
			i, _ := args[0].(int)
			if i < 1 || i > len(snapshot) {
				return nil, fmt.Errorf("no connect at index %d", i)
			}
			connector := snapshot[i-1]
			connect := newFakeObject("Connect")
			connect.getters["FromSheet"] = func(...any) (any, error) { return connector.obj, nil }
			return connect, nil
		}
		return connects, nil
	}

	obj.methods["SetCenter"] = func(args ...any) (any, error) {
		x, _ := args[0].(float64)
		y, _ := args[1].(float64)
		shape.cells["PinX"].props["FormulaU"] = formatNumber(x)
		shape.cells["PinY"].props["FormulaU"] = formatNumber(y)
		return nil, nil
	}
	obj.methods["BoundingBox"] = func(args ...any) (any, error) {
		x := shape.cellResult("PinX")
		y := shape.cellResult("PinY")
		w := shape.cellResult("Width")
		h := shape.cellResult("Height")
		*(args[1].(*float64)) = x - w/2 - fakeBBoxMargin
		*(args[2].(*float64)) = y - h/2 - fakeBBoxMargin
		*(args[3].(*float64)) = x + w/2 + fakeBBoxMargin
		*(args[4].(*float64)) = y + h/2 + fakeBBoxMargin
		return nil, nil
	}
	obj.methods["DeleteEx"] = func(...any) (any, error) {
		shape.deleted = true
		kept := p.shapes[:0]
		for _, candidate := range p.shapes {
			if candidate != shape {
				kept = append(kept, candidate)
			}
		}
		p.shapes = kept
		return nil, nil
	}
	obj.methods["AutoConnect"] = func(args ...any) (any, error) {
		other, ok := args[0].(*fakeObject)
		if !ok {
			return nil, fmt.Errorf("AutoConnect needs a shape")
		}
		target, ok := other.aux.(*fakeShape)
		if !ok {
			return nil, fmt.Errorf("not a shape object")
		}
		def := dynamicConnectorDef()
		if len(args) > 2 {
			master, ok := args[2].(*fakeObject)
			if !ok {
				return nil, fmt.Errorf("AutoConnect needs a master")
			}
			def, ok = master.aux.(masterDef)
			if !ok {
				return nil, fmt.Errorf("not a master object")
			}
		}
		for i := 0; i < env.fanout; i++ {
			connector := p.drop(def, 0, 0)
			shape.fromConnects = append(shape.fromConnects, connector)
			target.fromConnects = append(target.fromConnects, connector)
		}
		return nil, nil
	}

	p.shapes = append(p.shapes, shape)
	return shape
}

func dynamicConnectorDef() masterDef {
	return masterDef{
		name:       "Dynamic connector",
		objectType: visObjTypeMaster,
		shapeCount: 1,
		width:      0.25,
		height:     0.25,
		oneD:       true,
		cells:      map[string]string{"ShapeRouteStyle": "0"},
	}
}

func (s *fakeShape) setCell(name, formula string) {
	cell := newFakeObject("Cell")
	cell.props["FormulaU"] = formula
	cell.setters["FormulaU"] = func(value any) error {
		formula, _ := value.(string)
		// the application stores formulas without the leading '='
		cell.props["FormulaU"] = strings.TrimPrefix(formula, "=")
		return nil
	}
	cell.getters["ResultIU"] = func(...any) (any, error) {
		return parseFakeFormula(cell.props["FormulaU"].(string)), nil
	}
	cell.getters["ResultStr"] = func(...any) (any, error) {
		return unquoteFakeFormula(cell.props["FormulaU"].(string)), nil
	}
	s.cells[name] = cell
}

func (s *fakeShape) cellResult(name string) float64 {
	return parseFakeFormula(s.cells[name].props["FormulaU"].(string))
}

func parseFakeFormula(formula string) float64 {
	trimmed := unquoteFakeFormula(formula)
	if n, err := strconv.ParseFloat(trimmed, 64); err == nil {
		return n
	}
	fields := strings.Fields(trimmed)
	if len(fields) > 0 {
		if n, err := strconv.ParseFloat(fields[0], 64); err == nil {
			return n
		}
	}
	return 0
}

func unquoteFakeFormula(formula string) string {
	trimmed := strings.TrimPrefix(formula, "=")
	if len(trimmed) >= 2 && strings.HasPrefix(trimmed, `"`) && strings.HasSuffix(trimmed, `"`) {
		return trimmed[1 : len(trimmed)-1]
	}
	return trimmed
}

// newStencilDoc builds the document object OpenEx returns for a stencil
// file, with its Masters collection.
func (env *fakeApp) newStencilDoc(path string, defs []masterDef) *fakeObject {
	key := path
	if i := strings.LastIndex(key, "."); i >= 0 {
		key = key[:i]
	}
	doc := newFakeObject("StencilDocument")
	doc.props["Name"] = key

	masters := newFakeObject("Masters")
	masters.getters["Count"] = func(...any) (any, error) { return len(defs), nil }
	lookup := func(args ...any) (any, error) {
		switch k := args[0].(type) {
		case int:
			if k < 1 || k > len(defs) {
				return nil, fmt.Errorf("no master at index %d", k)
			}
			return env.newMaster(doc, defs[k-1]), nil
		case string:
			for _, def := range defs {
				if def.name == k {
					return env.newMaster(doc, def), nil
				}
			}
			return nil, fmt.Errorf("no master named %s", k)
		}
		return nil, fmt.Errorf("bad master key %v", args[0])
	}
	masters.getters["Item"] = lookup
	masters.getters["ItemU"] = lookup
	doc.getters["Masters"] = func(...any) (any, error) { return masters, nil }
	return doc
}

func (env *fakeApp) newMaster(stencilDoc *fakeObject, def masterDef) *fakeObject {
	master := newFakeObject("Master")
	master.aux = def
	master.props["NameU"] = def.name
	master.props["ObjectType"] = def.objectType
	master.getters["Document"] = func(...any) (any, error) { return stencilDoc, nil }

	embedded := newFakeObject("MasterShape")
	embedded.getters["Cells"] = func(args ...any) (any, error) {
		name, _ := args[0].(string)
		var formula string
		switch name {
		case "Width":
			formula = formatNumber(def.width)
		case "Height":
			formula = formatNumber(def.height)
		default:
			return nil, fmt.Errorf("master shape has no cell %s", name)
		}
		cell := newFakeObject("Cell")
		cell.props["FormulaU"] = formula
		cell.getters["ResultIU"] = func(...any) (any, error) {
			return parseFakeFormula(cell.props["FormulaU"].(string)), nil
		}
		return cell, nil
	}
	embedded.methods["Export"] = func(args ...any) (any, error) {
		path, _ := args[0].(string)
		env.exports = append(env.exports, path)
		return nil, nil
	}

	shapes := newFakeObject("MasterShapes")
	shapes.getters["Count"] = func(...any) (any, error) { return def.shapeCount, nil }
	shapes.getters["Item"] = func(args ...any) (any, error) {
		i, _ := args[0].(int)
		if i != 1 {
			return nil, fmt.Errorf("no shape at index %d", i)
		}
		return embedded, nil
	}
	master.getters["Shapes"] = func(...any) (any, error) { return shapes, nil }

	master.methods["BoundingBox"] = func(args ...any) (any, error) {
		*(args[1].(*float64)) = 0
		*(args[2].(*float64)) = 0
		*(args[3].(*float64)) = def.width + 2*fakeBBoxMargin
		*(args[4].(*float64)) = def.height + 2*fakeBBoxMargin
		return nil, nil
	}
	return master
}
