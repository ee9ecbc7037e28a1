package visio

import (
	"fmt"
	"iter"
	"path/filepath"
	"sort"
	"strings"

	"github.com/tliron/commonlog"

	"github.com/i-wan/govisio/automation"
)

var stencilLog = commonlog.GetLogger("govisio.stencils")

// Stencils loads Visio stencil files and resolves master shape names to
// master definitions.
//
// Each loaded stencil is registered under a key derived from its file name
// (basename without extension). Every master name found in a stencil is
// mapped to the list of stencil keys that define it, most recently loaded
// key first, so resolution is last-loaded-wins. Stencils are never
// unloaded.
type Stencils struct {
	app *App
	// stencil key -> open stencil document handle
	stencils map[string]automation.Object
	// master name -> stencil keys defining it, most recent first
	shapes map[string][]string
}

// MasterInfo describes a master shape definition.
type MasterInfo struct {
	ObjectType int
	ShapeCount int
	// Width and Height are the nominal extent of the embedded shape, in
	// inches.
	Width  float64
	Height float64
	// Size is computed from the upright bounding box and is slightly
	// larger than Width x Height because it accounts for line weight.
	Size Size
}

// Size is a width/height pair in inches.
type Size struct {
	W float64
	H float64
}

// NewStencils creates a registry bound to app and optionally loads stencil
// files. A path relative to the application's own stencil search path works
// as well as an absolute one; the file extension is required either way.
func NewStencils(app *App, paths ...string) (*Stencils, error) {
	s := &Stencils{
		app:      app,
		stencils: make(map[string]automation.Object),
		shapes:   make(map[string][]string),
	}
	for _, path := range paths {
		if err := s.Load(path); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Load opens a stencil file in docked mode and registers all of its master
// shape names. Loading a stencil whose key is already registered is a
// no-op; the file is not reopened or re-scanned.
func (s *Stencils) Load(path string) error {
	key := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	if _, ok := s.stencils[key]; ok {
		return nil
	}

	docs, err := s.app.documents()
	if err != nil {
		stencilLog.Errorf("loading of stencil file failed for: %s", path)
		stencilLog.Errorf("automation error: %s", err.Error())
		return err
	}
	defer docs.Release()

	v, err := docs.Call("OpenEx", path, visOpenDocked)
	if err != nil {
		stencilLog.Errorf("loading of stencil file failed for: %s", path)
		stencilLog.Errorf("automation error: %s", err.Error())
		return fmt.Errorf("failed to open stencil %q: %w", path, err)
	}
	doc := v.Object()

	masters, err := s.mastersOf(doc)
	if err != nil {
		doc.Release()
		return err
	}
	defer masters.Release()

	cv, err := masters.Get("Count")
	if err != nil {
		doc.Release()
		stencilLog.Errorf("failed to count masters of %s: %s", path, err.Error())
		return fmt.Errorf("failed to get master count: %w", err)
	}

	s.stencils[key] = doc
	for i := 1; i <= cv.Int(); i++ {
		mv, err := masters.Get("Item", i)
		if err != nil {
			continue
		}
		master := mv.Object()
		nv, err := master.Get("NameU")
		master.Release()
		if err != nil {
			continue
		}
		name := nv.String()
		s.shapes[name] = append([]string{key}, s.shapes[name]...)
	}
	return nil
}

// Master resolves a master shape name against the most recently loaded
// stencil that defines it. The caller owns the returned handle.
func (s *Stencils) Master(name string) (automation.Object, error) {
	return s.MasterAt(name, 0)
}

// MasterAt resolves a master shape name at the given position within its
// resolution list; index 0 is the most recently loaded stencil defining the
// name. The caller owns the returned handle.
func (s *Stencils) MasterAt(name string, index int) (automation.Object, error) {
	keys, ok := s.shapes[name]
	if !ok {
		stencilLog.Errorf("non existing shape: %s", name)
		return nil, fmt.Errorf("%q: %w", name, ErrUnknownMaster)
	}
	if index < 0 || index >= len(keys) {
		stencilLog.Errorf("bad shape index: %d", index)
		return nil, fmt.Errorf("index %d: %w", index, ErrBadIndex)
	}

	masters, err := s.mastersOf(s.stencils[keys[index]])
	if err != nil {
		return nil, err
	}
	defer masters.Release()

	v, err := masters.Get("ItemU", name)
	if err != nil {
		stencilLog.Errorf("getting master %s failed: %s", name, err.Error())
		return nil, fmt.Errorf("failed to get master %q: %w", name, err)
	}
	return v.Object(), nil
}

// Has reports whether any loaded stencil defines the master name.
func (s *Stencils) Has(name string) bool {
	_, ok := s.shapes[name]
	return ok
}

// Names returns a restartable sequence over the distinct registered master
// names. Order is unspecified.
func (s *Stencils) Names() iter.Seq[string] {
	return func(yield func(string) bool) {
		for name := range s.shapes {
			if !yield(name) {
				return
			}
		}
	}
}

// StencilNames returns the keys of the loaded stencils, sorted.
func (s *Stencils) StencilNames() []string {
	keys := make([]string, 0, len(s.stencils))
	for key := range s.stencils {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Info returns metadata of the resolved master shape definition. When the
// definition is not a simple single-shape master the result is
// zero-valued and a warning is logged; this is not an error.
func (s *Stencils) Info(name string, index int) (MasterInfo, error) {
	master, err := s.MasterAt(name, index)
	if err != nil {
		return MasterInfo{}, err
	}
	defer master.Release()

	info := MasterInfo{ObjectType: visObjTypeUnknown}

	ov, err := master.Get("ObjectType")
	if err != nil {
		stencilLog.Errorf("getting object type of %s failed: %s", name, err.Error())
		return MasterInfo{}, fmt.Errorf("failed to get object type: %w", err)
	}
	sv, err := master.Get("Shapes")
	if err != nil {
		stencilLog.Errorf("getting shapes of %s failed: %s", name, err.Error())
		return MasterInfo{}, fmt.Errorf("failed to get shapes: %w", err)
	}
	shapes := sv.Object()
	defer shapes.Release()

	cv, err := shapes.Get("Count")
	if err != nil {
		stencilLog.Errorf("counting shapes of %s failed: %s", name, err.Error())
		return MasterInfo{}, fmt.Errorf("failed to count shapes: %w", err)
	}

	if ov.Int() != visObjTypeMaster || cv.Int() != 1 {
		stencilLog.Warningf("object type of %s is not 'master', results unpredictable", name)
		return info, nil
	}
	info.ObjectType = ov.Int()
	info.ShapeCount = cv.Int()

	iv, err := shapes.Get("Item", 1)
	if err != nil {
		stencilLog.Errorf("getting shape of %s failed: %s", name, err.Error())
		return MasterInfo{}, fmt.Errorf("failed to get shape: %w", err)
	}
	shape := iv.Object()
	defer shape.Release()

	if info.Width, err = masterCellResult(shape, "Width"); err != nil {
		stencilLog.Errorf("getting width of %s failed: %s", name, err.Error())
		return MasterInfo{}, err
	}
	if info.Height, err = masterCellResult(shape, "Height"); err != nil {
		stencilLog.Errorf("getting height of %s failed: %s", name, err.Error())
		return MasterInfo{}, err
	}

	var x0, y0, x1, y1 float64
	if _, err := master.Call("BoundingBox", visBBoxUprightWH, &x0, &y0, &x1, &y1); err != nil {
		stencilLog.Errorf("getting bounding box of %s failed: %s", name, err.Error())
		return MasterInfo{}, fmt.Errorf("failed to get bounding box: %w", err)
	}
	info.Size = Size{W: x1 - x0, H: y1 - y0}
	return info, nil
}

// Export renders the resolved master shape to path using the application's
// export capability; the output format follows the file extension. Export
// transparency-color substitution is enabled first so raster formats keep a
// transparent background.
func (s *Stencils) Export(path, name string, index int) error {
	settings, err := s.app.settings()
	if err != nil {
		stencilLog.Errorf("export failed: %s", err.Error())
		return err
	}
	err = settings.Set("RasterExportUseTransparencyColor", true)
	settings.Release()
	if err != nil {
		stencilLog.Errorf("export failed: %s", err.Error())
		return fmt.Errorf("failed to enable export transparency: %w", err)
	}

	master, err := s.MasterAt(name, index)
	if err != nil {
		return err
	}
	defer master.Release()

	sv, err := master.Get("Shapes")
	if err != nil {
		stencilLog.Errorf("export failed: %s", err.Error())
		return fmt.Errorf("failed to get shapes: %w", err)
	}
	shapes := sv.Object()
	defer shapes.Release()

	iv, err := shapes.Get("Item", 1)
	if err != nil {
		stencilLog.Errorf("export failed: %s", err.Error())
		return fmt.Errorf("failed to get shape: %w", err)
	}
	shape := iv.Object()
	defer shape.Release()

	if _, err := shape.Call("Export", path); err != nil {
		stencilLog.Errorf("export failed: %s", err.Error())
		return fmt.Errorf("failed to export %q: %w", name, err)
	}
	return nil
}

func (s *Stencils) mastersOf(doc automation.Object) (automation.Object, error) {
	v, err := doc.Get("Masters")
	if err != nil {
		stencilLog.Errorf("failed to get masters: %s", err.Error())
		return nil, fmt.Errorf("failed to get Masters: %w", err)
	}
	return v.Object(), nil
}

func masterCellResult(shape automation.Object, cellName string) (float64, error) {
	cv, err := shape.Get("Cells", cellName)
	if err != nil {
		return 0, fmt.Errorf("failed to get cell %q: %w", cellName, err)
	}
	cell := cv.Object()
	defer cell.Release()

	rv, err := cell.Get("ResultIU")
	if err != nil {
		return 0, fmt.Errorf("failed to get result of cell %q: %w", cellName, err)
	}
	return rv.Float(), nil
}
