// Package visio is a thin convenience layer over the Microsoft Visio COM
// automation interface. It opens and creates documents, adds pages, loads
// stencil files, drops master shapes onto pages and mutates shape geometry,
// text and color by forwarding to the application's own object model.
//
// Every operation is a direct, synchronous call into the running Visio
// instance; nothing is retried, cached or parsed locally. A failing
// automation call is logged and returned to the caller unchanged.
//
// The application handle is obtained once and passed explicitly to every
// component:
//
//	app, err := visio.Connect()
//	if err != nil {
//		// Visio could not be started
//	}
//	doc, err := visio.Open(app, "", false)
//	stencils, err := visio.NewStencils(app, "Basic Shapes.vss")
//	master, err := stencils.Master("Circle")
//	page, err := doc.Page(1)
//	shape, err := visio.NewShape(app, master, page, 1.5, 1.5)
//
// Coordinates are in the application's universal length unit (inches) and
// address the shape center; the page origin is the bottom-left corner.
//
// The handle is process-wide shared mutable state bound to a single COM
// apartment. Concurrent use from multiple goroutines is unsupported.
//
// Logging goes through github.com/tliron/commonlog; the consuming program
// decides whether and how to configure a backend.
package visio
