// Package automation provides name-based dispatch onto the object model of a
// COM automation server. The rest of the module talks to the drawing
// application exclusively through the Object and Value interfaces defined
// here, which keeps the wrapper layers testable on platforms where the
// application (and COM itself) is unavailable.
package automation

// Object is a handle to one object of the automation server's object model.
// Properties and methods are addressed by name, exactly as the server
// publishes them.
//
// Arguments of type *float64 passed to Call are marshalled by reference and
// receive the server's output value after the call returns.
type Object interface {
	// Get reads a named property. Some collection properties take
	// arguments (an index or a name).
	Get(property string, args ...any) (Value, error)
	// Set writes a named property.
	Set(property string, value any) error
	// Call invokes a named method.
	Call(method string, args ...any) (Value, error)
	// Has reports whether the object publishes a member with this name.
	Has(name string) bool
	// Release frees the handle. The handle must not be used afterwards.
	Release()
}

// Value is the result of a property read or method call.
type Value interface {
	// Object returns the value as an object handle, or nil when the value
	// is not an object. The caller owns the returned handle.
	Object() Object
	String() string
	Float() float64
	Int() int
	Bool() bool
}

// Connect attaches to a running instance of the automation server registered
// under progID, or starts a new instance if none is running. The returned
// handle owns the COM apartment; releasing it shuts the apartment down.
//
// On non-Windows platforms Connect always returns an error.
func Connect(progID string) (Object, error) {
	return connectPlatform(progID)
}
