//go:build windows

package automation

import (
	"fmt"
	"runtime"

	"github.com/go-ole/go-ole"
	"github.com/go-ole/go-ole/oleutil"
)

// oleObject wraps one IDispatch handle. The handle obtained from
// connectPlatform additionally owns the COM apartment of the locked OS
// thread; all automation calls must happen on that thread.
type oleObject struct {
	dispatch *ole.IDispatch
	root     bool
}

func connectPlatform(progID string) (Object, error) {
	runtime.LockOSThread()
	ole.CoInitializeEx(0, ole.COINIT_APARTMENTTHREADED)

	// Prefer an already-running instance
	unknown, err := oleutil.GetActiveObject(progID)
	if err == nil {
		dispatch, err := unknown.QueryInterface(ole.IID_IDispatch)
		if err == nil {
			return &oleObject{dispatch: dispatch, root: true}, nil
		}
	}

	// Not running — launch a new instance
	unknown2, err := oleutil.CreateObject(progID)
	if err != nil {
		ole.CoUninitialize()
		runtime.UnlockOSThread()
		return nil, fmt.Errorf("failed to launch %s: %w", progID, err)
	}
	dispatch, err := unknown2.QueryInterface(ole.IID_IDispatch)
	if err != nil {
		ole.CoUninitialize()
		runtime.UnlockOSThread()
		return nil, fmt.Errorf("failed to query %s interface: %w", progID, err)
	}
	return &oleObject{dispatch: dispatch, root: true}, nil
}

func (o *oleObject) Get(property string, args ...any) (Value, error) {
	conv, outs := convertArgs(args)
	variant, err := oleutil.GetProperty(o.dispatch, property, conv...)
	if err != nil {
		return nil, fmt.Errorf("failed to get %s: %w", property, err)
	}
	assignOutputs(outs)
	return &oleValue{variant: variant}, nil
}

func (o *oleObject) Set(property string, value any) error {
	conv, _ := convertArgs([]any{value})
	if _, err := oleutil.PutProperty(o.dispatch, property, conv[0]); err != nil {
		return fmt.Errorf("failed to set %s: %w", property, err)
	}
	return nil
}

func (o *oleObject) Call(method string, args ...any) (Value, error) {
	conv, outs := convertArgs(args)
	variant, err := oleutil.CallMethod(o.dispatch, method, conv...)
	if err != nil {
		return nil, fmt.Errorf("failed to call %s: %w", method, err)
	}
	assignOutputs(outs)
	return &oleValue{variant: variant}, nil
}

func (o *oleObject) Has(name string) bool {
	_, err := o.dispatch.GetIDsOfName([]string{name})
	return err == nil
}

func (o *oleObject) Release() {
	if o.dispatch != nil {
		o.dispatch.Release()
		o.dispatch = nil
	}
	if o.root {
		ole.CoUninitialize()
		runtime.UnlockOSThread()
	}
}

// outFloat records a by-ref float argument so the server's output can be
// copied back after the invocation.
type outFloat struct {
	dst     *float64
	variant *ole.VARIANT
}

// convertArgs maps interface-level arguments onto what go-ole's Invoke
// understands: object handles become raw dispatch pointers and *float64
// arguments become by-ref variants.
func convertArgs(args []any) ([]any, []outFloat) {
	conv := make([]any, len(args))
	var outs []outFloat
	for i, arg := range args {
		switch v := arg.(type) {
		case *oleObject:
			conv[i] = v.dispatch
		case *float64:
			variant := new(ole.VARIANT)
			*variant = ole.NewVariant(ole.VT_R8, 0)
			outs = append(outs, outFloat{dst: v, variant: variant})
			conv[i] = variant
		default:
			conv[i] = arg
		}
	}
	return conv, outs
}

func assignOutputs(outs []outFloat) {
	for _, out := range outs {
		*out.dst = variantFloat(out.variant)
		out.variant.Clear()
	}
}

type oleValue struct {
	variant *ole.VARIANT
}

func (v *oleValue) Object() Object {
	dispatch := v.variant.ToIDispatch()
	if dispatch == nil {
		return nil
	}
	dispatch.AddRef()
	return &oleObject{dispatch: dispatch}
}

func (v *oleValue) String() string {
	return v.variant.ToString()
}

func (v *oleValue) Float() float64 {
	return variantFloat(v.variant)
}

func (v *oleValue) Int() int {
	return int(variantFloat(v.variant))
}

func (v *oleValue) Bool() bool {
	switch val := v.variant.Value().(type) {
	case bool:
		return val
	default:
		return v.variant.Val != 0
	}
}

func variantFloat(variant *ole.VARIANT) float64 {
	switch val := variant.Value().(type) {
	case float64:
		return val
	case float32:
		return float64(val)
	case int:
		return float64(val)
	case int8:
		return float64(val)
	case int16:
		return float64(val)
	case int32:
		return float64(val)
	case int64:
		return float64(val)
	case uint8:
		return float64(val)
	case uint16:
		return float64(val)
	case uint32:
		return float64(val)
	case uint64:
		return float64(val)
	default:
		return 0
	}
}
