package visio

import (
	"fmt"

	"github.com/tliron/commonlog"

	"github.com/i-wan/govisio/automation"
)

var appLog = commonlog.GetLogger("govisio.app")

// App is the single long-lived handle to the running Visio application.
// It is obtained once per process and injected into every component that
// needs the application; there is no hidden global state.
//
// The handle is bound to one COM apartment and must only be used from the
// goroutine that created it.
type App struct {
	obj automation.Object
}

// Connect attaches to a running Visio instance, or starts a new one if none
// is running, and makes the application window visible. It fails if the
// application cannot be started. Windows only.
func Connect() (*App, error) {
	obj, err := automation.Connect("Visio.Application")
	if err != nil {
		appLog.Errorf("it was not possible to obtain the Visio automation object: %s", err.Error())
		return nil, err
	}
	if err := obj.Set("Visible", true); err != nil {
		appLog.Errorf("failed to make Visio visible: %s", err.Error())
		obj.Release()
		return nil, fmt.Errorf("failed to set Visible: %w", err)
	}
	return &App{obj: obj}, nil
}

// NewApp wraps an already-obtained automation handle. Most callers should
// use Connect; NewApp exists for injecting an alternative backend.
func NewApp(obj automation.Object) *App {
	return &App{obj: obj}
}

// Quit shuts the application down. Any open documents are closed on the
// application's own terms; unsaved changes may trigger prompts.
func (a *App) Quit() error {
	if _, err := a.obj.Call("Quit"); err != nil {
		appLog.Errorf("failed to quit application: %s", err.Error())
		return fmt.Errorf("failed to quit application: %w", err)
	}
	return nil
}

// Release frees the automation handle without quitting the application.
func (a *App) Release() {
	a.obj.Release()
}

func (a *App) documents() (automation.Object, error) {
	v, err := a.obj.Get("Documents")
	if err != nil {
		return nil, fmt.Errorf("failed to get Documents: %w", err)
	}
	return v.Object(), nil
}

func (a *App) activeWindow() (automation.Object, error) {
	v, err := a.obj.Get("ActiveWindow")
	if err != nil {
		return nil, fmt.Errorf("failed to get ActiveWindow: %w", err)
	}
	return v.Object(), nil
}

func (a *App) settings() (automation.Object, error) {
	v, err := a.obj.Get("Settings")
	if err != nil {
		return nil, fmt.Errorf("failed to get Settings: %w", err)
	}
	return v.Object(), nil
}

func (a *App) alertResponse() (int, error) {
	v, err := a.obj.Get("AlertResponse")
	if err != nil {
		return 0, fmt.Errorf("failed to get AlertResponse: %w", err)
	}
	return v.Int(), nil
}

func (a *App) setAlertResponse(value int) error {
	if err := a.obj.Set("AlertResponse", value); err != nil {
		return fmt.Errorf("failed to set AlertResponse: %w", err)
	}
	return nil
}
