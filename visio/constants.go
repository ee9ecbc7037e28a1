package visio

// Enumeration values from the Visio type library used by this package.
const (
	// VisOpenSaveArgs: open a stencil docked to the drawing window.
	visOpenDocked = 4

	// VisBoundingBoxArgs: tight upright rectangle including line weight.
	visBBoxUprightWH = 1

	// VisUnitCodes: no unit conversion for ResultStr.
	visNone = 0

	// VisObjectTypes
	visObjTypeUnknown = 0
	visObjTypeMaster  = 4

	// ExportAsFixedFormat arguments: PDF output, print intent, all pages.
	visFixedFormatPDF   = 1
	visDocExIntentPrint = 1
	visPrintAll         = 0

	// Application.AlertResponse value that answers "No" to the
	// save-changes prompt (IDNO).
	alertResponseNo = 7
)

// VisDeleteFlags values for Shape.DeleteEx.
const (
	DeleteNormal         = 0
	DeleteHealConnectors = 1
)

// VisAutoConnectDir placement direction hints for connector creation.
const (
	AutoConnectDirNone  = 0
	AutoConnectDirUp    = 1
	AutoConnectDirDown  = 2
	AutoConnectDirLeft  = 3
	AutoConnectDirRight = 4
)
