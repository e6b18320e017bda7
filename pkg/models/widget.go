package models

// WidgetType tags how the host renders a widget.
type WidgetType string

const (
	WidgetTypeText      WidgetType = "text"
	WidgetTypeMultiline WidgetType = "multiline"
	WidgetTypeReadOnly  WidgetType = "readonly"
	WidgetTypeCombo     WidgetType = "combo"
	WidgetTypeToggle    WidgetType = "toggle"
	WidgetTypeButton    WidgetType = "button"
	WidgetTypeNumber    WidgetType = "number"
	WidgetTypeHidden    WidgetType = "hidden"
)

// TextSurface is a host-rendered text element backing a widget (the raw
// editor element behind a multiline widget). Implementations are provided
// by the host; tests use in-memory stand-ins.
type TextSurface interface {
	SetText(text string)
	ScrollToBottom()
}

// Widget is a named, typed, mutable value holder attached to a node.
//
// The displayed value and the backing store must never diverge: every write
// goes through SetValue so the change callback fires. Assigning Value
// directly breaks dependent surfaces such as the history modal.
type Widget struct {
	Name     string
	Type     WidgetType
	Value    any
	Options  []string
	Disabled bool

	// OnChange fires on every SetValue, including programmatic ones.
	OnChange func(value any)

	// Surface is an optional backing input element mirrored on change.
	Surface TextSurface
}

// SetValue stores the value and invokes the change callback.
func (w *Widget) SetValue(v any) {
	w.Value = v
	if w.OnChange != nil {
		w.OnChange(v)
	}
}

// StringValue returns the widget value as a string, or "" when the value is
// unset or not a string.
func (w *Widget) StringValue() string {
	s, _ := w.Value.(string)

	return s
}

// BoolValue returns the widget value as a bool, false when unset.
func (w *Widget) BoolValue() bool {
	b, _ := w.Value.(bool)

	return b
}
