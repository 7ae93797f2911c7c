package models

// FormControl is one legacy VML form control (checkbox, radio button)
// found in a sheet's VML drawing part.
type FormControl struct {
	// Type is the control type ("checkbox", "radio", "button").
	Type string `json:"type"`
	// Text is the control label.
	Text string `json:"text,omitempty"`
	// Checked reports the control state for checkbox/radio controls.
	Checked bool `json:"checked"`
	// AnchorCell is the top-left anchor cell in A1 notation.
	AnchorCell string `json:"anchor_cell,omitempty"`
}
