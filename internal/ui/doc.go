// Package ui formats CLI output by meaning rather than by color.
//
// Commands pick a formatter for what the text is:
//
//	ui.Code.Sprint("credshare share list")   // a command to run
//	ui.Highlight.Sprint("bob@example.com")    // an email or secret title
//	ui.Muted.Sprint(shareID)                  // ids and secondary detail
//	ui.Secret.Sprint(value)                   // a decrypted value
//	ui.Success.Sprint("✓"), ui.Error.Sprint("✗"), ui.Info.Sprint("→")
//
// Status colors share and request states, and Mask hides a secret value
// except for its last four characters.
//
// When NO_COLOR is set, or fatih/color decides the terminal cannot render
// color, formatters fall back to plain decorations so meaning survives:
// Code gets `backticks`, Highlight 'quotes', Muted (parentheses) and Secret
// <angle brackets>. The rest print unchanged.
package ui
