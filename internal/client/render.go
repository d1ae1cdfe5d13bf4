package client

// Renderer is the presentation surface the controller drives. The controller
// owns all state; renderers only draw what they are handed and must not call
// back into the controller from inside a render call.
type Renderer interface {
	// RenderTranscript redraws the whole conversation view.
	RenderTranscript(entries []Entry)

	// RenderDirectory redraws the session list. Sessions arrive newest
	// first; an empty slice means the list should be hidden.
	RenderDirectory(sessions []SessionInfo, activeID string)

	// Notify surfaces a transient error or status message to the user.
	Notify(message string)

	// FocusInput returns focus to the message input.
	FocusInput()

	// Confirm asks the user to approve a destructive action.
	Confirm(prompt string) bool
}
