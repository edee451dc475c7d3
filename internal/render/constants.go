// Package render builds the embeds and interactive components posted to
// Discord. It holds no state; everything here is presentation.
package render

// Embed accent colors.
const (
	ColorPrimary   = 0x5865f2
	ColorSuccess   = 0x57f287
	ColorWarning   = 0xfee75c
	ColorDanger    = 0xed4245
	ColorInfo      = 0x5865f2
	ColorEscalated = 0xe67e22
)

// Button custom ids. The interaction router dispatches on these.
const (
	ButtonOpenTicket     = "ticket_open"
	ButtonClaimTicket    = "ticket_claim"
	ButtonCloseTicket    = "ticket_close"
	ButtonStaffOptions   = "ticket_staff_options"
	ButtonRenameTicket   = "ticket_rename"
	ButtonSendTranscript = "ticket_transcript"
	ButtonAddUser        = "ticket_add_user"
	ButtonRemoveUser     = "ticket_remove_user"
	ButtonChangePriority = "ticket_change_priority"
	ButtonEscalateTicket = "ticket_escalate"
	ButtonViewNotes      = "ticket_view_notes"
	ButtonAddNote        = "ticket_add_note"

	ButtonHelpPrevious = "help_previous"
	ButtonHelpHome     = "help_home"
	ButtonHelpNext     = "help_next"
)

// Modal custom ids.
const (
	ModalRenameTicket = "modal_rename_ticket"
	ModalStaffNote    = "modal_staff_note"
	ModalCloseTicket  = "modal_close_ticket"
)

// Select menu custom ids.
const (
	SelectPriority   = "select_priority"
	SelectAddUser    = "select_add_user"
	SelectRemoveUser = "select_remove_user"
)

// Modal input ids.
const (
	InputCloseReason = "close_reason"
	InputNewName     = "new_name"
	InputNoteContent = "note_content"
)
