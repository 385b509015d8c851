package styles

// Tip: To find icons use https://github.com/loichyan/nerdfix

var (
	IconComment = "" // nf-fa-comment_o
	IconPencil  = "" // nf-fa-pencil
	IconTrash   = "" // nf-fa-trash
	IconUser    = "" // nf-fa-user
	IconMore    = "" // nf-fa-ellipsis_h
)

// Notification icons
var (
	IconNotifyInfo    = "" // nf-fa-info_circle
	IconNotifyWarning = "" // nf-fa-warning
	IconNotifyError   = "" // nf-fa-times_circle
)
