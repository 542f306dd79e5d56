package search

// Language selects the locale of user facing validation messages
type Language string

const (
	English    Language = "en"
	Vietnamese Language = "vi"
)

var emptyTermMessages = map[Language]map[Mode]string{
	English: {
		ModePost:      "Please enter a post link.",
		ModeProfile:   "Please enter a username.",
		ModeHighlight: "Please enter a highlight link.",
	},
	Vietnamese: {
		ModePost:      "Vui lòng nhập link bài viết.",
		ModeProfile:   "Vui lòng nhập tên người dùng.",
		ModeHighlight: "Vui lòng nhập link highlight.",
	},
}

// EmptyTermMessage is shown when a search is submitted without a term.
// Unknown languages fall back to English.
func EmptyTermMessage(lang Language, mode Mode) string {
	msgs, ok := emptyTermMessages[lang]
	if !ok {
		msgs = emptyTermMessages[English]
	}
	if msg, ok := msgs[mode]; ok {
		return msg
	}
	return msgs[ModePost]
}
