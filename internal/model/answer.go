package model

// AnswerSelection carries a submitted answer in either form clients send:
// the selected option index, the selected option text, or both. Nil fields
// mean the client did not send that form.
type AnswerSelection struct {
	SelectedIndex *int    `json:"selectedIndex,omitempty"`
	SelectedValue *string `json:"selectedValue,omitempty"`
}

// Matches reports whether the selection hits the question's correct option.
// Value-match takes priority over index-match when both are present.
func (a AnswerSelection) Matches(q Question) bool {
	if a.SelectedValue != nil {
		if correct := q.CorrectValue(); correct != "" && *a.SelectedValue == correct {
			return true
		}
	}
	if a.SelectedIndex != nil && *a.SelectedIndex == q.CorrectAnswerIndex {
		return true
	}
	return false
}
