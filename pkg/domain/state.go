package domain

import "strings"

// Session record fields, as stored by the session store.
const (
	// FieldCurrentNode holds the node the session is positioned at.
	FieldCurrentNode = "current_node"

	// AnswerPrefix namespaces saved answers inside the session record.
	AnswerPrefix = "answers:"
)

// AnswerField returns the session field an answer key is stored under.
func AnswerField(key string) string {
	return AnswerPrefix + key
}

// AnswerKeyFromField strips the answers namespace from a field name.
// The boolean is false when the field is not an answer.
func AnswerKeyFromField(field string) (string, bool) {
	if !strings.HasPrefix(field, AnswerPrefix) {
		return "", false
	}
	key := strings.TrimPrefix(field, AnswerPrefix)
	return key, key != ""
}
