// Package prompt renders the task prompt sent to the language model.
package prompt

import "strings"

// Template is the prompt layout; {task} and {context} are substituted.
const Template = "Task: {task}\nContext: {context}\nResponse:"

// Format substitutes task and context into Template. Substituted values are
// not re-expanded, so a task containing "{context}" is kept literally.
func Format(task, context string) string {
	return strings.NewReplacer("{task}", task, "{context}", context).Replace(Template)
}
