package agent

import (
	"fmt"
	"strings"
)

// BuildPrompt embeds the raw message and the category reference list
// together with the fixed business rules: money leaving the user is an
// expense, money arriving is income, payer defaults to the configured
// name when unspecified.
func BuildPrompt(text string, categories []string, payer string) string {
	var b strings.Builder

	b.WriteString("You are a helpful Family Budget Assistant. Your job is to extract financial transactions from text.\n\n")
	fmt.Fprintf(&b, "Current Categories available: %s\n\n", strings.Join(categories, ", "))
	b.WriteString("Rules:\n")
	b.WriteString("1. If the user mentions spending money, call 'log_expense'.\n")
	b.WriteString("2. Match the category to the most relevant one from the list. If nothing fits, use 'Others'.\n")
	b.WriteString("3. If the user mentions receiving money, call 'log_income'.\n")
	fmt.Fprintf(&b, "4. The person paying is '%s' unless someone else is mentioned.\n", payer)
	b.WriteString("5. Be concise and confirm the action.\n\n")
	fmt.Fprintf(&b, "Text: %q\n", text)

	return b.String()
}
