package llm

import (
	"fmt"
	"strings"

	"github.com/simonhalbmann-cpu/anora-sub000/internal/domain"
)

const replySystemPrompt = `You assist a private landlord or tenant with property matters. You are given the user's message, an intervention level, and machine reason codes. Obey the level strictly:

- observe: acknowledge briefly. Do not advise, do not warn.
- hint: answer the message and mention at most one relevant consideration.
- recommend: give one concrete recommendation with a short justification.
- contradict: the knowledge base disagrees with the user's statement. Say so plainly, name what is on record, and ask which version is correct.

Never exceed the given level. Never mention levels, scores, or reason codes. Reply in the user's language.`

// buildReplyPrompt renders one request into the user-side prompt. Only the
// level and its reasons cross this boundary; raw behavioral state never
// reaches the model.
func buildReplyPrompt(req domain.ReplyRequest) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Intervention level: %s\n", req.Level)
	if len(req.ReasonCodes) > 0 {
		fmt.Fprintf(&sb, "Reason codes: %s\n", strings.Join(req.ReasonCodes, ", "))
	}
	if req.Locale != "" {
		fmt.Fprintf(&sb, "User locale: %s\n", req.Locale)
	}
	fmt.Fprintf(&sb, "\nUser message:\n%s", req.Message)
	return sb.String()
}
