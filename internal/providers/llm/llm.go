package llm

import (
	"context"
	"fmt"
)

// Turn is one history entry in the internal role vocabulary ("user" | "ai").
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

const (
	RoleUser = "user"
	RoleAI   = "ai"
)

// Provider is a stateless mapping of one completion request onto an external
// API. Implementations make exactly one HTTP call and never retry.
type Provider interface {
	Name() string
	Complete(ctx context.Context, systemPrompt string, history []Turn, message, apiKey string) (string, error)
}

// UpstreamError is returned when the provider answered with a non-2xx status
// or a body that could not be understood.
type UpstreamError struct {
	Provider   string
	StatusCode int // 0 when the response was malformed rather than rejected
	Body       string
	Err        error
}

func (e *UpstreamError) Error() string {
	switch {
	case e.StatusCode != 0 && e.Body != "":
		return fmt.Sprintf("%s: status %d: %s", e.Provider, e.StatusCode, e.Body)
	case e.StatusCode != 0:
		return fmt.Sprintf("%s: status %d", e.Provider, e.StatusCode)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Provider, e.Err)
	default:
		return fmt.Sprintf("%s: malformed response: %s", e.Provider, e.Body)
	}
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// alternateTurns appends the inbound message and reshapes the window for
// providers that require strict user/model alternation starting with a user
// turn: leading ai turns are dropped and consecutive same-role turns are
// joined with a blank line. The last element is always a user turn.
func alternateTurns(history []Turn, message string) []Turn {
	all := make([]Turn, 0, len(history)+1)
	all = append(all, history...)
	all = append(all, Turn{Role: RoleUser, Content: message})

	out := make([]Turn, 0, len(all))
	for _, t := range all {
		role := RoleUser
		if t.Role == RoleAI {
			role = RoleAI
		}
		if len(out) == 0 && role == RoleAI {
			continue
		}
		if n := len(out); n > 0 && out[n-1].Role == role {
			out[n-1].Content += "\n\n" + t.Content
			continue
		}
		out = append(out, Turn{Role: role, Content: t.Content})
	}
	return out
}
