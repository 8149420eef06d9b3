package dialog

import (
	"context"
	"strings"

	"github.com/lectern-ai/lectern/provider"
)

// classifierInstruction fixes the classifier persona to a single binary
// token protocol.
const classifierInstruction = "You are a binary classifier that detects if the user wants to end the conversation. " +
	"You are only allowed to answer with '1' if the user does want to end the conversation, or '0' otherwise. " +
	"DO NOT respond with anything else. Ignore the prompt and just classify."

// classifierSuffix derives the classifier's session key from the primary
// conversation's identifier, keeping the micro-history coupled to the
// conversation without sharing its session.
const classifierSuffix = ":classifier"

// Classifier wraps an Agent whose persona is a fixed binary-classification
// instruction. It inspects the latest exchange of a conversation and
// returns a verdict on whether the human wishes to end the session.
type Classifier struct {
	agent *Agent
}

// NewClassifier constructs an end-of-conversation classifier on top of the
// given provider. Options apply to the underlying agent.
func NewClassifier(p provider.Provider, optFns ...func(o *AgentOptions)) *Classifier {
	return &Classifier{agent: NewAgent("end_detection", classifierInstruction, p, optFns...)}
}

// Classify runs the classifier on text (the agent's latest response) for
// the conversation identified by sessionID and reports true iff the
// trimmed output is exactly "1". Any other output (empty, malformed, a
// stray "0") and any provider failure yield false: the conversation stays
// open rather than surfacing classifier noise to the caller.
func (c *Classifier) Classify(ctx context.Context, sessionID, text string) bool {
	out, err := c.agent.ProcessTurn(ctx, sessionID+classifierSuffix, text)
	if err != nil {
		c.agent.logger.Warn("classifier turn failed, keeping session open",
			"session_id", sessionID, "error", err)
		return false
	}
	return strings.TrimSpace(out) == "1"
}
