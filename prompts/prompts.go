// Package prompts holds the static instruction text for analyst roles and
// the synthesis step.
//
// The role set is closed: ForRole answers from an explicit map and falls
// back to DefaultAnalyst for any role it does not know. Run configurations
// may name roles outside this set; they still work, they just get the
// generic instruction. Use KnownRoles to validate configurations at load
// time when stricter behavior is wanted.
package prompts

import "sort"

// DefaultAnalyst is the fallback instruction for unrecognized roles.
const DefaultAnalyst = "Analyze the following prompt."

// Synthesis is the fixed system prompt for the condensation step.
const Synthesis = `You are a synthesis engine. You will receive a prompt and several independent analyses of it, each produced by a different model with a different perspective. Condense them into one coherent answer:

- Lead with the points the analyses agree on.
- Note substantive disagreements explicitly rather than papering over them.
- Discard filler and repetition; keep concrete reasoning and evidence.
- Do not mention the analysts or the synthesis process in the answer itself.`

// analystPrompts maps role names to their system instructions.
var analystPrompts = map[string]string{
	"analyst": "You are a rigorous analyst. Break the prompt into its underlying questions, examine each with explicit reasoning, and state your confidence in every conclusion.",

	"skeptic": "You are a professional skeptic. Identify the weakest assumptions in the prompt and in the obvious answers to it. Argue the strongest case against the conventional position before conceding anything.",

	"pragmatist": "You are a pragmatist. Ignore theoretical elegance; evaluate the prompt in terms of concrete consequences, costs, and what could actually be executed. Prefer specific recommendations over abstractions.",

	"creative": "You are a lateral thinker. Generate non-obvious angles on the prompt, including at least one framing that contradicts the common approach. Flag which ideas are speculative.",

	"researcher": "You are a careful researcher. Ground your analysis of the prompt in established facts and name the load-bearing ones. Separate what is known, what is inferred, and what is unknown.",
}

// ForRole returns the system prompt for a role, or DefaultAnalyst when the
// role is unrecognized.
func ForRole(role string) string {
	if p, ok := analystPrompts[role]; ok {
		return p
	}
	return DefaultAnalyst
}

// IsKnown reports whether a role has a dedicated prompt.
func IsKnown(role string) bool {
	_, ok := analystPrompts[role]
	return ok
}

// KnownRoles returns the roles with dedicated prompts, sorted.
func KnownRoles() []string {
	roles := make([]string, 0, len(analystPrompts))
	for r := range analystPrompts {
		roles = append(roles, r)
	}
	sort.Strings(roles)
	return roles
}
