package guidance

import (
	"fmt"
	"strings"

	"fitforge/internal/session"
)

var genderPhrase = map[session.Gender]string{
	session.GenderFemale:  "a woman",
	session.GenderMale:    "a man",
	session.GenderNeutral: "a person",
}

// buildPrompt produces the deterministic generation prompt from the fitted
// body parameters. Same mesh, same prompt.
func buildPrompt(mesh *session.MeshFit) string {
	subject, ok := genderPhrase[mesh.Gender]
	if !ok {
		subject = genderPhrase[session.GenderNeutral]
	}

	var b strings.Builder
	fmt.Fprintf(&b, "full body photo of %s", subject)
	if height, ok := mesh.Measurements["height"]; ok && height > 0 {
		fmt.Fprintf(&b, ", approximately %.0f cm tall", height)
	}
	b.WriteString(", standing upright, neutral pose, facing the camera")
	b.WriteString(", studio lighting, plain background, photorealistic")
	return b.String()
}
